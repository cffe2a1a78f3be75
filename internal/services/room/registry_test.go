package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/partyroom/partyroom/internal/dependencies/mocks"
	"github.com/partyroom/partyroom/internal/dependencies/random"
	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
	"github.com/partyroom/partyroom/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	transport *mocks.MockTransport
	registry  *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.transport = mocks.NewMockTransport()
	s.registry = NewRegistry(NewCodeGenerator(s.random), s.transport, s.clock, testutil.NopLogger())
}

func (s *RegistrySuite) create(conn model.ConnID, code string) *model.Room {
	s.random.QueueString(code)
	room, err := s.registry.Create(conn, string(conn)+"@x.com", "")
	s.Require().NoError(err)
	return room
}

func (s *RegistrySuite) roster(msg protocol.Message) model.Roster {
	s.Require().Equal(protocol.EventPlayerList, msg.Event)
	roster, ok := msg.Data.(model.Roster)
	s.Require().True(ok)
	return roster
}

// Create tests

func (s *RegistrySuite) TestCreateAssignsPlayerOne() {
	room := s.create("a", "ABC123")

	s.Equal(model.RoomCode("ABC123"), room.Code)
	s.False(room.Started)
	s.Require().Len(room.Players, 1)
	s.Equal(1, room.Players[0].Number)
	s.Equal("Player 1", room.Players[0].Name)
	s.Equal("a@x.com", room.Players[0].Identity)
}

func (s *RegistrySuite) TestCreateSendsAssignmentThenRoster() {
	s.create("a", "ABC123")

	msgs := s.transport.For("a")
	s.Require().Len(msgs, 2)
	s.Equal(protocol.LobbyCreated("ABC123", 1), msgs[0])
	s.Len(s.roster(msgs[1]), 1)
}

func (s *RegistrySuite) TestCreateKeepsGivenName() {
	s.random.QueueString("ABC123")
	room, err := s.registry.Create("a", "a@x.com", "Alice")
	s.Require().NoError(err)
	s.Equal("Alice", room.Players[0].Name)
}

func (s *RegistrySuite) TestCreateRetriesOnCollision() {
	s.create("a", "ABC123")
	s.random.QueueString("ABC123", "XYZ789")

	room, err := s.registry.Create("b", "b@x.com", "")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("XYZ789"), room.Code)
	s.Equal(2, s.registry.Count())
}

func (s *RegistrySuite) TestCreateFailsWhenCodesExhausted() {
	s.create("a", "ABC123")
	s.random.Fallback = "ABC123"

	_, err := s.registry.Create("b", "b@x.com", "")
	s.ErrorIs(err, model.ErrCodeSpaceExhausted)
	s.Equal(1, s.registry.Count())

	// The existing room is untouched
	members, ok := s.registry.Members("ABC123")
	s.Require().True(ok)
	s.Equal(model.ConnID("a"), members[0].ConnID)
}

func (s *RegistrySuite) TestGeneratedCodesUseAlphabet() {
	r := NewRegistry(
		NewCodeGenerator(random.New()),
		s.transport, s.clock, testutil.NopLogger(),
	)
	room, err := r.Create("a", "", "")
	s.Require().NoError(err)
	s.Regexp(`^[A-Z0-9]{6}$`, string(room.Code))
}

// Join tests

func (s *RegistrySuite) TestJoinAssignsNextNumber() {
	s.create("a", "ABC123")

	n, err := s.registry.Join("ABC123", "b", "b@x.com", "")
	s.Require().NoError(err)
	s.Equal(2, n)

	room, err := s.registry.Get("ABC123")
	s.Require().NoError(err)
	s.Require().Len(room.Players, 2)
	s.Equal("Player 2", room.Players[1].Name)
}

func (s *RegistrySuite) TestJoinRepliesAndBroadcastsRoster() {
	s.create("a", "ABC123")
	s.transport.Reset()

	_, err := s.registry.Join("ABC123", "b", "b@x.com", "Bob")
	s.Require().NoError(err)

	s.Equal([]string{protocol.EventJoinedLobby, protocol.EventPlayerList}, s.transport.Events("b"))
	s.Equal([]string{protocol.EventPlayerList}, s.transport.Events("a"))

	last, _ := s.transport.Last("a")
	roster := s.roster(last)
	s.Require().Len(roster, 2)
	s.Equal("Bob", roster[1].Name)
}

func (s *RegistrySuite) TestJoinUnknownRoom() {
	_, err := s.registry.Join("NOPE00", "b", "b@x.com", "")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Empty(s.transport.All())
}

func (s *RegistrySuite) TestJoinStartedRoom() {
	s.create("a", "ABC123")
	s.registry.Start("ABC123", nil)

	_, err := s.registry.Join("ABC123", "b", "b@x.com", "")
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *RegistrySuite) TestJoinFullRoom() {
	s.create("a", "ABC123")
	for i := 2; i <= model.MaxPlayers; i++ {
		_, err := s.registry.Join("ABC123", model.ConnID(fmt.Sprintf("p%d", i)), "", "")
		s.Require().NoError(err)
	}
	s.transport.Reset()

	_, err := s.registry.Join("ABC123", "late", "", "")
	s.ErrorIs(err, model.ErrRoomFull)

	members, _ := s.registry.Members("ABC123")
	s.Len(members, model.MaxPlayers)
	s.Empty(s.transport.All())
}

func (s *RegistrySuite) TestStartedCheckedBeforeCapacity() {
	s.create("a", "ABC123")
	for i := 2; i <= model.MaxPlayers; i++ {
		_, err := s.registry.Join("ABC123", model.ConnID(fmt.Sprintf("p%d", i)), "", "")
		s.Require().NoError(err)
	}
	s.registry.Start("ABC123", nil)

	_, err := s.registry.Join("ABC123", "late", "", "")
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *RegistrySuite) TestConcurrentJoinsNeverExceedCapacity() {
	s.create("a", "ABC123")

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.registry.Join("ABC123", model.ConnID(fmt.Sprintf("c%d", i)), "", ""); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(model.MaxPlayers-1, accepted)
	members, _ := s.registry.Members("ABC123")
	s.Len(members, model.MaxPlayers)
}

// Start tests

func (s *RegistrySuite) TestStartBroadcastsToEveryMember() {
	s.create("a", "ABC123")
	_, _ = s.registry.Join("ABC123", "b", "", "")
	s.transport.Reset()

	setup := json.RawMessage(`{"3":22}`)
	s.registry.Start("ABC123", setup)

	for _, c := range []model.ConnID{"a", "b"} {
		msg, ok := s.transport.Last(c)
		s.Require().True(ok)
		s.Equal(protocol.EventGameStarted, msg.Event)
		payload := msg.Data.(protocol.GameStartedPayload)
		s.Len(payload.Players, 2)
		s.JSONEq(`{"3":22}`, string(payload.Links))
	}

	room, _ := s.registry.Get("ABC123")
	s.True(room.Started)
	s.Require().NotNil(room.StartedAt)
}

func (s *RegistrySuite) TestStartTwiceKeepsFirstSetup() {
	s.create("a", "ABC123")
	s.registry.Start("ABC123", json.RawMessage(`{"first":1}`))
	s.transport.Reset()

	s.registry.Start("ABC123", json.RawMessage(`{"second":2}`))

	msg, ok := s.transport.Last("a")
	s.Require().True(ok)
	payload := msg.Data.(protocol.GameStartedPayload)
	s.JSONEq(`{"first":1}`, string(payload.Links))
}

func (s *RegistrySuite) TestStartUnknownRoomIsIgnored() {
	s.registry.Start("NOPE00", nil)
	s.Empty(s.transport.All())
}

// RemovePlayer tests

func (s *RegistrySuite) TestRemovePlayerBeforeStart() {
	s.create("a", "ABC123")
	_, _ = s.registry.Join("ABC123", "b", "", "")
	s.transport.Reset()

	code, removed := s.registry.RemovePlayer("a")
	s.Equal(model.RoomCode("ABC123"), code)
	s.True(removed)

	s.Empty(s.transport.For("a"))
	last, ok := s.transport.Last("b")
	s.Require().True(ok)
	roster := s.roster(last)
	s.Require().Len(roster, 1)
	s.Equal(2, roster[0].Number)
}

func (s *RegistrySuite) TestRemoveLastPlayerDeletesRoom() {
	s.create("a", "ABC123")

	_, removed := s.registry.RemovePlayer("a")
	s.True(removed)

	_, err := s.registry.Get("ABC123")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Equal(0, s.registry.Count())

	_, err = s.registry.Join("ABC123", "b", "", "")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestRemovePlayerAfterStartKeepsRoster() {
	s.create("a", "ABC123")
	_, _ = s.registry.Join("ABC123", "b", "", "")
	s.registry.Start("ABC123", nil)
	s.transport.Reset()

	_, removed := s.registry.RemovePlayer("a")
	s.False(removed)

	members, ok := s.registry.Members("ABC123")
	s.Require().True(ok)
	s.Len(members, 2)
	s.Empty(s.transport.All())
}

func (s *RegistrySuite) TestRemoveUnboundConnection() {
	code, removed := s.registry.RemovePlayer("ghost")
	s.Empty(code)
	s.False(removed)
}

func (s *RegistrySuite) TestNumbersAreNotReassignedAfterDeparture() {
	s.create("a", "ABC123")
	_, _ = s.registry.Join("ABC123", "b", "", "")
	_, _ = s.registry.Join("ABC123", "c", "", "")

	s.registry.RemovePlayer("a")
	n, err := s.registry.Join("ABC123", "d", "", "")
	s.Require().NoError(err)

	// Remaining players keep 2 and 3; the newcomer gets length+1 = 3
	s.Equal(3, n)
	members, _ := s.registry.Members("ABC123")
	numbers := []int{}
	for _, p := range members {
		numbers = append(numbers, p.Number)
	}
	s.Equal([]int{2, 3, 3}, numbers)
}

func (s *RegistrySuite) TestConnectionBindsToLatestRoom() {
	s.create("a", "ABC123")
	s.create("b", "XYZ789")
	_, err := s.registry.Join("XYZ789", "a", "", "")
	s.Require().NoError(err)

	code, ok := s.registry.RoomOf("a")
	s.Require().True(ok)
	s.Equal(model.RoomCode("XYZ789"), code)

	code, removed := s.registry.RemovePlayer("a")
	s.Equal(model.RoomCode("XYZ789"), code)
	s.True(removed)

	_, ok = s.registry.RoomOf("a")
	s.False(ok)
}

func (s *RegistrySuite) TestDisconnectLeavesEveryRoom() {
	s.create("a", "YYYYYY")
	s.create("b", "XYZ789")
	_, err := s.registry.Join("XYZ789", "a", "", "")
	s.Require().NoError(err)

	s.registry.RemovePlayer("a")

	// The room "a" created is left empty and closed
	_, ok := s.registry.Members("YYYYYY")
	s.False(ok)
	s.Equal(1, s.registry.Count())

	members, ok := s.registry.Members("XYZ789")
	s.Require().True(ok)
	s.Equal([]model.ConnID{"b"}, members.Connections())
}

func (s *RegistrySuite) TestDisconnectKeepsStartedRoomRoster() {
	s.create("a", "ABC123")
	s.create("b", "XYZ789")
	_, err := s.registry.Join("XYZ789", "a", "", "")
	s.Require().NoError(err)
	s.registry.Start("ABC123", json.RawMessage(`{}`))

	_, removed := s.registry.RemovePlayer("a")
	s.True(removed)

	members, ok := s.registry.Members("ABC123")
	s.Require().True(ok)
	s.Len(members, 1)
	members, _ = s.registry.Members("XYZ789")
	s.Len(members, 1)
}

func (s *RegistrySuite) TestRepeatedJoinKeepsSeat() {
	s.create("a", "ABC123")
	first, err := s.registry.Join("ABC123", "b", "", "Bob")
	s.Require().NoError(err)
	s.transport.Reset()

	again, err := s.registry.Join("ABC123", "b", "", "Bob")
	s.Require().NoError(err)
	s.Equal(first, again)

	members, _ := s.registry.Members("ABC123")
	s.Len(members, 2)

	// Only the joiner hears about it
	s.Require().Len(s.transport.All(), 1)
	msg, ok := s.transport.Last("b")
	s.Require().True(ok)
	s.Equal(protocol.EventJoinedLobby, msg.Event)
	s.Equal(protocol.JoinedLobby("ABC123", first), msg)
	s.Empty(s.transport.For("a"))
}

// Query tests

func (s *RegistrySuite) TestListOrdersByCreation() {
	s.create("a", "BBB222")
	s.clock.Advance(time.Second)
	s.create("b", "AAA111")

	rooms := s.registry.List()
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomCode("BBB222"), rooms[0].Code)
	s.Equal(model.RoomCode("AAA111"), rooms[1].Code)
}

func (s *RegistrySuite) TestGetReturnsSnapshot() {
	s.create("a", "ABC123")

	room, err := s.registry.Get("ABC123")
	s.Require().NoError(err)
	room.Players[0].Name = "mutated"

	again, _ := s.registry.Get("ABC123")
	s.Equal("Player 1", again.Players[0].Name)
}
