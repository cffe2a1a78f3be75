package room

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/partyroom/partyroom/internal/dependencies/clock"
	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
	"github.com/partyroom/partyroom/internal/transport"
)

// entry pairs a room with the lock that serializes its mutations.
// removed is set once the room has been deleted from the registry so that a
// caller holding a stale pointer treats it as gone.
type entry struct {
	mu      sync.Mutex
	room    *model.Room
	removed bool
}

// Registry owns every live room and the connection to room bindings
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*entry

	// bindings lists every room a connection created or joined, oldest first
	bindMu   sync.Mutex
	bindings map[model.ConnID][]model.RoomCode

	codes     *CodeGenerator
	transport transport.Transport
	clock     clock.Clock
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(codes *CodeGenerator, transport transport.Transport, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:     make(map[model.RoomCode]*entry),
		bindings:  make(map[model.ConnID][]model.RoomCode),
		codes:     codes,
		transport: transport,
		clock:     clock,
		logger:    logger.With(slog.String("component", "room-registry")),
	}
}

// Create opens a new room with the caller as player 1.
// The creator receives lobby_created followed by the roster.
func (r *Registry) Create(conn model.ConnID, identity, name string) (*model.Room, error) {
	if name == "" {
		name = model.DefaultPlayerName(1)
	}
	now := r.clock.Now()
	e := &entry{
		room: &model.Room{
			Players: model.Roster{{
				ConnID:   conn,
				Identity: identity,
				Name:     name,
				Number:   1,
			}},
			CreatedAt: now,
		},
	}

	// Lock the entry before publishing it so nobody can observe the room
	// ahead of the creator's own messages.
	e.mu.Lock()
	defer e.mu.Unlock()

	code, err := r.insert(e)
	if err != nil {
		r.logger.Error("failed to allocate room code", slog.String("conn", string(conn)), slog.Any("error", err))
		return nil, err
	}
	r.bind(conn, code)

	r.transport.Send(conn, protocol.LobbyCreated(code, 1))
	r.broadcastRoster(e.room)

	r.logger.Info("lobby created",
		slog.String("room", string(code)),
		slog.String("player", e.room.Players[0].Label()),
	)
	return e.room.Clone(), nil
}

// insert assigns an unused code to the entry and registers it
func (r *Registry) insert(e *entry) (model.RoomCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for range MaxCodeAttempts {
		code := r.codes.Generate()
		if _, exists := r.rooms[code]; exists {
			continue
		}
		e.room.Code = code
		r.rooms[code] = e
		return code, nil
	}
	return "", model.ErrCodeSpaceExhausted
}

// Join adds the caller to an existing room and returns the assigned number.
// Failure reasons are checked in order: unknown room, started game, full room.
// A connection already in the roster keeps its seat and is told its number
// again.
func (r *Registry) Join(code model.RoomCode, conn model.ConnID, identity, name string) (int, error) {
	e := r.lookup(code)
	if e == nil {
		return 0, model.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return 0, model.ErrRoomNotFound
	}
	if existing := e.room.Players.Find(conn); existing != nil {
		r.transport.Send(conn, protocol.JoinedLobby(code, existing.Number))
		r.logger.Debug("repeated join ignored",
			slog.String("room", string(code)),
			slog.String("player", existing.Label()),
		)
		return existing.Number, nil
	}
	if e.room.Started {
		return 0, model.ErrGameAlreadyStarted
	}
	if e.room.Players.Full() {
		return 0, model.ErrRoomFull
	}

	number := e.room.Players.NextNumber()
	if name == "" {
		name = model.DefaultPlayerName(number)
	}
	player := model.Player{
		ConnID:   conn,
		Identity: identity,
		Name:     name,
		Number:   number,
	}
	e.room.Players = append(e.room.Players, player)
	r.bind(conn, code)

	r.transport.Send(conn, protocol.JoinedLobby(code, number))
	r.broadcastRoster(e.room)

	r.logger.Info("player joined",
		slog.String("room", string(code)),
		slog.String("player", player.Label()),
		slog.Int("players", len(e.room.Players)),
	)
	return number, nil
}

// Start marks the room started and announces the roster and setup to every
// member. The setup is frozen on the first call; later calls re-announce it.
// Unknown codes are ignored.
func (r *Registry) Start(code model.RoomCode, setup json.RawMessage) {
	e := r.lookup(code)
	if e == nil {
		r.logger.Debug("start for unknown room ignored", slog.String("room", string(code)))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return
	}

	if !e.room.Started {
		now := r.clock.Now()
		e.room.Started = true
		e.room.StartedAt = &now
		if len(setup) > 0 {
			e.room.Setup = append(json.RawMessage(nil), setup...)
		}
		r.logger.Info("game started",
			slog.String("room", string(code)),
			slog.Int("players", len(e.room.Players)),
		)
	}

	r.transport.Broadcast(
		e.room.Players.Connections(),
		protocol.GameStarted(e.room.Players.Clone(), e.room.Setup),
		"",
	)
}

// RemovePlayer unbinds a closed connection from every room it created or
// joined. Players leave rooms that have not started; started rooms keep their
// roster. It reports the room the connection was most recently bound to and
// whether a player was removed from any room.
func (r *Registry) RemovePlayer(conn model.ConnID) (model.RoomCode, bool) {
	codes := r.unbind(conn)
	if len(codes) == 0 {
		return "", false
	}

	removedAny := false
	for _, code := range codes {
		if r.removeFrom(code, conn) {
			removedAny = true
		}
	}
	return codes[len(codes)-1], removedAny
}

// removeFrom drops conn from one room, deleting the room once it is empty
func (r *Registry) removeFrom(code model.RoomCode, conn model.ConnID) bool {
	e := r.lookup(code)
	if e == nil {
		return false
	}

	e.mu.Lock()
	removed, empty := r.removeLocked(e, conn)
	e.mu.Unlock()

	if empty {
		r.mu.Lock()
		if r.rooms[code] == e {
			delete(r.rooms, code)
		}
		r.mu.Unlock()
		r.logger.Info("room closed", slog.String("room", string(code)))
	}
	return removed
}

// removeLocked drops conn from the room. The caller holds e.mu.
func (r *Registry) removeLocked(e *entry, conn model.ConnID) (removed, empty bool) {
	if e.removed {
		return false, false
	}
	idx := e.room.Players.IndexOf(conn)
	if idx < 0 {
		return false, false
	}
	if e.room.Started {
		r.logger.Info("player disconnected from started game",
			slog.String("room", string(e.room.Code)),
			slog.String("player", e.room.Players[idx].Label()),
		)
		return false, false
	}

	player := e.room.Players[idx]
	e.room.Players = e.room.Players.Without(idx)
	r.logger.Info("player left",
		slog.String("room", string(e.room.Code)),
		slog.String("player", player.Label()),
		slog.Int("players", len(e.room.Players)),
	)

	if len(e.room.Players) == 0 {
		e.removed = true
		return true, true
	}
	r.broadcastRoster(e.room)
	return true, false
}

// Get returns a snapshot of the room
func (r *Registry) Get(code model.RoomCode) (*model.Room, error) {
	e := r.lookup(code)
	if e == nil {
		return nil, model.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, model.ErrRoomNotFound
	}
	return e.room.Clone(), nil
}

// List returns snapshots of every live room ordered by creation time
func (r *Registry) List() []*model.Room {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			rooms = append(rooms, e.room.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].Code < rooms[j].Code
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// Members returns a snapshot of the room's roster
func (r *Registry) Members(code model.RoomCode) (model.Roster, bool) {
	e := r.lookup(code)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, false
	}
	return e.room.Players.Clone(), true
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// RoomOf returns the room the connection most recently created or joined
func (r *Registry) RoomOf(conn model.ConnID) (model.RoomCode, bool) {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	codes := r.bindings[conn]
	if len(codes) == 0 {
		return "", false
	}
	return codes[len(codes)-1], true
}

func (r *Registry) lookup(code model.RoomCode) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[code]
}

// bind records a room the connection created or joined, moving it to the
// end if already present
func (r *Registry) bind(conn model.ConnID, code model.RoomCode) {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	codes := slices.DeleteFunc(r.bindings[conn], func(c model.RoomCode) bool { return c == code })
	r.bindings[conn] = append(codes, code)
}

func (r *Registry) unbind(conn model.ConnID) []model.RoomCode {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	codes := r.bindings[conn]
	delete(r.bindings, conn)
	return codes
}

// broadcastRoster sends the current roster to every member. The caller holds
// the room lock.
func (r *Registry) broadcastRoster(room *model.Room) {
	r.transport.Broadcast(room.Players.Connections(), protocol.PlayerList(room.Players.Clone()), "")
}
