package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Open a lobby over the websocket and stream its events",
		Long: `Hold a seat in a lobby over the client protocol and print every event
the server sends to it.

Events include:
  - lobby_created / joined_lobby: your room code and player number
  - player_list: the roster changed
  - game_started: the host started the game
  - game_action: another player's action
  - error: the request was refused

Leaving the command closes the socket, which releases the seat.
Press Ctrl+C to disconnect.`,
	}

	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyJoinCmd())

	return cmd
}

type seatFlags struct {
	email string
	name  string
	count int
}

func (f *seatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Player identity (env: PARTYROOM_EMAIL)")
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().IntVar(&f.count, "count", 0, "Disconnect after this many events (0 streams until interrupted)")
}

func (f *seatFlags) payload() map[string]string {
	data := map[string]string{}
	email := f.email
	if email == "" {
		email = cfg.Email
	}
	if email != "" {
		data["email"] = email
	}
	if f.name != "" {
		data["playerName"] = f.name
	}
	return data
}

func newLobbyCreateCmd() *cobra.Command {
	var flags seatFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lobby and stream its events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamSocket(cmd, "create_lobby", flags.payload(), flags.count)
		},
	}

	flags.register(cmd)
	return cmd
}

func newLobbyJoinCmd() *cobra.Command {
	var flags seatFlags

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a lobby and stream its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := flags.payload()
			data["roomCode"] = strings.ToUpper(args[0])
			return streamSocket(cmd, "join_lobby", data, flags.count)
		},
	}

	flags.register(cmd)
	return cmd
}
