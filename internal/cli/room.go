package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomListCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var language string
	var prizePool float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a private room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"language": language,
			}
			if prizePool > 0 {
				req["prize_pool"] = prizePool
			}

			var result Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "en", "Word list language")
	cmd.Flags().Float64Var(&prizePool, "prize-pool", 0, "Prize pool staked on the game")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id-or-invite-code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])

			var result Room

			if err := client.Get("/api/v1/rooms/"+target, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List public rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
