package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/hexroom/internal/protocol"
)

var (
	rollRoomID      string
	rollDescription string
)

var rollCmd = &cobra.Command{
	Use:   "roll [notation]",
	Short: "Roll dice on the server",
	Long: `Roll dice with the server's roller and print the result. Examples:

  roll 4d6
  roll 1d20+5 --room 3f2c... --description attack

Without --room a throwaway room is created first.`,
	Args: cobra.ExactArgs(1),
	RunE: roll,
}

func init() {
	rollCmd.Flags().StringVar(&rollRoomID, "room", "", "Room to roll in")
	rollCmd.Flags().StringVar(&rollDescription, "description", "", "Description recorded with the roll")
}

func roll(_ *cobra.Command, args []string) error {
	notation := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	roomID := rollRoomID
	if roomID == "" {
		if err := send(conn, &protocol.CreateRoom{}); err != nil {
			return err
		}
		var created protocol.RoomCreated
		if err := await(ctx, conn, protocol.EventRoomCreated, &created); err != nil {
			return err
		}
		roomID = created.RoomID
	} else {
		if err := send(conn, &protocol.JoinRoom{RoomRef: protocol.RoomRef{RoomID: roomID}}); err != nil {
			return err
		}
		if err := await(ctx, conn, protocol.EventRoomJoined, nil); err != nil {
			return err
		}
	}

	err = send(conn, &protocol.RollDice{
		RoomRef:     protocol.RoomRef{RoomID: roomID},
		Notation:    notation,
		Description: rollDescription,
	})
	if err != nil {
		return err
	}

	var result protocol.DiceRollResult
	if err := await(ctx, conn, protocol.EventDiceRollResult, &result); err != nil {
		return err
	}

	fmt.Printf("\n🎲 Dice Roll Results:\n")
	fmt.Printf("===================\n")
	fmt.Printf("  Room:     %s\n", roomID)
	fmt.Printf("  Roll ID:  %s\n", result.RollID)
	fmt.Printf("  Notation: %s\n", result.Notation)
	fmt.Printf("  Dice:     %s\n", string(result.Results))
	fmt.Printf("  Total:    %g\n", result.Total)

	return nil
}
