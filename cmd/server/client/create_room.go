package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/hexroom/internal/protocol"
)

var createRoomCmd = &cobra.Command{
	Use:   "create-room",
	Short: "Create a room and print its id",
	Long: `Create a room as GM and print the generated board summary. The room is
collected after the grace period once this command disconnects.`,
	Args: cobra.NoArgs,
	RunE: createRoom,
}

func createRoom(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	if err := send(conn, &protocol.CreateRoom{}); err != nil {
		return err
	}

	var created protocol.RoomCreated
	if err := await(ctx, conn, protocol.EventRoomCreated, &created); err != nil {
		return err
	}

	fmt.Printf("Room created\n")
	fmt.Printf("  Room ID: %s\n", created.RoomID)
	fmt.Printf("  User ID: %s\n", created.UserID)
	if created.RoomState != nil {
		fmt.Printf("  Hexes:   %d\n", len(created.RoomState.Terrain))
		fmt.Printf("  Users:   %d\n", len(created.RoomState.Users))
	}

	return nil
}
