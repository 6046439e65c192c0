package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/hexroom/internal/protocol"
)

var watch bool

var joinRoomCmd = &cobra.Command{
	Use:   "join-room [room-id]",
	Short: "Join a room and print its state",
	Long: `Join an existing room. With --watch the connection stays open and every
event the room broadcasts is printed until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: joinRoom,
}

func init() {
	joinRoomCmd.Flags().BoolVar(&watch, "watch", false, "Stay connected and print room events")
}

func joinRoom(_ *cobra.Command, args []string) error {
	roomID := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	if err := send(conn, &protocol.JoinRoom{RoomRef: protocol.RoomRef{RoomID: roomID}}); err != nil {
		return err
	}

	var joined protocol.RoomJoined
	if err := await(ctx, conn, protocol.EventRoomJoined, &joined); err != nil {
		return err
	}

	fmt.Printf("Joined room %s as %s\n", joined.RoomID, joined.UserID)
	if joined.State != nil {
		fmt.Printf("  Hexes: %d\n", len(joined.State.Terrain))
		fmt.Printf("  Users: %d\n", len(joined.State.Users))
		if joined.State.Combat != nil && joined.State.Combat.Active {
			fmt.Printf("  Combat round %d\n", joined.State.Combat.Round)
		}
	}

	if !watch {
		return nil
	}

	// The join deadline no longer applies
	_ = conn.SetReadDeadline(time.Time{}) // nolint:errcheck // surfaced by the next read

	interrupt, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-interrupt.Done()
		closeConn(conn)
	}()

	for {
		env, err := next(conn)
		if err != nil {
			if interrupt.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Printf("%s %s\n", env.Event, string(env.Data))
	}
}
