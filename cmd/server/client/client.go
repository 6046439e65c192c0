// Package client provides test commands that talk to a running hexroom server
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KirkDiggler/hexroom/internal/protocol"
)

var (
	// Connection flags
	serverAddr string
	grpcAddr   string
	timeout    time.Duration
)

// ClientCmd is the root command for all client test commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Test client commands for a hexroom server",
	Long:  `Client commands open a real websocket (or gRPC health) connection and print what the server sends back.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:3000", "HTTP host:port of the server")
	ClientCmd.PersistentFlags().StringVar(&grpcAddr, "grpc", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(createRoomCmd)
	ClientCmd.AddCommand(joinRoomCmd)
	ClientCmd.AddCommand(rollCmd)
	ClientCmd.AddCommand(healthCmd)
}

// dial opens a websocket to the server's /ws endpoint
func dial(ctx context.Context) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: serverAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}
	return conn, nil
}

// createGRPCConnection creates a gRPC connection to the server
func createGRPCConnection() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(grpcAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return conn, nil
}

// send writes an intent in its envelope
func send(conn *websocket.Conn, intent protocol.Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", intent.IntentName(), err)
	}
	frame, err := json.Marshal(protocol.Envelope{Event: intent.IntentName(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// await reads frames until one named event arrives and decodes it into out.
// An error event from the server ends the wait.
func await(ctx context.Context, conn *websocket.Conn, event string, out any) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline) // nolint:errcheck // surfaced by the next read
	}

	for {
		env, err := next(conn)
		if err != nil {
			return err
		}
		switch env.Event {
		case event:
			if out == nil {
				return nil
			}
			return json.Unmarshal(env.Data, out)
		case protocol.EventError:
			var serverErr protocol.Error
			if err := json.Unmarshal(env.Data, &serverErr); err != nil {
				return fmt.Errorf("server error: %s", string(env.Data))
			}
			return fmt.Errorf("server error %s: %s", serverErr.Code, serverErr.Message)
		}
	}
}

func next(conn *websocket.Conn) (*protocol.Envelope, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &env, nil
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)) // nolint:errcheck // best effort
	_ = conn.Close()                                                                   // nolint:errcheck // safe to ignore in cleanup
}
