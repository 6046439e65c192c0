package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query the gRPC health service",
	Args:  cobra.NoArgs,
	RunE:  checkHealth,
}

func checkHealth(_ *cobra.Command, _ []string) error {
	conn, err := createGRPCConnection()
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("health check failed: %w", errors.FromGRPCError(err))
	}

	fmt.Printf("Status: %s\n", resp.GetStatus())
	return nil
}
