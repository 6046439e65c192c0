// Package main is the entry point for the hexroom server and its test client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/hexroom/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "hexroom",
	Short: "Hex grid tabletop relay server",
	Long: `hexroom keeps every player in a room looking at the same hex board: terrain,
tokens, dice and combat turns are relayed over websockets.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
