package main

import (
	"github.com/spf13/cobra"

	"github.com/aisle-md/aislemd/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for aisle.md on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStoreID(cfg); err != nil {
				return err
			}

			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return mcp.NewServer(a.list, version, logger).Run(cmd.Context())
		},
	}

	return cmd
}
