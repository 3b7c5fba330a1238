package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aisle-md/aislemd/internal/database"
)

func newResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every mirrored item",
		Long:  "Remove every mirrored item. The next sync re-imports the list and looks every item up again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				reader := bufio.NewReader(os.Stdin)
				fmt.Fprint(cmd.ErrOrStderr(), "Remove all mirrored items and their aisle data? (y/N) ")
				answer, err := reader.ReadString('\n')
				if err != nil {
					return err
				}

				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled")
					return nil
				}
			}

			dbCtx, err := database.CreateDatabase(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			removed, err := database.ClearDatabase(dbCtx)
			if err != nil {
				return err
			}

			logger.Info("mirror cleared", zap.Int64("removed", removed))
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	return cmd
}
