package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download today's puzzle if it is not stored yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		svc := newService(st)
		added, err := svc.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s\n", svc.Today())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already stored\n", svc.Today())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
