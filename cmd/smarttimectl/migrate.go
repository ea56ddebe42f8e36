package main

import (
	"fmt"

	"smart_time/internal/migrations"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		Long: `Apply every embedded SQL migration in name order.
Each file is idempotent, so running it against an up to date database is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := migrations.Names()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			applied := 0
			err = migrations.Apply(cmd.Context(), e.pool, func(name string) {
				applied++
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list embedded migrations without touching the database")
	return cmd
}
