package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oticas/internal/infrastructure/database"
	"oticas/internal/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Database migration management",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.Open(ctx, cfg.Database, zapLogger)
		if err != nil {
			return err
		}
		defer db.Close()

		runner, err := migrations.NewRunner(db.DB.DB, cfg.Database.Driver, zapLogger)
		if err != nil {
			return err
		}

		action := "up"
		if len(args) > 0 {
			action = args[0]
		}

		switch action {
		case "up":
			if err := runner.Up(ctx); err != nil {
				return err
			}
			fmt.Println(color.New(color.FgGreen).Sprint("migrations applied"))
			return nil
		case "down":
			if err := runner.Down(ctx); err != nil {
				return err
			}
			fmt.Println(color.New(color.FgYellow).Sprint("last migration rolled back"))
			return nil
		case "status":
			statuses, err := runner.Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATE\tAPPLIED AT")
			for _, s := range statuses {
				state := color.New(color.FgYellow).Sprint("pending")
				appliedAt := "-"
				if s.Applied {
					state = color.New(color.FgGreen).Sprint("applied")
					appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, state, appliedAt)
			}
			return w.Flush()
		default:
			return fmt.Errorf("unknown migrate action %q", action)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
