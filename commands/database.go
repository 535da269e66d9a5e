package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-reservation/database"
)

var (
	// Reset flags
	confirmReset bool
	// Check flags
	jsonOutput bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)
		return database.Migrate(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with the demo data set",
	Long: `Replace all data with the demo data set: an admin, a staff member and a
customer (password "` + database.DemoPassword + `"), eight tables and two sample
reservations for today and tomorrow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		result, err := database.Seed(cmd.Context(), db, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d tables, %d reservations\n", result.Users, result.Tables, result.Reservations)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every row from every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return errors.New("refusing to reset without --yes")
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.Reset(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity and report row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		report, err := database.Check(cmd.Context(), db)
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "Confirm deletion of all data")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(migrateCmd, seedCmd, resetCmd, checkCmd)
}

func printReport(cmd *cobra.Command, report database.CheckReport) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "Driver: %s\n", report.Driver)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tEXISTS\tROWS")
	for _, t := range report.Tables {
		fmt.Fprintf(w, "%s\t%t\t%d\n", t.Name, t.Exists, t.Rows)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, t := range report.Tables {
		if !t.Exists {
			fmt.Fprintln(cmd.ErrOrStderr(), "some tables are missing, run migrate")
			break
		}
	}
	return nil
}
