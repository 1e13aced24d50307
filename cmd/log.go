package cmd

import (
	"fmt"

	"github.com/mkovarik/faceattend/internal/config"
	"github.com/mkovarik/faceattend/internal/ledger"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the attendance log",
	Long: `Log prints recorded attendance, newest first. Use --date to show a
single day (YYYY-MM-DD) and --name to filter by identity; the name
filter is case-insensitive and ignores diacritics.`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().String("date", "", "Only show records for this date (YYYY-MM-DD)")
	logCmd.Flags().String("name", "", "Only show records whose name contains this text")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	led, err := ledger.New(cfg.Attendance.CSVPath)
	if err != nil {
		return fmt.Errorf("opening attendance ledger: %w", err)
	}

	records, err := led.Log(mustGetString(cmd, "date"), mustGetString(cmd, "name"))
	if err != nil {
		return fmt.Errorf("reading attendance log: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found")
		return nil
	}

	fmt.Printf("%-30s %-12s %-10s\n", "NAME", "DATE", "TIME")
	for _, rec := range records {
		fmt.Printf("%-30s %-12s %-10s\n", rec.Name, rec.Date, rec.Time)
	}
	fmt.Printf("\n%d records\n", len(records))
	return nil
}
