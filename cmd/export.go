package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmanzoor3/tiq-assistant/engine"
	"github.com/fmanzoor3/tiq-assistant/export"
)

var (
	exportYear  int
	exportMonth int
	exportAll   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the month's entries to the timesheet spreadsheet",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	now := time.Now()
	exportCmd.Flags().IntVar(&exportYear, "year", now.Year(), "Export year")
	exportCmd.Flags().IntVar(&exportMonth, "month", int(now.Month()), "Export month (1-12)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Include drafts, not just approved entries")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportMonth < 1 || exportMonth > 12 {
		return fmt.Errorf("invalid --month value %d", exportMonth)
	}
	month := time.Month(exportMonth)

	cfg, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	from := engine.NewDate(exportYear, month, 1)
	to := engine.NewDate(exportYear, month, engine.DaysInMonth(exportYear, month))
	filter := engine.EntryFilter{From: &from, To: &to}
	if !exportAll {
		approved := engine.StatusApproved
		filter.Status = &approved
	}

	ctx := cmd.Context()
	entries, err := store.GetEntries(ctx, filter)
	if err != nil {
		return err
	}
	if exportAll {
		kept := entries[:0]
		for _, e := range entries {
			if e.Status != engine.StatusExported {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if len(entries) == 0 {
		fmt.Println("Nothing to export.")
		return nil
	}

	writer := export.NewWriter(cfg.ExportDir)
	path, rows, err := writer.WriteMonthly(exportYear, month, entries)
	if err != nil {
		return err
	}

	ids := make([]engine.EntryID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := store.MarkEntriesExported(ctx, ids, time.Now()); err != nil {
		return err
	}

	fmt.Printf("Wrote %d rows to %s\n", rows, path)
	return nil
}
