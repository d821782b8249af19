package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

var holidaysYear int

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Manage the holiday table",
}

var holidaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored holidays",
	Args:  cobra.NoArgs,
	RunE:  runHolidaysList,
}

var holidaysDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Load the built-in holiday table",
	Args:  cobra.NoArgs,
	RunE:  runHolidaysDefaults,
}

var holidaysClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the holiday table",
	Args:  cobra.NoArgs,
	RunE:  runHolidaysClear,
}

func init() {
	holidaysListCmd.Flags().IntVar(&holidaysYear, "year", 0, "Filter by year (0 = all)")
	holidaysCmd.AddCommand(holidaysListCmd)
	holidaysCmd.AddCommand(holidaysDefaultsCmd)
	holidaysCmd.AddCommand(holidaysClearCmd)
}

func runHolidaysList(cmd *cobra.Command, args []string) error {
	_, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	holidays, err := store.GetHolidays(cmd.Context(), holidaysYear)
	if err != nil {
		return err
	}
	if len(holidays) == 0 {
		fmt.Println("No holidays stored. Run `tiq holidays defaults` to load the built-in table.")
		return nil
	}
	for _, h := range holidays {
		tag := ""
		if h.Type == engine.HolidayHalfDay {
			tag = " (half day)"
		}
		fmt.Printf("  %s  %s%s\n", h.Date, h.Name, tag)
	}
	return nil
}

func runHolidaysDefaults(cmd *cobra.Command, args []string) error {
	_, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	count, err := store.SaveHolidaysBatch(cmd.Context(), engine.DefaultHolidays(), "defaults")
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d holidays.\n", count)
	return nil
}

func runHolidaysClear(cmd *cobra.Command, args []string) error {
	_, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	count, err := store.ClearAllHolidays(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d holidays.\n", count)
	return nil
}
