package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmanzoor3/tiq-assistant/engine"
	"github.com/fmanzoor3/tiq-assistant/outlook"
)

var (
	syncFrom string
	syncTo   string
	syncDate string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch Outlook calendar meetings into the local cache",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "Start date (YYYY-MM-DD)")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "End date (YYYY-MM-DD); defaults to --from")
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Sync a single date (YYYY-MM-DD)")
}

func runSync(cmd *cobra.Command, args []string) error {
	from, to, err := resolveDateRange(syncDate, syncFrom, syncTo)
	if err != nil {
		return err
	}

	cfg, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	if cfg.Outlook.ClientID == "" {
		return fmt.Errorf("no outlook client configured (set TIQ_OUTLOOK_CLIENT_ID or outlook.client_id)")
	}

	ctx := cmd.Context()
	auth := outlook.NewAuthenticator(cfg.Outlook.TenantID, cfg.Outlook.ClientID, cfg.TokenPath())
	client, err := outlook.NewClient(ctx, auth, cfg.Outlook.Timezone)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	source := outlook.NewSource(client, store, log)

	fmt.Printf("Syncing calendar (%s → %s)...\n", from, to)
	meetings, err := source.GetMeetingsForRange(ctx, from, to)
	if err != nil {
		return err
	}

	for _, m := range meetings {
		marker := " "
		if m.Imported {
			marker = "✓"
		}
		fmt.Printf("  %s %s  %s (%d min)\n",
			marker, m.Start.Format("2006-01-02 15:04"), m.Subject, m.DurationMinutes())
	}
	fmt.Printf("\n%d meetings cached.\n", len(meetings))
	return nil
}

// resolveDateRange turns the --date/--from/--to flags into a date pair,
// defaulting to today.
func resolveDateRange(date, from, to string) (engine.Date, engine.Date, error) {
	today := engine.Today()

	if date != "" {
		d, err := engine.ParseDate(date)
		if err != nil {
			return engine.Date{}, engine.Date{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return d, d, nil
	}
	if from == "" && to == "" {
		return today, today, nil
	}
	if from == "" {
		return engine.Date{}, engine.Date{}, fmt.Errorf("--from is required when --to is specified")
	}

	f, err := engine.ParseDate(from)
	if err != nil {
		return engine.Date{}, engine.Date{}, fmt.Errorf("invalid --from value %q: %w", from, err)
	}
	t := f
	if to != "" {
		t, err = engine.ParseDate(to)
		if err != nil {
			return engine.Date{}, engine.Date{}, fmt.Errorf("invalid --to value %q: %w", to, err)
		}
	}
	if t.Before(f) {
		return engine.Date{}, engine.Date{}, fmt.Errorf("--to must not be before --from")
	}
	return f, t, nil
}
