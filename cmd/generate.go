package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

var (
	generateDate   string
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Turn a day's cached meetings into draft timesheet entries",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "Date to reconcile (YYYY-MM-DD); defaults to today")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print planned entries without writing")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	d := engine.Today()
	if generateDate != "" {
		parsed, err := engine.ParseDate(generateDate)
		if err != nil {
			return fmt.Errorf("invalid --date value %q: %w", generateDate, err)
		}
		d = parsed
	}

	_, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	ctx := cmd.Context()
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}
	projects, err := store.GetProjects(ctx, true)
	if err != nil {
		return err
	}
	meetings, err := store.GetMeetingsForDate(ctx, d)
	if err != nil {
		return err
	}

	var pending []engine.Meeting
	var events []engine.CalendarEvent
	skippedImported := 0
	for _, m := range meetings {
		if m.Imported {
			skippedImported++
			continue
		}
		pending = append(pending, m)
		events = append(events, m.ToEvent())
	}

	matcher := engine.NewEventMatcher(projects)
	pipeline := engine.NewPipeline(matcher)
	entries, warnings := pipeline.GenerateEntries(events, settings)

	dryTag := ""
	if generateDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Reconciling %s%s...\n\n", d, dryTag)

	byEvent := make(map[engine.EventID]engine.Meeting, len(pending))
	for _, m := range pending {
		byEvent[engine.EventID(m.ID)] = m
	}

	for _, entry := range entries {
		if !generateDryRun {
			if err := store.SaveEntry(ctx, entry); err != nil {
				return err
			}
			if m, ok := byEvent[entry.SourceEventID]; ok {
				if err := store.MarkMeetingImported(ctx, m.ID, entry.ID); err != nil {
					fmt.Printf("  ! Could not mark %q imported: %v\n", m.Subject, err)
				}
			}
		}
		project := entry.ProjectName
		if project == "" {
			project = "(unmatched)"
		}
		fmt.Printf("  ✓ %dh  %-30s %s\n", entry.Hours, project, entry.Description)
	}
	for _, warn := range warnings {
		fmt.Printf("  ! Skipped %s: %s\n", warn.EventID, warn.Reason)
	}
	if keys := matcher.UnmatchedKeys(events); len(keys) > 0 {
		fmt.Printf("\nUnknown issue keys (consider adding projects): %v\n", keys)
	}

	fmt.Printf("\nSummary: %d entries, %d warnings, %d already imported.\n",
		len(entries), len(warnings), skippedImported)
	return nil
}
