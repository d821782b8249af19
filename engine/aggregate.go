/*
aggregate.go - Same-day entry compaction

PURPOSE:
  Aggregate merges entries that share (date, project, ticket, activity)
  into one row: hours are summed, descriptions concatenated with "; ".
  The merged entry is a new logical entry with a fresh ID and a fresh
  draft status, not an in-place edit of any input.

PROPERTIES:
  - Order-preserving over the first occurrence of each key.
  - Idempotent on total hours: aggregating twice never changes the sum.
    Descriptions may collapse further on a second pass when duplicate
    substrings appear; that is expected, not a bug.
*/
package engine

import (
	"strings"
	"time"
)

type aggregateKey struct {
	date     Date
	project  string
	ticket   string
	activity ActivityCode
}

// Aggregate merges same-day/same-project/same-activity entries. The
// merged entry keeps the consultant, location and source of the first
// entry seen for its key.
func Aggregate(entries []TimesheetEntry) []TimesheetEntry {
	now := time.Now()
	index := make(map[aggregateKey]int)
	var out []TimesheetEntry

	for _, e := range entries {
		key := aggregateKey{
			date:     e.EntryDate,
			project:  e.ProjectName,
			ticket:   e.TicketNumber,
			activity: e.Activity,
		}

		if i, ok := index[key]; ok {
			out[i].Hours += e.Hours
			// Skip additions already contained in the accumulated text;
			// prevents runaway duplication on repeated aggregation.
			if !strings.Contains(out[i].Description, e.Description) {
				out[i].Description = out[i].Description + "; " + e.Description
			}
			continue
		}

		index[key] = len(out)
		out = append(out, TimesheetEntry{
			ID:             EntryID(NewID()),
			ConsultantID:   e.ConsultantID,
			EntryDate:      e.EntryDate,
			Hours:          e.Hours,
			TicketNumber:   e.TicketNumber,
			ProjectName:    e.ProjectName,
			Activity:       e.Activity,
			Location:       e.Location,
			Description:    e.Description,
			Status:         StatusDraft,
			Source:         e.Source,
			SourceIssueKey: e.SourceIssueKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return out
}
