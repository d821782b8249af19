/*
matcher.go - Deterministic event-to-project matching

PURPOSE:
  EventMatcher resolves a free-text calendar event to a tracked project
  with a confidence ranking. Ambiguity is never surfaced as an error:
  the strategies run in strict priority order and the first hit wins.

PRIORITY ORDER:
  1. Issue key in the subject          confidence 1.0  (jira_key)
  2. Issue key in a /browse/ URL       confidence 1.0  (description_url)
  3. Plain issue key in the body       confidence 0.9  (description)
  4. Keyword containment in subject    confidence <=0.8 (keyword)

  Explicit issue-key references are unambiguous and must always outrank
  fuzzy keyword containment; a key in the visible subject is trusted
  over one buried in a description body or URL.

STATE:
  The matcher owns a snapshot of the active project set taken at
  construction. It never mutates the events it inspects; MatchEvents
  returns annotated copies.
*/
package engine

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Issue key shape: 2-10 uppercase letters, hyphen, 1-6 digits.
	issueKeyPattern = regexp.MustCompile(`\b([A-Z]{2,10}-[0-9]{1,6})\b`)

	// Issue key embedded in a URL path segment, e.g. ".../browse/PEMP-948".
	// The segment is matched case-insensitively; keys are uppercased after
	// capture.
	browseURLPattern = regexp.MustCompile(`(?i)/browse/([A-Za-z]{2,10}-[0-9]{1,6})`)
)

// EventMatcher matches events against a fixed snapshot of active projects.
type EventMatcher struct {
	projects []Project
	byKey    map[string]int // issue key -> index into projects
}

// NewEventMatcher snapshots the active projects, preserving their order
// for deterministic tie-breaking. Issue keys index at most one project;
// the first registration wins.
func NewEventMatcher(projects []Project) *EventMatcher {
	m := &EventMatcher{byKey: make(map[string]int)}
	for _, p := range projects {
		if !p.Active {
			continue
		}
		m.projects = append(m.projects, p)
		if key := NormalizeIssueKey(p.IssueKey); key != "" {
			if _, taken := m.byKey[key]; !taken {
				m.byKey[key] = len(m.projects) - 1
			}
		}
	}
	return m
}

// Match runs the priority ladder over the event's text fields. Absence is
// a zero-confidence result, not an error.
func (m *EventMatcher) Match(subject, description string) MatchResult {
	// Strategy 1: issue key in the subject.
	subjectKeys := extractIssueKeys(subject)
	for _, key := range subjectKeys {
		if p, ok := m.lookup(key); ok {
			return m.result(p, 1.0, MatchByJiraKey, key)
		}
	}

	if description != "" {
		// Strategy 2: issue key inside a /browse/ URL of the description.
		for _, key := range extractBrowseKeys(description) {
			if p, ok := m.lookup(key); ok {
				return m.result(p, 1.0, MatchByDescriptionURL, key)
			}
		}

		// Strategy 3: plain issue key in the description, skipping keys
		// already tried against the subject.
		tried := make(map[string]bool, len(subjectKeys))
		for _, key := range subjectKeys {
			tried[key] = true
		}
		for _, key := range extractIssueKeys(description) {
			if tried[key] {
				continue
			}
			if p, ok := m.lookup(key); ok {
				return m.result(p, 0.9, MatchByDescription, key)
			}
		}
	}

	// Strategy 4: keyword containment against the subject.
	if r, ok := m.matchByKeywords(subject); ok {
		return r
	}

	return MatchResult{Source: MatchNone}
}

// MatchEvent matches a single event's text fields.
func (m *EventMatcher) MatchEvent(ev CalendarEvent) MatchResult {
	return m.Match(ev.Subject, ev.Description)
}

// MatchEvents returns annotated copies of the events; the input slice is
// left untouched.
func (m *EventMatcher) MatchEvents(events []CalendarEvent) []CalendarEvent {
	out := make([]CalendarEvent, len(events))
	for i, ev := range events {
		r := m.MatchEvent(ev)
		ev.MatchedProjectID = r.ProjectID
		ev.MatchedIssueKey = r.IssueKey
		ev.MatchConfidence = r.Confidence
		ev.MatchSource = r.Source
		out[i] = ev
	}
	return out
}

// UnmatchedKeys returns the issue keys seen anywhere in the events that
// have no registered project, sorted and deduplicated.
func (m *EventMatcher) UnmatchedKeys(events []CalendarEvent) []string {
	seen := make(map[string]bool)
	for _, ev := range events {
		keys := extractIssueKeys(ev.Subject)
		keys = append(keys, extractIssueKeys(ev.Description)...)
		keys = append(keys, extractBrowseKeys(ev.Description)...)
		for _, key := range keys {
			if _, ok := m.lookup(key); !ok {
				seen[key] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (m *EventMatcher) lookup(key string) (Project, bool) {
	i, ok := m.byKey[key]
	if !ok {
		return Project{}, false
	}
	return m.projects[i], true
}

func (m *EventMatcher) result(p Project, confidence float64, source MatchSource, text string) MatchResult {
	return MatchResult{
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		TicketNumber: p.TicketNumber,
		IssueKey:     p.IssueKey,
		Confidence:   confidence,
		Source:       source,
		MatchedText:  text,
	}
}

// matchByKeywords scores every project's keyword list against the subject.
// Score = min(0.8, len(keyword)/len(subject) + 0.3); the highest score
// wins, ties keep the first project encountered.
func (m *EventMatcher) matchByKeywords(subject string) (MatchResult, bool) {
	if subject == "" {
		return MatchResult{}, false
	}
	lower := strings.ToLower(subject)

	var best MatchResult
	bestScore := 0.0
	for _, p := range m.projects {
		for _, keyword := range p.Keywords {
			if keyword == "" || !strings.Contains(lower, strings.ToLower(keyword)) {
				continue
			}
			score := float64(len(keyword))/float64(len(subject)) + 0.3
			if score > 0.8 {
				score = 0.8
			}
			if score > bestScore {
				bestScore = score
				best = m.result(p, score, MatchByKeyword, keyword)
			}
		}
	}
	if bestScore == 0 {
		return MatchResult{}, false
	}
	return best, true
}

func extractIssueKeys(text string) []string {
	if text == "" {
		return nil
	}
	matches := issueKeyPattern.FindAllStringSubmatch(strings.ToUpper(text), -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}

func extractBrowseKeys(text string) []string {
	if text == "" {
		return nil
	}
	matches := browseURLPattern.FindAllStringSubmatch(text, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, strings.ToUpper(m[1]))
	}
	return keys
}
