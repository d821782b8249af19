package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testProject(name, ticket, issueKey string, keywords ...string) engine.Project {
	p := engine.NewProject(name, ticket)
	p.IssueKey = issueKey
	p.Keywords = keywords
	return p
}

func newTestMatcher() *engine.EventMatcher {
	return engine.NewEventMatcher([]engine.Project{
		testProject("Payroll Platform", "T-1001", "PEMP-948", "payroll", "bordro"),
		testProject("Core Banking", "T-1002", "CB-12", "banking"),
		testProject("Internal", "T-1003", "", "standup"),
	})
}

// =============================================================================
// PRIORITY LADDER TESTS
// =============================================================================

func TestEventMatcher_SubjectIssueKey(t *testing.T) {
	// GIVEN: A subject carrying a registered issue key
	// WHEN: Matching
	// THEN: Full confidence via the jira_key strategy

	m := newTestMatcher()

	r := m.Match("PEMP-948 sprint planning", "")
	require.True(t, r.Matched())
	assert.Equal(t, "Payroll Platform", r.ProjectName)
	assert.Equal(t, "T-1001", r.TicketNumber)
	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, engine.MatchByJiraKey, r.Source)
	assert.Equal(t, "PEMP-948", r.MatchedText)
}

func TestEventMatcher_SubjectKeyIsCaseInsensitive(t *testing.T) {
	m := newTestMatcher()

	r := m.Match("pemp-948 review", "")
	require.True(t, r.Matched())
	assert.Equal(t, engine.MatchByJiraKey, r.Source)
}

func TestEventMatcher_BrowseURL(t *testing.T) {
	// GIVEN: No key in the subject, a /browse/ URL in the description
	// WHEN: Matching
	// THEN: Full confidence via the description_url strategy

	m := newTestMatcher()

	r := m.Match("Weekly review", "agenda: https://jira.example.com/browse/CB-12 minutes")
	require.True(t, r.Matched())
	assert.Equal(t, "Core Banking", r.ProjectName)
	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, engine.MatchByDescriptionURL, r.Source)
}

func TestEventMatcher_BrowseURL_CaseInsensitive(t *testing.T) {
	// GIVEN: /browse/ URLs in assorted letter cases
	// WHEN: Matching
	// THEN: The URL strategy fires at full confidence for each

	m := newTestMatcher()

	for _, desc := range []string{
		"see https://jira.example.com/Browse/cb-12",
		"see HTTPS://JIRA.EXAMPLE.COM/BROWSE/CB-12",
	} {
		r := m.Match("Weekly review", desc)
		require.True(t, r.Matched(), desc)
		assert.Equal(t, 1.0, r.Confidence, desc)
		assert.Equal(t, engine.MatchByDescriptionURL, r.Source, desc)
		assert.Equal(t, "CB-12", r.MatchedText, desc)
	}
}

func TestEventMatcher_PlainDescriptionKey(t *testing.T) {
	// GIVEN: A registered key only in the description body
	// WHEN: Matching
	// THEN: 0.9 confidence via the description strategy

	m := newTestMatcher()

	r := m.Match("Weekly review", "discussing CB-12 rollout")
	require.True(t, r.Matched())
	assert.Equal(t, "Core Banking", r.ProjectName)
	assert.Equal(t, 0.9, r.Confidence)
	assert.Equal(t, engine.MatchByDescription, r.Source)
}

func TestEventMatcher_SubjectBeatsDescription(t *testing.T) {
	// GIVEN: Different registered keys in subject and description
	// WHEN: Matching
	// THEN: The subject key wins at full confidence

	m := newTestMatcher()

	r := m.Match("PEMP-948 sync", "see also CB-12")
	require.True(t, r.Matched())
	assert.Equal(t, "Payroll Platform", r.ProjectName)
	assert.Equal(t, engine.MatchByJiraKey, r.Source)
}

func TestEventMatcher_KeywordFallback(t *testing.T) {
	// GIVEN: No issue keys anywhere, a keyword in the subject
	// WHEN: Matching
	// THEN: Keyword strategy with score len(kw)/len(subject)+0.3, capped at 0.8

	m := newTestMatcher()

	subject := "monthly payroll review"
	r := m.Match(subject, "")
	require.True(t, r.Matched())
	assert.Equal(t, "Payroll Platform", r.ProjectName)
	assert.Equal(t, engine.MatchByKeyword, r.Source)
	assert.InDelta(t, float64(len("payroll"))/float64(len(subject))+0.3, r.Confidence, 1e-9)
}

func TestEventMatcher_KeywordScoreCapped(t *testing.T) {
	// GIVEN: A keyword nearly as long as the subject
	// WHEN: Matching
	// THEN: The score caps at 0.8

	m := newTestMatcher()

	r := m.Match("payroll", "")
	require.True(t, r.Matched())
	assert.Equal(t, 0.8, r.Confidence)
}

func TestEventMatcher_NoMatch(t *testing.T) {
	m := newTestMatcher()

	r := m.Match("lunch with the team", "")
	assert.False(t, r.Matched())
	assert.Equal(t, engine.MatchNone, r.Source)
	assert.Zero(t, r.Confidence)
}

func TestEventMatcher_UnregisteredKeyFallsThrough(t *testing.T) {
	// GIVEN: A subject with an unknown issue key but a known keyword
	// WHEN: Matching
	// THEN: The ladder falls through to the keyword strategy

	m := newTestMatcher()

	r := m.Match("XYZ-777 banking alignment", "")
	require.True(t, r.Matched())
	assert.Equal(t, "Core Banking", r.ProjectName)
	assert.Equal(t, engine.MatchByKeyword, r.Source)
}

func TestEventMatcher_InactiveProjectsExcluded(t *testing.T) {
	// GIVEN: A project that has been deactivated
	// WHEN: Matching its issue key
	// THEN: No match

	p := testProject("Old", "T-9", "OLD-1")
	p.Active = false
	m := engine.NewEventMatcher([]engine.Project{p})

	r := m.Match("OLD-1 revival", "")
	assert.False(t, r.Matched())
}

// =============================================================================
// BATCH TESTS
// =============================================================================

func TestEventMatcher_MatchEvents_DoesNotMutateInput(t *testing.T) {
	// GIVEN: A slice of raw events
	// WHEN: Batch matching
	// THEN: The returned copies are annotated; the originals are untouched

	m := newTestMatcher()
	events := []engine.CalendarEvent{
		{ID: "e1", Subject: "PEMP-948 planning"},
		{ID: "e2", Subject: "lunch"},
	}

	out := m.MatchEvents(events)

	require.Len(t, out, 2)
	assert.Equal(t, engine.MatchByJiraKey, out[0].MatchSource)
	assert.Equal(t, "PEMP-948", out[0].MatchedIssueKey)
	assert.Equal(t, engine.MatchNone, out[1].MatchSource)

	assert.Empty(t, events[0].MatchedIssueKey, "input must stay unannotated")
	assert.Empty(t, events[0].MatchSource)
}

func TestEventMatcher_UnmatchedKeys(t *testing.T) {
	// GIVEN: Events mentioning registered and unregistered keys
	// WHEN: Collecting unmatched keys
	// THEN: Only unregistered keys come back, sorted, deduplicated

	m := newTestMatcher()
	events := []engine.CalendarEvent{
		{Subject: "PEMP-948 and ZZZ-9 sync"},
		{Subject: "review", Description: "see ABC-1 and ZZZ-9 via https://jira.example.com/browse/ABC-1"},
	}

	keys := m.UnmatchedKeys(events)
	assert.Equal(t, []string{"ABC-1", "ZZZ-9"}, keys)
}
