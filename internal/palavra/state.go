/*
Package palavra is the application state controller: it owns a session's
plan, daily search counter, saved verses, search history and theme, and
applies every user intent as a transition from one State to the next.

Transitions are pure methods on State. The Controller loads a State from the
preference store, applies a transition, then mirrors the touched keys back.
*/
package palavra

import (
	"slices"
	"strings"
	"time"

	"PalavraCerta/internal/plan"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "02/01/2006, 15:04:05"
)

// Verse is what the provider returns for a feeling or for the devotional.
type Verse struct {
	Reference  string `json:"verse"`
	Text       string `json:"text"`
	Reflection string `json:"reflection"`
}

// SavedVerse is a verse in the personal collection.
type SavedVerse struct {
	Verse
	SavedAt string `json:"savedAt"`
}

// SearchHistoryItem records one accepted search.
type SearchHistoryItem struct {
	Feeling   string `json:"feeling"`
	Timestamp string `json:"timestamp"`
}

// DailySearch counts FREE searches for one calendar date (UTC).
type DailySearch struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// Devotional is the once-a-day verse cache.
type Devotional struct {
	Verse *Verse `json:"verse"`
	Date  string `json:"date"`
}

// Today formats now as the counter's calendar date.
func Today(now time.Time) string {
	return now.UTC().Format(dateLayout)
}

// State is the persisted part of a session.
type State struct {
	Plan    plan.Plan
	Daily   DailySearch
	Saved   []SavedVerse
	History []SearchHistoryItem
	Theme   Theme
}

// DefaultState is a fresh session on the given date.
func DefaultState(today string) State {
	return State{
		Plan:    plan.Free,
		Daily:   DailySearch{Count: 0, Date: today},
		Saved:   []SavedVerse{},
		History: []SearchHistoryItem{},
		Theme:   ThemeSystem,
	}
}

// Limits is the quota record for the current plan.
func (s State) Limits() plan.QuotaLimits {
	return plan.LimitsFor(s.Plan)
}

// Rollover resets the counter when it belongs to another date.
func (s State) Rollover(today string) State {
	if s.Daily.Date != today {
		s.Daily = DailySearch{Count: 0, Date: today}
	}
	return s
}

// RemainingSearches is nil on plans without a daily ceiling.
func (s State) RemainingSearches() *int {
	if s.Plan != plan.Free {
		return nil
	}
	return s.Limits().SearchesPerDay.Remaining(s.Daily.Count)
}

// CheckSearch rolls the counter over and rejects the search when a FREE
// session has used up today's searches.
func (s State) CheckSearch(feeling, today string) (State, error) {
	if strings.TrimSpace(feeling) == "" {
		return s, ErrEmptyFeeling
	}
	s = s.Rollover(today)
	limit := s.Limits().SearchesPerDay
	if s.Plan == plan.Free && !limit.Allows(s.Daily.Count) {
		return s, &QuotaError{Kind: ErrSearchQuotaExceeded, Limit: limit}
	}
	return s, nil
}

// RecordSearch prepends a history entry and counts the search on FREE.
func (s State) RecordSearch(feeling, stamp string) State {
	item := SearchHistoryItem{Feeling: feeling, Timestamp: stamp}
	s.History = plan.Truncate(append([]SearchHistoryItem{item}, s.History...), s.Limits().MaxHistory)
	if s.Plan == plan.Free {
		s.Daily.Count++
	}
	return s
}

// IsSaved reports whether a verse with this reference is already saved.
func (s State) IsSaved(reference string) bool {
	return slices.ContainsFunc(s.Saved, func(v SavedVerse) bool { return v.Reference == reference })
}

// SaveVerse prepends v unless the collection is full or already holds the reference.
func (s State) SaveVerse(v Verse, stamp string) (State, error) {
	limit := s.Limits().MaxSaved
	if !limit.Allows(len(s.Saved)) {
		return s, &QuotaError{Kind: ErrSaveQuotaExceeded, Limit: limit}
	}
	if s.IsSaved(v.Reference) {
		return s, ErrAlreadySaved
	}
	s.Saved = append([]SavedVerse{{Verse: v, SavedAt: stamp}}, s.Saved...)
	return s, nil
}

// DeleteVerse removes every saved entry with the reference.
func (s State) DeleteVerse(reference string) State {
	kept := make([]SavedVerse, 0, len(s.Saved))
	for _, v := range s.Saved {
		if v.Reference != reference {
			kept = append(kept, v)
		}
	}
	s.Saved = kept
	return s
}

// ChangePlan switches tier. Entering or leaving FREE clears today's counter,
// and both lists shrink to the new tier's limits keeping the newest entries.
// Staying on FREE keeps the counter, so re-selecting it cannot refill the quota.
func (s State) ChangePlan(p plan.Plan, today string) State {
	old := s.Plan
	s.Plan = p
	if (old == plan.Free) != (p == plan.Free) {
		s.Daily = DailySearch{Count: 0, Date: today}
	}
	l := plan.LimitsFor(p)
	s.Saved = plan.Truncate(s.Saved, l.MaxSaved)
	s.History = plan.Truncate(s.History, l.MaxHistory)
	return s
}

// ChangeTheme replaces the theme preference.
func (s State) ChangeTheme(t Theme) State {
	s.Theme = t
	return s
}

// ClearHistory empties the search history.
func (s State) ClearHistory() State {
	s.History = []SearchHistoryItem{}
	return s
}
