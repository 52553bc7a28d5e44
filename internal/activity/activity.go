// Package activity aggregates classified window events into per-folder
// activity totals.
package activity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"awmcp/internal/aw"
	"awmcp/internal/classify"
)

// FolderActivity is the aggregated activity for one (path, app) pair.
type FolderActivity struct {
	Path          string  `json:"path"`
	App           string  `json:"app"`
	Context       string  `json:"context,omitempty"`
	TotalDuration float64 `json:"totalDuration"` // seconds
	Duration      string  `json:"duration"`      // human-readable rendering of TotalDuration
	EventCount    int     `json:"eventCount"`
}

// Aggregate classifies every event and groups the surviving references by
// (path, app), summing durations and counting events. Events yielding no
// reference are skipped; that includes events with missing or malformed
// data, which never abort the batch.
//
// The result is sorted by total duration descending. Ties break on path,
// then app, ascending, so the output is stable no matter how the caller
// gathered or interleaved the input batch. Context is taken from the first
// contributing event that carries one; group members are assumed consistent
// and disagreements are not reconciled.
func Aggregate(events []aw.Event, includeWeb bool) []FolderActivity {
	classifier := classify.NewFolderClassifier()

	type groupKey struct {
		path string
		app  string
	}
	groups := make(map[groupKey]*FolderActivity)

	for _, event := range events {
		ref := classifier.Classify(event, includeWeb)
		if ref == nil {
			continue
		}

		key := groupKey{path: ref.Path, app: ref.App}
		g, ok := groups[key]
		if !ok {
			g = &FolderActivity{Path: ref.Path, App: ref.App}
			groups[key] = g
		}
		g.TotalDuration += event.Duration
		g.EventCount++
		if g.Context == "" && ref.Context != "" {
			g.Context = ref.Context
		}
	}

	out := make([]FolderActivity, 0, len(groups))
	for _, g := range groups {
		g.Duration = FormatDuration(g.TotalDuration)
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDuration != out[j].TotalDuration {
			return out[i].TotalDuration > out[j].TotalDuration
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].App < out[j].App
	})
	return out
}

// FilterMinDuration drops entries below a minimum number of seconds.
// Aggregate itself always reports everything; thresholds are a caller
// policy applied afterwards.
func FilterMinDuration(activities []FolderActivity, minSeconds float64) []FolderActivity {
	if minSeconds <= 0 {
		return activities
	}
	out := make([]FolderActivity, 0, len(activities))
	for _, a := range activities {
		if a.TotalDuration >= minSeconds {
			out = append(out, a)
		}
	}
	return out
}

// FormatDuration renders seconds as "1h 2m 5s". The hour part appears only
// when non-zero, the minute part only when non-zero, and the second part
// always.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	h := int(seconds / 3600)
	m := int(math.Mod(seconds, 3600) / 60)
	s := int(math.Round(math.Mod(seconds, 60)))

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}
