package activity

import (
	"testing"

	"awmcp/internal/aw"
)

func windowEvent(app, title string, duration float64) aw.Event {
	return aw.Event{
		Duration: duration,
		Data:     map[string]interface{}{"app": app, "title": title},
	}
}

func TestAggregateSumsGroups(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "/opt/projects/api", 100),
		windowEvent("Warp", "/opt/projects/api", 150),
		windowEvent("Warp", "/opt/projects/api", 200),
	}

	got := Aggregate(events, false)
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].TotalDuration != 450 {
		t.Errorf("TotalDuration = %v, want 450", got[0].TotalDuration)
	}
	if got[0].EventCount != 3 {
		t.Errorf("EventCount = %d, want 3", got[0].EventCount)
	}
	if got[0].Duration != "7m 30s" {
		t.Errorf("Duration = %q, want 7m 30s", got[0].Duration)
	}
}

// The aggregation key is (path, app): the same folder name surfacing from a
// terminal and from an editor stays two entries.
func TestAggregateSplitsByApp(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "my-project", 60),
		windowEvent("Cursor", "my-project", 60),
	}

	got := Aggregate(events, false)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want one per app: %+v", len(got), got)
	}
	if got[0].Path != "my-project" || got[1].Path != "my-project" {
		t.Errorf("paths = %q, %q, want my-project for both", got[0].Path, got[1].Path)
	}
	// Same duration and path, so the final tie-break on app decides.
	if got[0].App != "Cursor" || got[1].App != "Warp" {
		t.Errorf("apps = %q, %q, want Cursor then Warp", got[0].App, got[1].App)
	}
}

func TestAggregateSortsByDurationDesc(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "/srv/small/thing", 10),
		windowEvent("Warp", "/srv/large/thing", 500),
		windowEvent("Warp", "/srv/medium/thing", 90),
	}

	got := Aggregate(events, false)
	if len(got) != 3 {
		t.Fatalf("got %d groups, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].TotalDuration > got[i-1].TotalDuration {
			t.Errorf("not sorted at %d: %v after %v", i, got[i].TotalDuration, got[i-1].TotalDuration)
		}
	}
	if got[0].Path != "/srv/large/thing" {
		t.Errorf("got[0].Path = %q, want the largest group first", got[0].Path)
	}
}

func TestAggregateTieBreaksOnPath(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "/srv/zeta", 60),
		windowEvent("Warp", "/srv/alpha", 60),
	}

	got := Aggregate(events, false)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Path != "/srv/alpha" || got[1].Path != "/srv/zeta" {
		t.Errorf("tie not broken lexically: %q, %q", got[0].Path, got[1].Path)
	}
}

// Input arrival order must never leak into the output.
func TestAggregateOrderIndependent(t *testing.T) {
	forward := []aw.Event{
		windowEvent("Warp", "/srv/one/a", 30),
		windowEvent("Cursor", "x.go — projone", 45),
		windowEvent("Warp", "/srv/one/a", 15),
	}
	reversed := []aw.Event{forward[2], forward[1], forward[0]}

	a := Aggregate(forward, false)
	b := Aggregate(reversed, false)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAggregateKeepsFirstContext(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "/opt/api = nvim", 30),
		windowEvent("Warp", "/opt/api = go test", 30),
	}

	got := Aggregate(events, false)
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].Context != "nvim" {
		t.Errorf("Context = %q, want the first observed context", got[0].Context)
	}
}

func TestAggregateSkipsEventsWithoutSignal(t *testing.T) {
	events := []aw.Event{
		windowEvent("Warp", "ls", 600),
		{Duration: 600}, // no data at all
		windowEvent("Slack", "standup", 600),
		windowEvent("Warp", "/opt/real/work", 60),
	}

	got := Aggregate(events, false)
	if len(got) != 1 {
		t.Fatalf("got %d groups, want only the real folder: %+v", len(got), got)
	}
	if got[0].Path != "/opt/real/work" {
		t.Errorf("Path = %q", got[0].Path)
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	if got := Aggregate(nil, false); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty", got)
	}
	if got := Aggregate([]aw.Event{}, true); len(got) != 0 {
		t.Errorf("Aggregate(empty) = %+v, want empty", got)
	}
}

func TestAggregateWebGate(t *testing.T) {
	events := []aw.Event{
		windowEvent("Safari", "golang https://go.dev/doc", 120),
		windowEvent("Warp", "/opt/work/api", 60),
	}

	got := Aggregate(events, false)
	if len(got) != 1 {
		t.Fatalf("includeWeb=false: got %d groups, want 1", len(got))
	}

	got = Aggregate(events, true)
	if len(got) != 2 {
		t.Fatalf("includeWeb=true: got %d groups, want 2: %+v", len(got), got)
	}
	if got[0].Path != "https://go.dev/doc" || got[0].Context != "web" {
		t.Errorf("web entry = %+v, want web context first (largest duration)", got[0])
	}
}

func TestFilterMinDuration(t *testing.T) {
	activities := []FolderActivity{
		{Path: "/a/b", TotalDuration: 300},
		{Path: "/c/d", TotalDuration: 29},
		{Path: "/e/f", TotalDuration: 30},
	}

	got := FilterMinDuration(activities, 30)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Path != "/a/b" || got[1].Path != "/e/f" {
		t.Errorf("unexpected entries: %+v", got)
	}

	if got := FilterMinDuration(activities, 0); len(got) != 3 {
		t.Errorf("zero threshold should keep everything, got %d", len(got))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{3725, "1h 2m 5s"},
		{125, "2m 5s"},
		{45, "45s"},
		{0, "0s"},
		{3600, "1h 0s"},
		{7200, "2h 0s"},
		{61, "1m 1s"},
		{59.4, "59s"},
		{0.4, "0s"},
		{-5, "0s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
