package categories

import (
	"path/filepath"
	"testing"

	"awmcp/internal/aw"
)

func catEvent(app, title string, duration float64) aw.Event {
	return aw.Event{
		Duration: duration,
		Data:     map[string]interface{}{"app": app, "title": title},
	}
}

func TestDefaultCompiles(t *testing.T) {
	c := Default()
	if c == nil || len(c.rules) == 0 {
		t.Fatal("default categorizer is empty")
	}
}

func TestCategorize(t *testing.T) {
	c := Default()

	tests := []struct {
		app   string
		title string
		want  string
	}{
		{"Cursor", "main.go — myproject", "coding"},
		{"Warp", "~/code/api", "terminal"},
		{"Slack", "team-backend", "communication"},
		{"zoom.us", "Weekly Sync", "meetings"},
		{"Safari", "Daily standup notes", "meetings"}, // title rule beats browser app rule
		{"Safari", "Go documentation", "browsing"},
		{"Spotify", "Focus playlist", "media"},
		{"SomeRandomApp", "whatever", "uncategorized"},
		{"", "", "uncategorized"},
	}

	for _, tt := range tests {
		if got := c.Categorize(tt.app, tt.title); got != tt.want {
			t.Errorf("Categorize(%q, %q) = %q, want %q", tt.app, tt.title, got, tt.want)
		}
	}
}

func TestCompileRejectsBadRules(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{
			name: "missing name",
			file: File{Rules: []Rule{{Apps: []string{"Slack"}}}},
		},
		{
			name: "matches nothing",
			file: File{Rules: []Rule{{Name: "empty"}}},
		},
		{
			name: "invalid pattern",
			file: File{Rules: []Rule{{Name: "broken", TitlePattern: "("}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(&tt.file); err == nil {
				t.Error("Compile() succeeded, want error")
			}
		})
	}
}

func TestCustomRulesFirstMatchWins(t *testing.T) {
	c, err := Compile(&File{
		Fallback: "other",
		Rules: []Rule{
			{Name: "deep-work", Apps: []string{"Cursor"}, TitlePattern: `awmcp`},
			{Name: "coding", Apps: []string{"Cursor"}},
		},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got := c.Categorize("Cursor", "client.go — awmcp"); got != "deep-work" {
		t.Errorf("Categorize() = %q, want deep-work", got)
	}
	if got := c.Categorize("Cursor", "main.go — other"); got != "coding" {
		t.Errorf("Categorize() = %q, want coding", got)
	}
	if got := c.Categorize("Warp", "~/code"); got != "other" {
		t.Errorf("Categorize() = %q, want the configured fallback", got)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "categories.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got := c.Categorize("Warp", "~/x"); got != "terminal" {
		t.Errorf("missing file should fall back to defaults, Categorize = %q", got)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.toml")

	if err := WriteFile(path, DefaultFile()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got := c.Categorize("Cursor", "main.go"); got != "coding" {
		t.Errorf("round-tripped rules broken, Categorize = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	c := Default()

	events := []aw.Event{
		catEvent("Cursor", "main.go — api", 1800),
		catEvent("Warp", "~/code/api", 900),
		catEvent("Cursor", "handler.go — api", 900),
		catEvent("Slack", "team", 300),
		{Duration: 100}, // no data: falls back
	}

	got := c.Summarize(events)
	if len(got) != 4 {
		t.Fatalf("got %d categories, want 4: %+v", len(got), got)
	}

	if got[0].Category != "coding" || got[0].TotalSeconds != 2700 {
		t.Errorf("got[0] = %+v, want coding at 2700s", got[0])
	}
	if got[0].EventCount != 2 {
		t.Errorf("coding EventCount = %d, want 2", got[0].EventCount)
	}
	if got[0].Duration != "45m 0s" {
		t.Errorf("coding Duration = %q", got[0].Duration)
	}
	if got[0].Percent != 67.5 {
		t.Errorf("coding Percent = %v, want 67.5", got[0].Percent)
	}

	if got[1].Category != "terminal" {
		t.Errorf("got[1] = %+v, want terminal second", got[1])
	}

	last := got[len(got)-1]
	if last.TotalSeconds > got[0].TotalSeconds {
		t.Error("summary not sorted by duration descending")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Default().Summarize(nil); len(got) != 0 {
		t.Errorf("Summarize(nil) = %+v, want empty", got)
	}
}
