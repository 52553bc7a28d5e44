package clients

import (
	"path/filepath"
	"testing"

	"awmcp/internal/activity"
)

func testConfig() *Config {
	return &Config{
		Version:           "1.0",
		DetectionPriority: []string{"acme", "beta", "personal"},
		Clients: map[string]Client{
			"acme": {
				Name:           "ACME",
				DisplayName:    "ACME Corporation",
				Folders:        []string{"acme", "shared"},
				Projects:       []string{"ACME Dashboard"},
				TicketPrefixes: []string{"ACM-"},
			},
			"beta": {
				Name:    "Beta",
				Folders: []string{"beta-corp", "shared"},
			},
			"personal": {
				Name:        "Personal",
				DisplayName: "Personal/Side Projects",
			},
		},
		Settings: Settings{
			DefaultClient:          "personal",
			MinimumBillableMinutes: 15,
			RoundBillableToNearest: 15,
		},
	}
}

func TestDetect(t *testing.T) {
	d := NewDetector(testConfig())

	tests := []struct {
		name    string
		path    string
		context string
		want    string
	}{
		{
			name: "folder substring",
			path: "/Users/dev/code/acme-api",
			want: "acme",
		},
		{
			name: "case insensitive folder",
			path: "/Users/dev/code/ACME-api",
			want: "acme",
		},
		{
			name: "second priority client",
			path: "/Users/dev/code/beta-corp/site",
			want: "beta",
		},
		{
			name: "priority order wins on shared pattern",
			path: "/Users/dev/code/shared",
			want: "acme",
		},
		{
			name:    "ticket prefix in context",
			path:    "/Users/dev/work",
			context: "git checkout ACM-123-fix-login",
			want:    "acme",
		},
		{
			name:    "ticket prefix is case sensitive",
			path:    "/Users/dev/work",
			context: "git checkout acm-123",
			want:    "personal",
		},
		{
			name: "unclaimed work goes to default",
			path: "/Users/dev/personal/blog",
			want: "personal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.path, tt.context); got != tt.want {
				t.Errorf("Detect(%q, %q) = %q, want %q", tt.path, tt.context, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	d := NewDetector(testConfig())

	activities := []activity.FolderActivity{
		{Path: "/code/acme-api", App: "Warp", TotalDuration: 2400, EventCount: 12},
		{Path: "/code/acme-web", App: "Cursor", TotalDuration: 1200, EventCount: 6},
		{Path: "/code/beta-corp/site", App: "Cursor", TotalDuration: 600, EventCount: 3},
		{Path: "/code/blog", App: "Warp", TotalDuration: 1800, EventCount: 9},
	}

	summary := d.Summarize(activities)

	if len(summary.Clients) != 3 {
		t.Fatalf("got %d clients, want 3: %+v", len(summary.Clients), summary.Clients)
	}

	// Sorted by hours descending: acme 1.0h, personal 0.5h, beta 0.2h.
	acme := summary.Clients[0]
	if acme.ID != "acme" {
		t.Fatalf("Clients[0].ID = %q, want acme", acme.ID)
	}
	if acme.Hours != 1.0 {
		t.Errorf("acme.Hours = %v, want 1.0 (60 minutes rounded to billing grid)", acme.Hours)
	}
	if !acme.Billable {
		t.Error("acme should be billable")
	}
	if acme.EventCount != 18 {
		t.Errorf("acme.EventCount = %d, want 18", acme.EventCount)
	}
	if len(acme.Folders) != 2 || acme.Folders[0] != "/code/acme-api" {
		t.Errorf("acme.Folders = %v", acme.Folders)
	}

	personal := summary.Clients[1]
	if personal.ID != "personal" || personal.Hours != 0.5 {
		t.Errorf("Clients[1] = %+v, want personal at 0.5h", personal)
	}
	if personal.Billable {
		t.Error("default client must never be billable")
	}

	// Beta's 10 minutes are under the 15 minute billable minimum.
	beta := summary.Clients[2]
	if beta.ID != "beta" {
		t.Fatalf("Clients[2].ID = %q, want beta", beta.ID)
	}
	if beta.Billable {
		t.Error("beta is under the billable minimum and must not be billable")
	}
	if beta.Hours != 0.2 {
		t.Errorf("beta.Hours = %v, want 0.2", beta.Hours)
	}

	if summary.BillableHours != 1.0 {
		t.Errorf("BillableHours = %v, want 1.0", summary.BillableHours)
	}
	if summary.SideProjectHours != 0.7 {
		t.Errorf("SideProjectHours = %v, want 0.7", summary.SideProjectHours)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := NewDetector(nil).Summarize(nil)
	if len(summary.Clients) != 0 || summary.BillableHours != 0 || summary.SideProjectHours != 0 {
		t.Errorf("empty batch produced %+v", summary)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	config, err := LoadFrom(filepath.Join(t.TempDir(), "clients.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if config.Settings.DefaultClient != "personal" {
		t.Errorf("missing file should load defaults, got %+v", config.Settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")

	original := testConfig()
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if len(loaded.Clients) != 3 {
		t.Errorf("got %d clients, want 3", len(loaded.Clients))
	}
	if loaded.Clients["acme"].Name != "ACME" {
		t.Errorf("acme.Name = %q", loaded.Clients["acme"].Name)
	}
	if len(loaded.DetectionPriority) != 3 || loaded.DetectionPriority[0] != "acme" {
		t.Errorf("DetectionPriority = %v", loaded.DetectionPriority)
	}
	if loaded.Settings.RoundBillableToNearest != 15 {
		t.Errorf("RoundBillableToNearest = %d", loaded.Settings.RoundBillableToNearest)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "default client undefined",
			mutate:  func(c *Config) { c.Settings.DefaultClient = "ghost" },
			wantErr: true,
		},
		{
			name:    "priority references unknown client",
			mutate:  func(c *Config) { c.DetectionPriority = append(c.DetectionPriority, "ghost") },
			wantErr: true,
		},
		{
			name:    "no clients",
			mutate:  func(c *Config) { c.Clients = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
