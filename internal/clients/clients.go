// Package clients attributes folder activity to billing clients.
//
// Detection rules live in clients.toml under the awmcp home directory. Each
// client declares folder patterns, project names, and ticket prefixes; the
// detector checks clients in the configured priority order and falls back
// to the default client, which conventionally represents personal and
// side-project work.
package clients

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"awmcp/internal/activity"
	"awmcp/internal/paths"
)

// Client is one billing client with its detection rules.
type Client struct {
	// Name is the short client name ("ACME")
	Name string `toml:"name"`

	// DisplayName is the full client name ("ACME Corporation")
	DisplayName string `toml:"display_name"`

	// Color is an optional hex color for UI rendering
	Color string `toml:"color,omitempty"`

	// Folders are substrings matched case-insensitively against folder paths
	Folders []string `toml:"folders,omitempty"`

	// Projects are substrings matched case-insensitively against folder
	// paths and project names
	Projects []string `toml:"projects,omitempty"`

	// TicketPrefixes are case-sensitive prefixes matched against tokens in
	// the activity context ("CA-", "APPS-")
	TicketPrefixes []string `toml:"ticket_prefixes,omitempty"`

	// Tags are free-form labels carried for reporting
	Tags []string `toml:"tags,omitempty"`
}

// Settings controls how client time is summarized.
type Settings struct {
	// DefaultClient receives all activity no other client claims
	DefaultClient string `toml:"default_client"`

	// MinimumBillableMinutes is the smallest per-client total that still
	// counts as billable
	MinimumBillableMinutes int `toml:"minimum_billable_minutes"`

	// RoundBillableToNearest rounds billable client minutes to this
	// granularity before converting to hours (0 disables rounding)
	RoundBillableToNearest int `toml:"round_billable_to_nearest"`
}

// Config is the full clients.toml document.
type Config struct {
	Version string `toml:"version"`

	// DetectionPriority is the order in which clients claim activity.
	// Earlier entries win; the default client is always checked last
	// regardless of its position here.
	DetectionPriority []string `toml:"detection_priority"`

	Clients map[string]Client `toml:"clients"`

	Settings Settings `toml:"settings"`
}

// DefaultConfig returns a configuration with only the default personal
// client, mirroring what Init writes on first use.
func DefaultConfig() *Config {
	return &Config{
		Version:           "1.0",
		DetectionPriority: []string{"personal"},
		Clients: map[string]Client{
			"personal": {
				Name:        "Personal",
				DisplayName: "Personal/Side Projects",
				Color:       "#95E1D3",
				Tags:        []string{"personal", "side-project", "non-billable"},
			},
		},
		Settings: Settings{
			DefaultClient:          "personal",
			MinimumBillableMinutes: 15,
			RoundBillableToNearest: 15,
		},
	}
}

// Load reads clients.toml from the awmcp home directory. A missing file is
// not an error; the default configuration is returned instead.
func Load() (*Config, error) {
	path, err := paths.GetClientsConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get clients config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads a clients configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to parse clients config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks referential integrity between the priority list, the
// client table, and the settings.
func (c *Config) Validate() error {
	if len(c.Clients) == 0 {
		return fmt.Errorf("clients config: no clients defined")
	}
	if c.Settings.DefaultClient == "" {
		return fmt.Errorf("clients config: settings.default_client is required")
	}
	if _, ok := c.Clients[c.Settings.DefaultClient]; !ok {
		return fmt.Errorf("clients config: default client %q is not defined", c.Settings.DefaultClient)
	}
	for _, id := range c.DetectionPriority {
		if _, ok := c.Clients[id]; !ok {
			return fmt.Errorf("clients config: priority entry %q is not defined", id)
		}
	}
	return nil
}

// Save writes the configuration to the awmcp home directory.
func (c *Config) Save() error {
	if _, err := paths.EnsureAwmcpHome(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := paths.GetClientsConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get clients config path: %w", err)
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create clients config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode clients config: %w", err)
	}
	return nil
}

// Detector matches folder activity against a clients configuration.
type Detector struct {
	config *Config
}

// NewDetector creates a detector. A nil config uses the defaults.
func NewDetector(config *Config) *Detector {
	if config == nil {
		config = DefaultConfig()
	}
	return &Detector{config: config}
}

// Detect returns the ID of the client owning the given folder path and
// context. Clients are checked in priority order; the default client is
// skipped during matching and returned when nothing else claims the work.
func (d *Detector) Detect(path, context string) string {
	lowerPath := strings.ToLower(path)
	lowerContext := strings.ToLower(context)

	for _, id := range d.config.DetectionPriority {
		if id == d.config.Settings.DefaultClient {
			continue
		}
		client, ok := d.config.Clients[id]
		if !ok {
			continue
		}
		if clientMatches(client, lowerPath, lowerContext, context) {
			return id
		}
	}
	return d.config.Settings.DefaultClient
}

// clientMatches applies one client's rules. Folder and project patterns are
// case-insensitive substrings; ticket prefixes are case-sensitive prefixes
// of whitespace-separated context tokens.
func clientMatches(client Client, lowerPath, lowerContext, rawContext string) bool {
	for _, pattern := range client.Projects {
		if pattern != "" && strings.Contains(lowerPath, strings.ToLower(pattern)) {
			return true
		}
	}
	for _, pattern := range client.Folders {
		if pattern == "" {
			continue
		}
		p := strings.ToLower(pattern)
		if strings.Contains(lowerPath, p) || strings.Contains(lowerContext, p) {
			return true
		}
	}
	for _, prefix := range client.TicketPrefixes {
		if prefix == "" {
			continue
		}
		for _, token := range strings.Fields(rawContext) {
			if strings.HasPrefix(token, prefix) {
				return true
			}
		}
	}
	return false
}

// ClientSummary is the aggregated time for one client.
type ClientSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Hours        float64  `json:"hours"`
	TotalSeconds float64  `json:"totalSeconds"`
	Duration     string   `json:"duration"`
	EventCount   int      `json:"eventCount"`
	Billable     bool     `json:"billable"`
	Folders      []string `json:"folders,omitempty"`
}

// Summary is the full per-client breakdown of an activity batch.
type Summary struct {
	Clients          []ClientSummary `json:"clients"`
	BillableHours    float64         `json:"billableHours"`
	SideProjectHours float64         `json:"sideProjectHours"`
}

// Summarize attributes each activity entry to a client and totals the
// results. Non-default clients whose total stays under the minimum billable
// threshold are reported but not counted as billable. Billable minutes are
// rounded to the configured granularity before the hour conversion.
func (d *Detector) Summarize(activities []activity.FolderActivity) Summary {
	type accum struct {
		seconds float64
		events  int
		folders map[string]struct{}
	}
	totals := make(map[string]*accum)

	for _, a := range activities {
		id := d.Detect(a.Path, a.Context)
		acc, ok := totals[id]
		if !ok {
			acc = &accum{folders: make(map[string]struct{})}
			totals[id] = acc
		}
		acc.seconds += a.TotalDuration
		acc.events += a.EventCount
		acc.folders[a.Path] = struct{}{}
	}

	var summary Summary
	for id, acc := range totals {
		client := d.config.Clients[id]
		billable := id != d.config.Settings.DefaultClient

		minutes := acc.seconds / 60
		if billable && minutes < float64(d.config.Settings.MinimumBillableMinutes) {
			billable = false
		}

		hours := roundHours(minutes, 0)
		if billable {
			hours = roundHours(minutes, d.config.Settings.RoundBillableToNearest)
			summary.BillableHours += hours
		} else {
			summary.SideProjectHours += hours
		}

		folders := make([]string, 0, len(acc.folders))
		for f := range acc.folders {
			folders = append(folders, f)
		}
		sort.Strings(folders)

		name := client.Name
		if name == "" {
			name = id
		}

		summary.Clients = append(summary.Clients, ClientSummary{
			ID:           id,
			Name:         name,
			Hours:        hours,
			TotalSeconds: acc.seconds,
			Duration:     activity.FormatDuration(acc.seconds),
			EventCount:   acc.events,
			Billable:     billable,
			Folders:      folders,
		})
	}

	sort.Slice(summary.Clients, func(i, j int) bool {
		if summary.Clients[i].Hours != summary.Clients[j].Hours {
			return summary.Clients[i].Hours > summary.Clients[j].Hours
		}
		return summary.Clients[i].ID < summary.Clients[j].ID
	})

	summary.BillableHours = round1(summary.BillableHours)
	summary.SideProjectHours = round1(summary.SideProjectHours)
	return summary
}

// roundHours converts minutes to hours rounded to one decimal, optionally
// snapping the minutes to a billing granularity first.
func roundHours(minutes float64, nearestMinutes int) float64 {
	if nearestMinutes > 0 {
		step := float64(nearestMinutes)
		minutes = step * float64(int(minutes/step+0.5))
	}
	return round1(minutes / 60)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
