// Package categories classifies window events into activity categories
// (coding, meetings, browsing, ...) using ordered rules from
// categories.toml. Rules are checked first-match-wins: a rule matches when
// the event's app is in the rule's app list (or the list is empty) and the
// title matches the rule's pattern (or the pattern is empty).
package categories

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"awmcp/internal/activity"
	"awmcp/internal/aw"
	"awmcp/internal/paths"
)

// Rule is one categorization rule as declared in categories.toml.
type Rule struct {
	// Name is the category this rule assigns
	Name string `toml:"name"`

	// Apps are application names matched case-insensitively
	Apps []string `toml:"apps,omitempty"`

	// TitlePattern is a regular expression matched against the title
	TitlePattern string `toml:"title_pattern,omitempty"`
}

// File is the root structure of categories.toml.
type File struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Fallback is the category for events no rule matches
	Fallback string `toml:"fallback,omitempty"`

	// Rules are checked in declaration order
	Rules []Rule `toml:"rule"`
}

// FallbackCategory is used when a file declares no fallback.
const FallbackCategory = "uncategorized"

type compiledRule struct {
	name  string
	apps  map[string]bool
	title *regexp.Regexp
}

// Categorizer assigns categories to events.
type Categorizer struct {
	fallback string
	rules    []compiledRule
}

// Compile validates a rules file and builds a categorizer from it.
func Compile(file *File) (*Categorizer, error) {
	c := &Categorizer{fallback: file.Fallback}
	if c.fallback == "" {
		c.fallback = FallbackCategory
	}

	for i, rule := range file.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("categories config: rule %d has no name", i+1)
		}
		if len(rule.Apps) == 0 && rule.TitlePattern == "" {
			return nil, fmt.Errorf("categories config: rule %q matches nothing", rule.Name)
		}

		compiled := compiledRule{name: rule.Name}
		if len(rule.Apps) > 0 {
			compiled.apps = make(map[string]bool, len(rule.Apps))
			for _, app := range rule.Apps {
				compiled.apps[strings.ToLower(app)] = true
			}
		}
		if rule.TitlePattern != "" {
			re, err := regexp.Compile(rule.TitlePattern)
			if err != nil {
				return nil, fmt.Errorf("categories config: rule %q has invalid pattern: %w", rule.Name, err)
			}
			compiled.title = re
		}
		c.rules = append(c.rules, compiled)
	}
	return c, nil
}

// Default returns the built-in rule set used when no categories.toml exists.
func Default() *Categorizer {
	c, err := Compile(DefaultFile())
	if err != nil {
		// The built-in rules are compiled in tests; this cannot fail at runtime.
		panic(err)
	}
	return c
}

// DefaultFile returns the built-in rules in file form, suitable for writing
// out as a starting categories.toml.
func DefaultFile() *File {
	return &File{
		Version:  1,
		Fallback: FallbackCategory,
		Rules: []Rule{
			{
				Name: "meetings",
				Apps: []string{"zoom.us", "Zoom", "Microsoft Teams", "Webex"},
			},
			{
				Name:         "meetings",
				TitlePattern: `(?i)\b(standup|stand-up|1:1|retro(spective)?|meet\.google\.com)\b`,
			},
			{
				Name: "communication",
				Apps: []string{"Slack", "Discord", "Mail", "Telegram", "Messages", "Thunderbird"},
			},
			{
				Name: "coding",
				Apps: []string{
					"Code", "Visual Studio Code", "Cursor", "Zed", "Sublime Text",
					"Xcode", "IntelliJ IDEA", "GoLand", "PyCharm", "WebStorm",
					"Android Studio", "Fleet", "Windsurf", "VSCodium",
				},
			},
			{
				Name: "terminal",
				Apps: []string{
					"Terminal", "iTerm2", "Warp", "Alacritty", "kitty",
					"WezTerm", "Ghostty", "Hyper", "Tabby", "Konsole",
				},
			},
			{
				Name: "design",
				Apps: []string{"Figma", "Sketch", "Adobe Photoshop", "Affinity Designer"},
			},
			{
				Name: "writing",
				Apps: []string{"Notion", "Obsidian", "Bear", "Notes", "Pages", "Typora"},
			},
			{
				Name: "media",
				Apps: []string{"Spotify", "Music", "VLC", "IINA", "Podcasts"},
			},
			{
				Name: "browsing",
				Apps: []string{
					"Safari", "Google Chrome", "Firefox", "Arc", "Brave Browser",
					"Microsoft Edge", "Chromium",
				},
			},
		},
	}
}

// Load reads categories.toml from the awmcp home directory. A missing file
// yields the built-in defaults.
func Load() (*Categorizer, error) {
	path, err := paths.GetCategoriesConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads a categories file from an explicit path.
func LoadFrom(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read categories config: %w", err)
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories config: %w", err)
	}
	return Compile(&file)
}

// WriteFile writes a rules file to the given path.
func WriteFile(path string, file *File) error {
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal categories config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write categories config: %w", err)
	}
	return nil
}

// Categorize returns the category for one app/title pair.
func (c *Categorizer) Categorize(app, title string) string {
	key := strings.ToLower(strings.TrimSpace(app))
	for _, rule := range c.rules {
		if rule.apps != nil && !rule.apps[key] {
			continue
		}
		if rule.title != nil && !rule.title.MatchString(title) {
			continue
		}
		return rule.name
	}
	return c.fallback
}

// CategorySummary is the aggregated time spent in one category.
type CategorySummary struct {
	Category     string  `json:"category"`
	TotalSeconds float64 `json:"totalSeconds"`
	Duration     string  `json:"duration"`
	EventCount   int     `json:"eventCount"`
	Percent      float64 `json:"percent"`
}

// Summarize groups an event batch by category. Events without app data
// still count, under the fallback category. Results are sorted by total
// time descending with category name as the tie-break.
func (c *Categorizer) Summarize(events []aw.Event) []CategorySummary {
	totals := make(map[string]*CategorySummary)
	var batchSeconds float64

	for _, event := range events {
		name := c.Categorize(event.App(), event.Title())
		s, ok := totals[name]
		if !ok {
			s = &CategorySummary{Category: name}
			totals[name] = s
		}
		s.TotalSeconds += event.Duration
		s.EventCount++
		batchSeconds += event.Duration
	}

	out := make([]CategorySummary, 0, len(totals))
	for _, s := range totals {
		s.Duration = activity.FormatDuration(s.TotalSeconds)
		if batchSeconds > 0 {
			s.Percent = math.Round(s.TotalSeconds/batchSeconds*1000) / 10
		}
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		return out[i].Category < out[j].Category
	})
	return out
}
