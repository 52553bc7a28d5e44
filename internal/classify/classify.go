// Package classify extracts folder references from window-title events.
//
// Two extractors live here with different precision/recall trade-offs.
// FolderClassifier is precision-oriented: it applies an ordered rule table
// keyed on the application category and produces at most one reference per
// event. Scan is recall-oriented: it runs every pattern over the raw title
// and returns all plausible absolute paths. Both are pure functions over
// their inputs and safe for concurrent use.
package classify

import (
	"regexp"
	"strings"

	"awmcp/internal/aw"
	"awmcp/internal/paths"
)

// Reference is a folder reference extracted from a single event.
type Reference struct {
	Path    string
	App     string
	Context string
}

// terminalSeparators split a terminal title into "<path> <sep> <command>".
// Warp uses " = ", iTerm2 and Terminal.app use an em dash.
var terminalSeparators = []string{" = ", " — "}

// dashSegments splits editor/IDE titles on spaced dash variants
// (em dash, en dash, hyphen).
var dashSeparator = regexp.MustCompile(`\s+[—–-]\s+`)

// urlPattern recognizes web titles and URL candidates.
var urlPattern = regexp.MustCompile(`(?:https?://|www\.)[^\s"'<>]+`)

// rule is one classification step. Rules are evaluated in declaration order
// and the first rule whose predicate accepts the event decides the outcome,
// including deciding that the event yields nothing.
type rule struct {
	name    string
	applies func(c *FolderClassifier, app, title string, includeWeb bool) bool
	extract func(c *FolderClassifier, app, title string, includeWeb bool) *Reference
}

// FolderClassifier turns window-title events into folder references using
// application-aware rules.
type FolderClassifier struct {
	terminals    map[string]bool
	editors      map[string]bool
	ides         map[string]bool
	fileManagers map[string]bool
	rules        []rule
}

// NewFolderClassifier builds a classifier with the built-in application
// categories.
func NewFolderClassifier() *FolderClassifier {
	c := &FolderClassifier{
		terminals: appSet(
			"Terminal", "iTerm2", "Warp", "Alacritty", "kitty", "WezTerm",
			"Hyper", "Ghostty", "Tabby", "Konsole",
		),
		editors: appSet(
			"Code", "Visual Studio Code", "Cursor", "VSCodium", "Windsurf",
			"Sublime Text", "TextMate", "Zed", "Atom", "Nova", "BBEdit",
		),
		ides: appSet(
			"Xcode", "IntelliJ IDEA", "PyCharm", "WebStorm", "GoLand",
			"CLion", "PhpStorm", "RubyMine", "Rider", "Android Studio", "Fleet",
		),
		fileManagers: appSet(
			"Finder", "Path Finder", "ForkLift", "Nautilus", "Files",
			"Dolphin", "Thunar",
		),
	}
	c.rules = classificationRules()
	return c
}

// Classify extracts at most one folder reference from an event. A nil result
// means the event carries no usable signal; that is the normal outcome for
// most events and never an error.
func (c *FolderClassifier) Classify(event aw.Event, includeWeb bool) *Reference {
	app := strings.TrimSpace(event.App())
	title := strings.TrimSpace(event.Title())
	if app == "" || title == "" {
		return nil
	}

	for _, r := range c.rules {
		if r.applies(c, app, title, includeWeb) {
			return r.extract(c, app, title, includeWeb)
		}
	}
	return nil
}

// classificationRules is the priority-ordered rule table. The order is a
// designed invariant: earlier rules are more specific and must win over
// later ones, so new rules are inserted at the position matching their
// priority, never appended by habit.
func classificationRules() []rule {
	return []rule{
		{
			name: "terminal-with-context",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) && terminalSeparatorIndex(title) >= 0
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				i := terminalSeparatorIndex(title)
				sep := separatorAt(title, i)
				token := strings.TrimSpace(title[:i])
				context := strings.TrimSpace(title[i+len(sep):])
				return c.emitTerminal(app, token, context, includeWeb)
			},
		},
		{
			name: "terminal-absolute-path",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) && absoluteField(title) != ""
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emitTerminal(app, absoluteField(title), "", includeWeb)
			},
		},
		{
			name: "terminal-tilde-path",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) && strings.HasPrefix(title, "~")
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emitTerminal(app, title, "", includeWeb)
			},
		},
		{
			name: "terminal-relative-path",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) &&
					(strings.HasPrefix(title, "./") || strings.HasPrefix(title, "../"))
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emitTerminal(app, title, "", includeWeb)
			},
		},
		{
			// Catches bare command names ("ls", "git") that slipped past the
			// path-shaped rules, so they are explicitly discarded rather than
			// misread as folder names by the bare-title rule below.
			name: "terminal-shell-command",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) && paths.IsShellCommandOnly(title)
			},
			extract: func(c *FolderClassifier, app, title string, _ bool) *Reference {
				return nil
			},
		},
		{
			// Warp and friends often title the tab with just the working
			// directory's basename. A lone word that survived the command
			// filter is taken as that folder name; anything with spaces is a
			// command line, not a folder.
			name: "terminal-project-name",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isTerminal(app) && len(strings.Fields(title)) == 1
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, title, "", includeWeb)
			},
		},
		{
			name: "editor-with-separator",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isEditor(app) && len(dashSegments(title)) >= 2 &&
					!strings.HasPrefix(c.trailingSegment(app, title), "/")
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, c.trailingSegment(app, title), "", includeWeb)
			},
		},
		{
			name: "editor-absolute-path",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isEditor(app) && len(dashSegments(title)) >= 2 &&
					strings.HasPrefix(c.trailingSegment(app, title), "/")
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, c.trailingSegment(app, title), "", includeWeb)
			},
		},
		{
			// With no file open, editors title the window with the bare
			// workspace name. Placeholder titles for unsaved buffers and the
			// application's own name carry no folder signal.
			name: "editor-project-name",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isEditor(app) && !c.isAppName(app, title) && !isPlaceholderTitle(title)
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, title, "", includeWeb)
			},
		},
		{
			name: "ide-project",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isIDE(app)
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, dashSegments(title)[0], "", includeWeb)
			},
		},
		{
			name: "file-manager",
			applies: func(c *FolderClassifier, app, title string, _ bool) bool {
				return c.isFileManager(app)
			},
			extract: func(c *FolderClassifier, app, title string, includeWeb bool) *Reference {
				return c.emit(app, title, "", includeWeb)
			},
		},
		{
			name: "web",
			applies: func(c *FolderClassifier, app, title string, includeWeb bool) bool {
				return includeWeb && urlPattern.MatchString(title)
			},
			extract: func(c *FolderClassifier, app, title string, _ bool) *Reference {
				return &Reference{Path: urlPattern.FindString(title), App: app, Context: "web"}
			},
		},
	}
}

// emitTerminal applies the shell-command filter before the shared emission
// path. A token that is nothing but a command name is a false positive and
// discards the event.
func (c *FolderClassifier) emitTerminal(app, token, context string, includeWeb bool) *Reference {
	if paths.IsShellCommandOnly(token) {
		return nil
	}
	return c.emit(app, token, context, includeWeb)
}

// emit normalizes one candidate into a reference. URL-shaped candidates are
// gated on includeWeb; everything else is cleaned and tilde-expanded.
func (c *FolderClassifier) emit(app, candidate, context string, includeWeb bool) *Reference {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil
	}

	if isURLCandidate(candidate) {
		if !includeWeb {
			return nil
		}
		return &Reference{Path: candidate, App: app, Context: "web"}
	}

	candidate = paths.CleanPath(candidate)
	if candidate == "" {
		return nil
	}
	if strings.HasPrefix(candidate, "~") {
		candidate = paths.ExpandHome(candidate)
	}
	return &Reference{Path: candidate, App: app, Context: context}
}

func (c *FolderClassifier) isTerminal(app string) bool {
	return c.terminals[strings.ToLower(app)]
}

func (c *FolderClassifier) isEditor(app string) bool {
	return c.editors[strings.ToLower(app)]
}

func (c *FolderClassifier) isIDE(app string) bool {
	return c.ides[strings.ToLower(app)]
}

func (c *FolderClassifier) isFileManager(app string) bool {
	return c.fileManagers[strings.ToLower(app)]
}

// terminalSeparatorIndex returns the byte index of the earliest terminal
// separator in title, or -1.
func terminalSeparatorIndex(title string) int {
	earliest := -1
	for _, sep := range terminalSeparators {
		if i := strings.Index(title, sep); i >= 0 && (earliest < 0 || i < earliest) {
			earliest = i
		}
	}
	return earliest
}

// separatorAt returns which terminal separator occurs at index i.
func separatorAt(title string, i int) string {
	for _, sep := range terminalSeparators {
		if strings.HasPrefix(title[i:], sep) {
			return sep
		}
	}
	return terminalSeparators[0]
}

// absoluteField returns the title itself when it starts with "/", otherwise
// the first whitespace-separated field that does, or "".
func absoluteField(title string) string {
	if strings.HasPrefix(title, "/") {
		return title
	}
	for _, field := range strings.Fields(title) {
		if strings.HasPrefix(field, "/") && len(field) > 1 {
			return field
		}
	}
	return ""
}

// dashSegments splits a title on spaced dash separators. The result always
// has at least one element.
func dashSegments(title string) []string {
	return dashSeparator.Split(title, -1)
}

// trailingSegment returns the last dash-separated segment of an editor
// title, skipping a final segment that merely names the application again
// ("main.go — myproject — Visual Studio Code" reported under app "Code",
// or "myproject — Cursor" with no file open).
func (c *FolderClassifier) trailingSegment(app, title string) string {
	segments := dashSegments(title)
	last := strings.TrimSpace(segments[len(segments)-1])
	if len(segments) >= 2 && c.isAppName(app, last) {
		last = strings.TrimSpace(segments[len(segments)-2])
	}
	return last
}

// isAppName reports whether segment names the reporting application, either
// verbatim or as one of the known editor/IDE product names.
func (c *FolderClassifier) isAppName(app, segment string) bool {
	if strings.EqualFold(segment, app) {
		return true
	}
	key := strings.ToLower(segment)
	return c.editors[key] || c.ides[key]
}

// isPlaceholderTitle reports whether a title is an editor placeholder for an
// unsaved buffer ("untitled", "Untitled-1").
func isPlaceholderTitle(title string) bool {
	return strings.HasPrefix(strings.ToLower(title), "untitled")
}

func isURLCandidate(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

func appSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}
	return set
}
