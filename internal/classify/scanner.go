package classify

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"awmcp/internal/aw"
	"awmcp/internal/paths"
)

// scanPatterns are the recall-oriented extractors behind Scan. Unlike the
// classifier rules they are not first-match-wins: every pattern runs over
// every title and the matches are unioned. A capture group, when present,
// holds the path; otherwise the whole match is the candidate.
var scanPatterns = []*regexp.Regexp{
	// Rooted at a well-known Unix directory, anywhere in the title.
	regexp.MustCompile(`/(?:Users|home|var|tmp|opt|usr|Applications|System|Library|Volumes|private|etc)(?:/[^\s"'<>|]+)*`),
	// Editor style: path after a spaced dash separator or at the start.
	regexp.MustCompile(`(?:^|[—–-]\s)(/[^\s"'<>|]+)`),
	// Terminal style: path after a colon, tilde, or whitespace.
	regexp.MustCompile(`[:~\s](/[^\s"'<>|]+)`),
	// File-manager style: a bare path after whitespace, stopped by quotes,
	// pipes, and angle brackets.
	regexp.MustCompile(`\s(/[^"'<>|\s]+)`),
}

// Scan extracts every plausible absolute directory path from a title. File
// paths are truncated to their containing directory. The result is
// deduplicated and sorted so batch output never depends on pattern or
// match order.
func Scan(title string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range scanPatterns {
		for _, match := range pattern.FindAllStringSubmatch(title, -1) {
			candidate := match[0]
			if len(match) > 1 && match[1] != "" {
				candidate = match[1]
			}

			dir, ok := validateCandidate(candidate)
			if !ok {
				continue
			}
			if _, dup := seen[dir]; dup {
				continue
			}
			seen[dir] = struct{}{}
			out = append(out, dir)
		}
	}

	sort.Strings(out)
	return out
}

// ScanEvents unions Scan across a whole event batch. The batch may have been
// assembled from multiple buckets in any order; the output depends only on
// the set of titles present.
func ScanEvents(events []aw.Event) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, event := range events {
		for _, dir := range Scan(event.Title()) {
			if _, dup := seen[dir]; dup {
				continue
			}
			seen[dir] = struct{}{}
			out = append(out, dir)
		}
	}

	sort.Strings(out)
	return out
}

// validateCandidate cleans and validates one raw match, then truncates
// file-looking paths to their directory. Validation runs before truncation,
// so a two-segment file path is kept via its parent even when the parent
// alone would be too short to qualify.
func validateCandidate(raw string) (string, bool) {
	p := paths.CleanPath(raw)
	if len(p) <= 3 {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		return "", false
	}
	if strings.Contains(p, "...") {
		return "", false
	}
	if strings.Count(p, "/") < 2 {
		// Single-segment paths ("/tmp") are too generic to report.
		return "", false
	}

	if looksLikeFile(p) {
		p = path.Dir(p)
	}
	return p, true
}

// looksLikeFile reports whether a path names a file rather than a
// directory: a dot extension in the final segment and no trailing slash.
// Dot-leading segments (".config") are treated as directories.
func looksLikeFile(p string) bool {
	if strings.HasSuffix(p, "/") {
		return false
	}
	base := path.Base(p)
	i := strings.LastIndex(base, ".")
	return i > 0 && i < len(base)-1
}
