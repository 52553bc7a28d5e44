package paths

import (
	"os"
	"regexp"
	"strings"
)

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// shellCommands are bare command names that show up alone in terminal titles.
// A title that is exactly one of these is a running command, not a folder.
var shellCommands = map[string]struct{}{
	"bash": {}, "zsh": {}, "sh": {}, "fish": {},
	"ls": {}, "cd": {}, "pwd": {}, "clear": {}, "exit": {},
	"git": {}, "vim": {}, "nvim": {}, "vi": {}, "nano": {}, "emacs": {},
	"ssh": {}, "top": {}, "htop": {}, "man": {}, "cat": {}, "less": {},
	"grep": {}, "find": {}, "make": {}, "tmux": {},
	"npm": {}, "yarn": {}, "node": {}, "python": {}, "python3": {}, "pip": {},
	"go": {}, "cargo": {}, "brew": {}, "curl": {}, "wget": {}, "docker": {},
}

// ExpandHome replaces a leading ~ with the user's home directory.
// All other paths pass through unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return home + path[1:]
}

// CleanPath trims surrounding whitespace and collapses repeated slashes.
func CleanPath(path string) string {
	return repeatedSlashes.ReplaceAllString(strings.TrimSpace(path), "/")
}

// IsShellCommandOnly reports whether a title token is exactly a bare shell
// command name. Login shells report themselves with a leading dash ("-zsh"),
// which counts the same. Such tokens must never be treated as a folder
// reference.
func IsShellCommandOnly(token string) bool {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "-")
	_, ok := shellCommands[token]
	return ok
}
