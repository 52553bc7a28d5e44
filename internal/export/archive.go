// Package export writes ActivityWatch events to local archive files so a
// range of activity survives bucket rotation and can be inspected offline.
//
// An archive is a JSONL file (one event per line), zstd-compressed by
// default, plus a small JSON manifest describing what was captured.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"awmcp/internal/aw"
	"awmcp/internal/paths"
)

const manifestSuffix = ".manifest.json"

// Archiver writes event archives into a single directory.
type Archiver struct {
	dir    string
	logger *slog.Logger
}

// NewArchiver creates an archiver rooted at dir. An empty dir uses the
// default exports directory.
func NewArchiver(dir string, logger *slog.Logger) (*Archiver, error) {
	if dir == "" {
		var err error
		dir, err = paths.EnsureExportsDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve exports directory: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create exports directory: %w", err)
		}
	}

	return &Archiver{dir: dir, logger: logger}, nil
}

// Dir returns the directory archives are written to.
func (a *Archiver) Dir() string {
	return a.dir
}

// Options describes one archive run.
type Options struct {
	BucketID string // source bucket
	Hostname string // reporting host, recorded in the manifest
	Start    string // ISO range start, recorded in the manifest
	End      string // ISO range end
	Compress bool
}

// Manifest describes a written archive.
type Manifest struct {
	ID         string    `json:"id"`
	BucketID   string    `json:"bucketId"`
	Hostname   string    `json:"hostname,omitempty"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	EventCount int       `json:"eventCount"`
	EventsFile string    `json:"eventsFile"`
	SizeBytes  int64     `json:"sizeBytes"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Path returns the absolute path of the events file described by the
// manifest, given the archiver that wrote it.
func (a *Archiver) Path(m *Manifest) string {
	return filepath.Join(a.dir, m.EventsFile)
}

// Archive writes events as JSONL and returns the manifest. Events are
// written in the order given.
func (a *Archiver) Archive(events []aw.Event, opts Options) (*Manifest, error) {
	if opts.BucketID == "" {
		return nil, fmt.Errorf("bucket id is required")
	}

	id := uuid.New().String()
	base := fmt.Sprintf("%s-%s", safeFileName(opts.BucketID), id[:8])
	eventsFile := base + ".jsonl"
	if opts.Compress {
		eventsFile += ".zst"
	}
	eventsPath := filepath.Join(a.dir, eventsFile)

	size, err := a.writeEvents(eventsPath, events, opts.Compress)
	if err != nil {
		os.Remove(eventsPath)
		return nil, err
	}

	manifest := &Manifest{
		ID:         id,
		BucketID:   opts.BucketID,
		Hostname:   opts.Hostname,
		Start:      opts.Start,
		End:        opts.End,
		EventCount: len(events),
		EventsFile: eventsFile,
		SizeBytes:  size,
		Compressed: opts.Compress,
		CreatedAt:  time.Now(),
	}

	if err := a.writeManifest(filepath.Join(a.dir, base+manifestSuffix), manifest); err != nil {
		os.Remove(eventsPath)
		return nil, err
	}

	a.logger.Info("Wrote event archive",
		"bucket", opts.BucketID,
		"events", len(events),
		"file", eventsFile,
		"bytes", size)

	return manifest, nil
}

func (a *Archiver) writeEvents(path string, events []aw.Event, compress bool) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file: %w", err)
	}

	var w io.Writer = f
	var zw *zstd.Encoder
	if compress {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return 0, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w = zw
	}

	enc := json.NewEncoder(w)
	for i := range events {
		if err := enc.Encode(&events[i]); err != nil {
			if zw != nil {
				zw.Close()
			}
			f.Close()
			return 0, fmt.Errorf("failed to encode event: %w", err)
		}
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			f.Close()
			return 0, fmt.Errorf("failed to finish zstd stream: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close archive file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (a *Archiver) writeManifest(path string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadEvents loads events back from an archive file, transparently
// decompressing .zst archives.
func ReadEvents(path string) ([]aw.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var events []aw.Event
	jd := json.NewDecoder(r)
	for {
		var ev aw.Event
		if err := jd.Decode(&ev); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// List returns manifests for all archives in the directory, newest first.
func (a *Archiver) List() ([]Manifest, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), manifestSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			a.logger.Warn("Skipping unreadable manifest", "file", entry.Name(), "error", err)
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].CreatedAt.After(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// CleanupOldArchives removes archives and manifests older than maxAge and
// reports how many files were removed.
func (a *Archiver) CleanupOldArchives(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(a.dir, entry.Name())
			if err := os.Remove(path); err == nil {
				cleaned++
			}
		}
	}

	if cleaned > 0 {
		a.logger.Info("Cleaned up old archives", "removed", cleaned)
	}
	return cleaned, nil
}

// safeFileName keeps bucket ids usable as file name stems.
func safeFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
