package aw

import "time"

// Bucket type strings reported by the server.
const (
	// BucketTypeWindow identifies window-focus watcher buckets
	BucketTypeWindow = "currentwindow"
	// BucketTypeAFK identifies away-from-keyboard watcher buckets
	BucketTypeAFK = "afkstatus"
)

// Bucket describes one event stream registered on the ActivityWatch server.
type Bucket struct {
	ID          string                 `json:"id"`
	Created     string                 `json:"created,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Type        string                 `json:"type"`
	Client      string                 `json:"client,omitempty"`
	Hostname    string                 `json:"hostname,omitempty"`
	LastUpdated string                 `json:"last_updated,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Event is one timestamped activity sample from a bucket.
// Data carries watcher-specific fields: window buckets record "app" and
// "title", AFK buckets record "status".
type Event struct {
	ID        int64                  `json:"id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  float64                `json:"duration"` // seconds
	Data      map[string]interface{} `json:"data"`
}

// App returns the application name recorded on the event, or "".
func (e Event) App() string {
	return e.stringField("app")
}

// Title returns the window title recorded on the event, or "".
func (e Event) Title() string {
	return e.stringField("title")
}

// Status returns the AFK status recorded on the event, or "".
func (e Event) Status() string {
	return e.stringField("status")
}

func (e Event) stringField(key string) string {
	v, ok := e.Data[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// EventOptions filters a GetEvents call. Zero values are omitted from the
// request, leaving the server defaults in effect.
type EventOptions struct {
	Limit int
	Start string // ISO instant
	End   string // ISO instant
}

// ServerInfo is the server identification returned by /api/0/info.
type ServerInfo struct {
	Hostname string `json:"hostname"`
	Version  string `json:"version"`
	Testing  bool   `json:"testing"`
}

// WindowBuckets selects the window-focus buckets from a bucket list.
func WindowBuckets(buckets []Bucket) []Bucket {
	return bucketsOfType(buckets, BucketTypeWindow)
}

// AFKBuckets selects the AFK status buckets from a bucket list.
func AFKBuckets(buckets []Bucket) []Bucket {
	return bucketsOfType(buckets, BucketTypeAFK)
}

func bucketsOfType(buckets []Bucket, bucketType string) []Bucket {
	var out []Bucket
	for _, b := range buckets {
		if b.Type == bucketType {
			out = append(out, b)
		}
	}
	return out
}
