package aw

import (
	"context"
	"sort"
	"sync"
)

// SweepResult is the outcome of fetching events across several buckets.
// Events from all responding buckets are merged into one batch sorted by
// timestamp; buckets that failed are listed in Skipped with their errors.
type SweepResult struct {
	Events  []Event
	Buckets []string // bucket IDs that contributed events
	Skipped []SkippedBucket
}

// SkippedBucket records one bucket that failed during a sweep.
type SkippedBucket struct {
	BucketID string
	Err      error
}

type sweepBatch struct {
	bucketID string
	events   []Event
}

// SweepEvents fetches events from every given bucket in parallel and merges
// the batches. A failing bucket is skipped rather than failing the sweep, so
// the result covers whatever buckets responded; the caller decides whether
// an empty result with skips is acceptable. The merged batch is sorted by
// timestamp (bucket ID as tie-break) so the output does not depend on which
// fetch finished first.
func SweepEvents(ctx context.Context, c *Client, buckets []Bucket, opts EventOptions) SweepResult {
	var wg sync.WaitGroup
	batches := make(chan sweepBatch, len(buckets))
	failures := make(chan SkippedBucket, len(buckets))

	for _, bucket := range buckets {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			events, err := c.GetEvents(ctx, id, opts)
			if err != nil {
				failures <- SkippedBucket{BucketID: id, Err: err}
				return
			}
			batches <- sweepBatch{bucketID: id, events: events}
		}(bucket.ID)
	}

	wg.Wait()
	close(batches)
	close(failures)

	var result SweepResult
	perBucket := make(map[string][]Event)
	for batch := range batches {
		result.Buckets = append(result.Buckets, batch.bucketID)
		perBucket[batch.bucketID] = batch.events
	}
	for skipped := range failures {
		result.Skipped = append(result.Skipped, skipped)
	}

	sort.Strings(result.Buckets)
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].BucketID < result.Skipped[j].BucketID
	})

	// Merge in bucket-ID order, then sort by time, so the batch is identical
	// no matter how the parallel fetches interleaved.
	for _, id := range result.Buckets {
		result.Events = append(result.Events, perBucket[id]...)
	}
	sort.SliceStable(result.Events, func(i, j int) bool {
		return result.Events[i].Timestamp.Before(result.Events[j].Timestamp)
	})

	return result
}

// SkippedIDs returns just the bucket IDs of the skipped entries.
func (r SweepResult) SkippedIDs() []string {
	ids := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		ids = append(ids, s.BucketID)
	}
	return ids
}
