package domain

import (
	"encoding/json"
	"time"
)

// CollectReport summarises one feed collection pass.
type CollectReport struct {
	// PerFeed maps feed URL to the number of articles created.
	PerFeed     map[string]int
	New         int
	FailedFeeds int
	Skipped     int
	Total       int64
	Duration    time.Duration
}

// JSON renders the per-feed counts as indented JSON with sorted keys.
func (r *CollectReport) JSON() string {
	// encoding/json sorts map keys.
	data, err := json.MarshalIndent(r.PerFeed, "", "    ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SampleStats summarises one dump sampling pass.
type SampleStats struct {
	Pages     int
	Evaluated int
	Events    int
	Citations int
	Created   int
	Skipped   int
	PeakLive  int
	Duration  time.Duration
}

type LoadStats struct {
	Sources    int
	NewSources int
	Feeds      int
	NewFeeds   int
}
