package models

import (
	"time"
)

// Result represents the outcome of one browser session
type Result struct {
	Batch          int           `json:"batch"`
	WorkerID       int           `json:"worker_id"`
	URL            string        `json:"url"`
	Title          string        `json:"title,omitempty"`
	StatusCode     int           `json:"status_code,omitempty"`
	WindowSize     string        `json:"window_size,omitempty"`
	Scrolls        int           `json:"scrolls"`
	ScrolledPixels int           `json:"scrolled_pixels"`
	Dwell          time.Duration `json:"dwell"`
	Err            string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
	Timestamp      time.Time     `json:"timestamp"`
}

// OK reports whether the session completed without error
func (r Result) OK() bool {
	return r.Err == ""
}

// Batch groups the sessions started together by one fan-out
type Batch struct {
	Number   int           `json:"number"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Results  []Result      `json:"results"`
}

// Counts returns the number of successful and failed sessions
func (b Batch) Counts() (succeeded, failed int) {
	for _, r := range b.Results {
		if r.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
