// Package system provides the wall clock used to time crawl runs.
package system

import "time"

// Clock implements crawler.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC. The monotonic reading is kept so
// durations between two calls stay accurate across wall clock changes.
func (Clock) Now() time.Time {
	now := time.Now()
	return now.In(time.UTC)
}
