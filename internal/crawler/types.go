package crawler

import (
	"time"
)

// Stub is a club as it appears on a listing page, before enrichment.
type Stub struct {
	LogoURL   string
	LogoLabel string
	Name      string
	DetailURL string
}

// Club is a Stub enriched with the fields only available on its detail page.
// An empty string means the field is absent.
type Club struct {
	Stub
	PrimaryImageURL   string
	SecondaryImageURL string
	LocalImagePath    string
}

// NewClub copies a stub into a club with every enrichment field absent.
func NewClub(stub Stub) Club {
	return Club{Stub: stub}
}

// FailureKind classifies a non-fatal failure recorded while enriching a club.
type FailureKind string

// Failure kinds recorded on an Outcome.
const (
	FailureExtractionMiss FailureKind = "extraction_miss"
	FailureFetch          FailureKind = "fetch"
	FailureNavigation     FailureKind = "navigation"
)

// Failure is a single non-fatal problem met while enriching a club.
type Failure struct {
	Kind  FailureKind
	Field string
	Err   error
}

// Outcome is the result of enriching one stub. It always carries a Club; an
// outcome with failures is partial.
type Outcome struct {
	Club     Club
	Failures []Failure
}

// Partial reports whether any enrichment step failed.
func (o Outcome) Partial() bool {
	return len(o.Failures) > 0
}

// Has reports whether a failure of the given kind was recorded.
func (o Outcome) Has(kind FailureKind) bool {
	for _, f := range o.Failures {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

func (o *Outcome) record(kind FailureKind, field string, err error) {
	o.Failures = append(o.Failures, Failure{Kind: kind, Field: field, Err: err})
}

// RunConfig holds the three independent switches of a crawl run.
type RunConfig struct {
	DryRun         bool
	DownloadImages bool
	SaveJSON       bool
}

// DefaultRunConfig is used for programmatic runs that skip the questionnaire.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		DryRun:         false,
		DownloadImages: true,
		SaveJSON:       true,
	}
}

// PartitionStats summarizes one letter of a run.
type PartitionStats struct {
	Letter      string
	URL         string
	Stubs       int
	Partial     int
	// Unreachable counts clubs whose detail page could not be loaded.
	Unreachable int
	Duration    time.Duration
}

// RunResult is the ordered output of a crawl: letter ascending, then page order.
type RunResult struct {
	RunID      string
	Clubs      []Club
	Partitions []PartitionStats
	StartedAt  time.Time
	Duration   time.Duration
}

// TotalStubs sums the stub counts of every processed partition.
func (r RunResult) TotalStubs() int {
	total := 0
	for _, p := range r.Partitions {
		total += p.Stubs
	}
	return total
}

// AveragePerClub returns the mean wall-clock time spent per club.
func (r RunResult) AveragePerClub() time.Duration {
	if len(r.Clubs) == 0 {
		return 0
	}
	return r.Duration / time.Duration(len(r.Clubs))
}
