package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if crawlerClubsTotal == nil || crawlerEnrichmentFailuresTotal == nil ||
		crawlerDownloadsTotal == nil || crawlerPartitionDurationSeconds == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveClub(t *testing.T) {
	Init()
	before := testutil.ToFloat64(crawlerClubsTotal.WithLabelValues("q", StatusPartial))

	ObserveClub("Q", true)

	if got := testutil.ToFloat64(crawlerClubsTotal.WithLabelValues("q", StatusPartial)); got != before+1 {
		t.Errorf("expected partial counter %f, got %f", before+1, got)
	}
}

func TestObserveNavigationAndDownload(t *testing.T) {
	Init()
	okBefore := testutil.ToFloat64(crawlerNavigationsTotal.WithLabelValues("detail", "ok"))
	errBefore := testutil.ToFloat64(crawlerNavigationsTotal.WithLabelValues("detail", "error"))
	dlBefore := testutil.ToFloat64(crawlerDownloadsTotal.WithLabelValues(DownloadSkipped))

	ObserveNavigation("detail", nil)
	ObserveNavigation("detail", errors.New("boom"))
	ObserveDownload(DownloadSkipped)

	if got := testutil.ToFloat64(crawlerNavigationsTotal.WithLabelValues("detail", "ok")); got != okBefore+1 {
		t.Errorf("expected ok navigations %f, got %f", okBefore+1, got)
	}
	if got := testutil.ToFloat64(crawlerNavigationsTotal.WithLabelValues("detail", "error")); got != errBefore+1 {
		t.Errorf("expected error navigations %f, got %f", errBefore+1, got)
	}
	if got := testutil.ToFloat64(crawlerDownloadsTotal.WithLabelValues(DownloadSkipped)); got != dlBefore+1 {
		t.Errorf("expected skipped downloads %f, got %f", dlBefore+1, got)
	}
}

func TestObservePartition(t *testing.T) {
	Init()
	ObservePartition("Z", 42, 3*time.Second)

	if got := testutil.ToFloat64(crawlerPartitionStubs.WithLabelValues("z")); got != 42 {
		t.Errorf("expected stub gauge 42, got %f", got)
	}
	if got := testutil.CollectAndCount(crawlerPartitionDurationSeconds); got <= 0 {
		t.Errorf("expected partition duration to be observed, got %d", got)
	}
}
