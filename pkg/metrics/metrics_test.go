package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/paging"
)

func TestPagingMetricsObserveIterator(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPagingMetrics(reg)

	fails := 1
	elements := []int{1, 2, 3, 4, 5, 6, 7}
	fetcher := paging.PageFetcherFunc[int](func(ctx context.Context, start, size int) ([]int, error) {
		if start == 5 && fails > 0 {
			fails--
			return nil, errors.New("connection reset")
		}
		return paging.SliceFetcher(elements).FetchPage(ctx, start, size)
	})
	it, err := paging.New(len(elements), 5, fetcher, nil, paging.WithName("Likes"), paging.WithObserver(m))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := it.Next(ctx)
		require.NoError(t, err)
	}
	_, err = it.Next(ctx)
	require.Error(t, err)
	_, err = it.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesFetched.WithLabelValues("Likes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailures.WithLabelValues("Likes")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.elementsServed.WithLabelValues("Likes")))

	expected := `
# HELP ocf_paging_pages_fetched_total Pages retrieved from the property server
# TYPE ocf_paging_pages_fetched_total counter
ocf_paging_pages_fetched_total{iterator="Likes"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ocf_paging_pages_fetched_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchDuration))
}

func TestExportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewExportMetrics(reg)

	m.ElementsWritten("comments", 25)
	m.ElementsWritten("comments", 5)
	m.BytesWritten("file", 1024)
	m.ExportFinished(nil, time.Second)
	m.ExportFinished(errors.New("disk full"), time.Second)

	assert.Equal(t, 30.0, testutil.ToFloat64(m.elementsWritten.WithLabelValues("comments")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.bytesWritten.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("failure")))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPagingMetrics(reg)
	assert.Panics(t, func() { NewPagingMetrics(reg) })
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	first := timer.Stop()
	assert.GreaterOrEqual(t, first, time.Duration(0))
	assert.GreaterOrEqual(t, timer.Stop(), first)
}
