package export

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/compression"
	"github.com/ajitpratap0/ocf/pkg/connectedasset"
	jsonpool "github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/metrics"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
	"github.com/ajitpratap0/ocf/pkg/propertyserver/memory"
	"github.com/ajitpratap0/ocf/pkg/sink"
	"github.com/ajitpratap0/ocf/pkg/testutil"
)

func connected(t *testing.T, cacheSize int) (*connectedasset.ConnectedAsset, *memory.Server, testutil.Sample) {
	t.Helper()
	ctx := testutil.TestContext(t)
	srv := memory.New(testutil.TestLogger(t))
	f, sample := testutil.SampleFixture(t, "asset-1")
	require.NoError(t, f.Apply(ctx, srv))
	ca, err := connectedasset.New(ctx, srv, "asset-1", connectedasset.WithMaxCacheSize(cacheSize))
	require.NoError(t, err)
	return ca, srv, sample
}

func readLines(t *testing.T, path string, a compression.Algorithm) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := compression.NewReader(f, a)
	require.NoError(t, err)
	defer r.Close()

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestExportWritesEveryElement(t *testing.T) {
	for _, a := range compression.Algorithms() {
		t.Run(string(a), func(t *testing.T) {
			ca, _, sample := connected(t, 7)
			dir := t.TempDir()
			s, err := sink.NewFile(dir, "", nil)
			require.NoError(t, err)

			e := New(s, WithCompression(a, compression.Default), WithLogger(testutil.TestLogger(t)))
			summary, err := e.Export(testutil.TestContext(t), ca, nil)
			require.NoError(t, err)

			want := sample.Total() + sample.Replies + sample.Notes
			assert.Equal(t, want, summary.Total())
			assert.Equal(t, want+1, summary.Lines)
			assert.Equal(t, sample.Replies, summary.Elements[beans.KindCommentReplies])
			assert.Equal(t, sample.Notes, summary.Elements[beans.KindNotes])
			assert.Positive(t, summary.Bytes)

			lines := readLines(t, filepath.Join(dir, "asset-1.jsonl"+a.Extension()), a)
			assert.Len(t, lines, want+1)
		})
	}
}

func TestExportLineFormat(t *testing.T) {
	ca, _, sample := connected(t, 10)
	dir := t.TempDir()
	s, err := sink.NewFile(dir, "", nil)
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	e := New(s, WithClock(func() time.Time { return at }))
	summary, err := e.Export(context.Background(), ca, []beans.Kind{beans.KindComments})
	require.NoError(t, err)
	assert.Equal(t, sample.Counts[beans.KindComments]+sample.Replies, summary.Total())

	lines := readLines(t, filepath.Join(dir, "asset-1.jsonl"), compression.None)
	require.NotEmpty(t, lines)

	var header struct {
		Type       string         `json:"type"`
		Asset      beans.Asset    `json:"asset"`
		Counts     map[string]int `json:"counts"`
		ExportedAt time.Time      `json:"exported_at"`
	}
	require.NoError(t, jsonpool.Unmarshal([]byte(lines[0]), &header))
	assert.Equal(t, "asset", header.Type)
	assert.Equal(t, "asset-1", header.Asset.GUID)
	assert.Equal(t, sample.Counts[beans.KindComments], header.Counts[string(beans.KindComments)])
	assert.True(t, at.Equal(header.ExportedAt))

	type line struct {
		Kind    string        `json:"kind"`
		Owner   string        `json:"owner"`
		Index   int           `json:"index"`
		Element beans.Comment `json:"element"`
	}
	var first, reply line
	require.NoError(t, jsonpool.Unmarshal([]byte(lines[1]), &first))
	assert.Equal(t, "comments", first.Kind)
	assert.Equal(t, "asset-1", first.Owner)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, sample.RepliedComment, first.Element.GUID)

	// replies to the first comment follow it directly
	require.NoError(t, jsonpool.Unmarshal([]byte(lines[2]), &reply))
	assert.Equal(t, "comment_replies", reply.Kind)
	assert.Equal(t, sample.RepliedComment, reply.Owner)
	assert.Equal(t, 0, reply.Index)
}

func TestExportRedactsConnections(t *testing.T) {
	ca, _, _ := connected(t, 10)
	dir := t.TempDir()
	s, err := sink.NewFile(dir, "", nil)
	require.NoError(t, err)

	_, err = New(s).Export(context.Background(), ca, []beans.Kind{beans.KindConnections})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "asset-1.jsonl"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
	assert.NotContains(t, string(data), "token")
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestExportWithoutChildren(t *testing.T) {
	ca, _, sample := connected(t, 10)
	s, err := sink.NewFile(t.TempDir(), "", nil)
	require.NoError(t, err)

	summary, err := New(s, WithoutChildren()).Export(context.Background(), ca, nil)
	require.NoError(t, err)
	assert.Equal(t, sample.Total(), summary.Total())
	assert.Zero(t, summary.Elements[beans.KindNotes])
}

func TestExportMetrics(t *testing.T) {
	ca, srv, _ := connected(t, 10)
	s, err := sink.NewFile(t.TempDir(), "", nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	e := New(s, WithMetrics(metrics.NewExportMetrics(reg)))

	_, err = e.Export(context.Background(), ca, []beans.Kind{beans.KindLikes})
	require.NoError(t, err)

	srv.SetOffline(true)
	_, err = e.Export(context.Background(), ca, []beans.Kind{beans.KindLikes})
	require.Error(t, err)

	expected := `
# HELP ocf_export_runs_total Completed exports by status
# TYPE ocf_export_runs_total counter
ocf_export_runs_total{status="failure"} 1
ocf_export_runs_total{status="success"} 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(reg, strings.NewReader(expected), "ocf_export_runs_total"))
}

type recordingSink struct {
	obj *failingObject
}

func (s *recordingSink) Create(context.Context, string, sink.Metadata) (sink.Object, error) {
	return s.obj, nil
}
func (s *recordingSink) Kind() string { return "test" }
func (s *recordingSink) Close() error { return nil }

type failingObject struct {
	aborted, closed bool
}

func (o *failingObject) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (o *failingObject) Close() error               { o.closed = true; return nil }
func (o *failingObject) Abort() error               { o.aborted = true; return nil }
func (o *failingObject) URI() string                { return "test://failing" }
func (o *failingObject) BytesWritten() int64        { return 0 }

func TestExportAbortsOnWriteFailure(t *testing.T) {
	ca, _, _ := connected(t, 10)
	obj := &failingObject{}

	_, err := New(&recordingSink{obj: obj}).Export(context.Background(), ca, nil)
	require.Error(t, err)
	assert.True(t, obj.aborted)
	assert.False(t, obj.closed)
}

// flakyServer fails every page fetch of one kind.
type flakyServer struct {
	*memory.Server
	kind beans.Kind
}

func (s flakyServer) FetchElements(ctx context.Context, owner string, kind beans.Kind, start, size int) ([]propertyserver.RawElement, error) {
	if kind == s.kind {
		return nil, ocferrors.New(ocferrors.ErrorTypeConnection, "connection reset")
	}
	return s.Server.FetchElements(ctx, owner, kind, start, size)
}

func TestExportFetchFailureAborts(t *testing.T) {
	ctx := testutil.TestContext(t)
	_, srv, _ := connected(t, 5)
	ca, err := connectedasset.New(ctx, flakyServer{Server: srv, kind: beans.KindRatings}, "asset-1")
	require.NoError(t, err)

	dir := t.TempDir()
	s, err := sink.NewFile(dir, "", nil)
	require.NoError(t, err)

	_, err = New(s).Export(ctx, ca, nil)
	require.Error(t, err)
	assert.True(t, ocferrors.HasType(err, ocferrors.ErrorTypeConnection))
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypePropertyServerAccess))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial export must be discarded")
}

func TestExportStopsAtSelfOwnedReply(t *testing.T) {
	ctx := testutil.TestContext(t)
	srv := memory.New(testutil.TestLogger(t))
	require.NoError(t, srv.PutAsset(ctx, &beans.Asset{
		ElementHeader: beans.ElementHeader{GUID: "a1", TypeName: "Asset"},
	}))
	require.NoError(t, srv.AddElement(ctx, "a1", beans.KindComments,
		propertyserver.RawElement(`{"guid":"c1","commentText":"first"}`)))
	require.NoError(t, srv.AddElement(ctx, "c1", beans.KindCommentReplies,
		propertyserver.RawElement(`{"guid":"c1","commentText":"loop"}`)))

	ca, err := connectedasset.New(ctx, srv, "a1")
	require.NoError(t, err)
	dir := t.TempDir()
	s, err := sink.NewFile(dir, "", nil)
	require.NoError(t, err)

	summary, err := New(s).Export(ctx, ca, []beans.Kind{beans.KindComments})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Elements[beans.KindComments])
	assert.Equal(t, 1, summary.Elements[beans.KindCommentReplies])
	assert.Len(t, readLines(t, filepath.Join(dir, "a1.jsonl"), compression.None), 3)
}

func TestExportRequiresAsset(t *testing.T) {
	s, err := sink.NewFile(t.TempDir(), "", nil)
	require.NoError(t, err)
	_, err = New(s).Export(context.Background(), nil, nil)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeInvalidParameter))
}

func TestObjectName(t *testing.T) {
	s, err := sink.NewFile(t.TempDir(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "a.jsonl", New(s).ObjectName("a"))
	assert.Equal(t, "a.jsonl.zst", New(s, WithCompression(compression.Zstd, compression.Fastest)).ObjectName("a"))
}
