// Package export streams the elements attached to a connected asset into a
// sink as JSON lines.
//
// The first line describes the asset. Every following line carries one element:
//
//	{"kind":"comments","owner":"<guid>","index":0,"element":{...}}
//
// Elements are pulled through paging iterators, so at most one page per open
// collection is held in memory. Replies to comments and notes in note logs
// are written directly after the element that owns them.
package export

import (
	"bufio"
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/compression"
	"github.com/ajitpratap0/ocf/pkg/connectedasset"
	jsonpool "github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/logger"
	"github.com/ajitpratap0/ocf/pkg/metrics"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/sink"
)

// ContentType of an uncompressed export.
const ContentType = "application/x-ndjson"

const writeBufferSize = 64 * 1024

// Header is the first line of an export.
type Header struct {
	Type       string                 `json:"type"`
	Asset      *beans.Asset           `json:"asset"`
	Counts     map[beans.Kind]int     `json:"counts"`
	ExportedAt time.Time              `json:"exported_at"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Line is an element line of an export.
type Line struct {
	Kind    beans.Kind  `json:"kind"`
	Owner   string      `json:"owner"`
	Index   int         `json:"index"`
	Element interface{} `json:"element"`
}

// Summary reports what an export wrote.
type Summary struct {
	AssetGUID string
	URI       string
	// Elements holds the number of elements written per kind, children
	// included.
	Elements map[beans.Kind]int
	Lines    int
	Bytes    int64
	Duration time.Duration
}

// Total returns the number of elements written.
func (s *Summary) Total() int {
	n := 0
	for _, c := range s.Elements {
		n += c
	}
	return n
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithCompression compresses the output.
func WithCompression(a compression.Algorithm, level compression.Level) Option {
	return func(e *Exporter) {
		e.algorithm = a
		e.level = level
	}
}

// WithMetrics records export metrics.
func WithMetrics(m *metrics.ExportMetrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithoutChildren skips comment replies and notes.
func WithoutChildren() Option {
	return func(e *Exporter) {
		e.children = false
	}
}

// WithClock overrides the time source used for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// Exporter writes connected assets to a sink.
type Exporter struct {
	sink      sink.Sink
	algorithm compression.Algorithm
	level     compression.Level
	metrics   *metrics.ExportMetrics
	logger    *zap.Logger
	children  bool
	now       func() time.Time
}

// New creates an exporter writing to s.
func New(s sink.Sink, opts ...Option) *Exporter {
	e := &Exporter{
		sink:      s,
		algorithm: compression.None,
		level:     compression.Default,
		logger:    zap.NewNop(),
		children:  true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ObjectName returns the name of the object an export of assetGUID is written to.
func (e *Exporter) ObjectName(assetGUID string) string {
	return assetGUID + ".jsonl" + e.algorithm.Extension()
}

// Export writes the asset and every element of kinds. A nil kinds exports all
// the collections reachable from the asset. On failure the partially written
// object is discarded.
func (e *Exporter) Export(ctx context.Context, ca *connectedasset.ConnectedAsset, kinds []beans.Kind) (summary *Summary, err error) {
	if ca == nil {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "connected asset is required")
	}
	if kinds == nil {
		kinds = ca.Kinds()
	}
	guid := ca.Descriptor().GUID
	ctx = logger.WithAssetGUID(ctx, guid)
	log := logger.FromContext(ctx, e.logger)
	timer := metrics.NewTimer()
	defer func() {
		elapsed := timer.Stop()
		if summary != nil {
			summary.Duration = elapsed
		}
		if e.metrics != nil {
			e.metrics.ExportFinished(err, elapsed)
		}
	}()

	counts, err := ca.Counts(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := e.sink.Create(ctx, e.ObjectName(guid), sink.Metadata{
		ContentType: ContentType,
		Attributes: map[string]string{
			"asset-guid":  guid,
			"compression": string(e.algorithm),
		},
	})
	if err != nil {
		return nil, err
	}

	w := &writer{
		kinds:    make(map[beans.Kind]int),
		open:     make(map[string]bool),
		children: e.children,
		metrics:  e.metrics,
		log:      log,
	}
	summary = &Summary{AssetGUID: guid, URI: obj.URI(), Elements: w.kinds}

	if err := w.run(ctx, obj, e, ca, kinds, counts); err != nil {
		if abortErr := obj.Abort(); abortErr != nil {
			log.Warn("failed to discard partial export", zap.Error(abortErr))
		}
		log.Error("export failed", zap.Error(err), zap.Int("lines", w.lines))
		return nil, err
	}
	if err := obj.Close(); err != nil {
		return nil, err
	}

	summary.Lines = w.lines
	summary.Bytes = obj.BytesWritten()
	if e.metrics != nil {
		e.metrics.BytesWritten(e.sink.Kind(), summary.Bytes)
	}
	log.Info("asset exported",
		zap.String("uri", summary.URI),
		zap.Int("elements", summary.Total()),
		zap.Int64("bytes", summary.Bytes))
	return summary, nil
}

// writer holds the state of one export run.
type writer struct {
	enc      interface{ Encode(v interface{}) error }
	kinds    map[beans.Kind]int
	lines    int
	children bool
	metrics  *metrics.ExportMetrics
	log      *zap.Logger
	// open holds the owners whose child collections are being written
	open map[string]bool
}

func (w *writer) run(ctx context.Context, obj io.Writer, e *Exporter, ca *connectedasset.ConnectedAsset, kinds []beans.Kind, counts map[beans.Kind]int) error {
	cw, err := compression.NewWriter(obj, e.algorithm, e.level)
	if err != nil {
		return err
	}
	buf := bufio.NewWriterSize(cw, writeBufferSize)
	w.enc = jsonpool.NewEncoder(buf)

	header := Header{
		Type:       "asset",
		Asset:      ca.Asset().Bean(),
		Counts:     counts,
		ExportedAt: e.now().UTC(),
	}
	if st, ok := ca.SchemaType(); ok {
		header.Attributes = map[string]interface{}{"schema_type_guid": st.Header().GUID}
	}
	if err := w.encode(header); err != nil {
		return err
	}

	for _, kind := range kinds {
		it, err := ca.Open(ctx, kind)
		if err != nil {
			return err
		}
		if err := w.drain(ctx, ca, kind, it); err != nil {
			return err
		}
	}

	if err := buf.Flush(); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to flush export")
	}
	if err := cw.Close(); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to finish compressed stream")
	}
	return nil
}

// drain writes every element of it, followed by the children of each element.
func (w *writer) drain(ctx context.Context, ca *connectedasset.ConnectedAsset, kind beans.Kind, it connectedasset.Elements) error {
	owner := it.Owner().GUID
	for index := 0; it.HasNext(); index++ {
		if err := ctx.Err(); err != nil {
			return ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, "export cancelled")
		}
		element, err := it.NextElement(ctx)
		if err != nil {
			return err
		}
		if err := w.encode(Line{Kind: kind, Owner: owner, Index: index, Element: element}); err != nil {
			return err
		}
		w.kinds[kind]++
		if w.metrics != nil {
			w.metrics.ElementsWritten(string(kind), 1)
		}

		if !w.children {
			continue
		}
		child, guid, ok := childKind(element)
		if !ok {
			continue
		}
		if w.open[guid] {
			w.log.Warn("skipping children of an element that is its own ancestor",
				zap.String("kind", string(child)), zap.String("owner_guid", guid))
			continue
		}
		sub, err := ca.OpenChildren(ctx, child, element)
		if err != nil {
			return err
		}
		w.open[guid] = true
		err = w.drain(ctx, ca, child, sub)
		delete(w.open, guid)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) encode(v interface{}) error {
	if err := w.enc.Encode(v); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to encode export line")
	}
	w.lines++
	return nil
}

// childKind returns the kind of the collection owned by element, if any, and
// the element's GUID.
func childKind(element interface{}) (beans.Kind, string, bool) {
	switch e := element.(type) {
	case *beans.Comment:
		return beans.KindCommentReplies, e.GUID, true
	case *beans.NoteLog:
		return beans.KindNotes, e.GUID, true
	}
	return "", "", false
}
