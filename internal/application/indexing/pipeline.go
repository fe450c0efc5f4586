// Package indexing builds AI descriptions of uploaded files and keeps the
// vector index in sync with the metadata store. Everything here is
// best-effort: failures are logged and counted, never returned to the
// request that caused the work.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
)

// maxFetchBytes caps how much of a stored PDF is read for extraction.
const maxFetchBytes = 50 << 20

const (
	MetaFileID       = "file_id"
	MetaBucketFileID = "bucket_file_id"
	MetaContext      = "context"
)

type Result struct {
	Trace       []State
	Description string
	Err         error
}

func (r Result) State() State {
	if len(r.Trace) == 0 {
		return StateUploaded
	}
	return r.Trace[len(r.Trace)-1]
}

type Pipeline struct {
	logger     *zap.Logger
	objects    ports.ObjectStore
	extractor  ports.TextExtractor
	summarizer ports.ContentSummarizer
	embedder   ports.Embedder
	index      ports.VectorIndex
	mCounter   *prometheus.CounterVec
}

// NewPipeline wires the pipeline. summarizer may be nil, in which case every
// file gets the synthetic filename/type/size description.
func NewPipeline(
	logger *zap.Logger,
	objects ports.ObjectStore,
	extractor ports.TextExtractor,
	summarizer ports.ContentSummarizer,
	embedder ports.Embedder,
	index ports.VectorIndex,
	mCounter *prometheus.CounterVec,
) *Pipeline {
	return &Pipeline{
		logger:     logger,
		objects:    objects,
		extractor:  extractor,
		summarizer: summarizer,
		embedder:   embedder,
		index:      index,
		mCounter:   mCounter,
	}
}

// Index describes t and upserts it keyed by file id, replacing any previous
// entry for the same file.
func (p *Pipeline) Index(ctx context.Context, t Target) Result {
	res := Result{Trace: []State{StateUploaded}}
	step := func(s State) { res.Trace = append(res.Trace, s) }
	fail := func(err error) Result {
		step(StateIndexFailed)
		res.Err = fmt.Errorf("%w: %v", apperr.ErrIndexingDegraded, err)
		p.logger.Warn("indexing failed",
			zap.Stringer("file_id", t.FileID),
			zap.String("name", t.Name),
			zap.Strings("trace", traceStrings(res.Trace)),
			zap.Error(err),
		)
		p.mCounter.WithLabelValues("indexing_failed_total").Inc()
		return res
	}

	var embedText string
	switch {
	case p.summarizer != nil && file.IsPDF(t.Extension):
		step(StateExtracting)
		text, err := p.extract(ctx, t)
		if err != nil {
			return fail(err)
		}
		step(StateSummarizing)
		summary, err := p.summarizer.SummarizeText(ctx, text)
		if err != nil {
			return fail(err)
		}
		res.Description = fmt.Sprintf("Filename: %s | Type: PDF | Summary: %s", t.Name, summary)
		embedText = summary

	case p.summarizer != nil && t.Type == file.TypeImage:
		step(StateSummarizing)
		desc, err := p.summarizer.DescribeImage(ctx, t.URL)
		if err != nil {
			return fail(err)
		}
		res.Description = fmt.Sprintf("Filename: %s | Type: Image | Description: %s", t.Name, desc)
		embedText = desc

	default:
		res.Description = fallbackDescription(t)
		embedText = res.Description
	}

	step(StateEmbedding)
	vec, err := p.embedder.Embed(ctx, embedText)
	if err != nil {
		return fail(err)
	}

	md := map[string]string{
		MetaFileID:       t.FileID.String(),
		MetaBucketFileID: t.BucketFileID,
		MetaContext:      res.Description,
	}
	if err = p.index.Upsert(ctx, t.FileID.String(), vec, md); err != nil {
		return fail(err)
	}

	step(StateIndexed)
	p.mCounter.WithLabelValues("indexing_ok_total").Inc()
	p.logger.Info("file indexed",
		zap.Stringer("file_id", t.FileID),
		zap.Strings("trace", traceStrings(res.Trace)),
	)

	return res
}

// Remove drops the index entry of id. Errors are logged only.
func (p *Pipeline) Remove(ctx context.Context, id file.ID) {
	if err := p.index.Delete(ctx, id.String()); err != nil {
		p.logger.Warn("index entry removal failed",
			zap.Stringer("file_id", id),
			zap.Error(errors.Join(apperr.ErrIndexingDegraded, err)),
		)
		p.mCounter.WithLabelValues("indexing_failed_total").Inc()
	}
}

func (p *Pipeline) extract(ctx context.Context, t Target) (string, error) {
	rc, err := p.objects.Get(ctx, t.BucketFileID)
	if err != nil {
		return "", fmt.Errorf("fetch object: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}

	return p.extractor.ExtractText(ctx, data)
}

func fallbackDescription(t Target) string {
	return fmt.Sprintf("Filename: %s | Type: %s | Size: %d", t.Name, t.Type, t.Size)
}

func traceStrings(tr []State) []string {
	out := make([]string, len(tr))
	for i, s := range tr {
		out[i] = string(s)
	}
	return out
}
