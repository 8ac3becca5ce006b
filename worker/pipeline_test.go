package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/ingrain/ai"
	"github.com/poiesic/ingrain/ai/mock"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/extract"
	"github.com/poiesic/ingrain/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor returns canned text per filename.
type fakeExtractor struct {
	texts map[string]string // path base -> text
	errs  map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (extract.Result, error) {
	base := path[strings.LastIndexByte(path, '/')+1:]
	if err, ok := f.errs[base]; ok {
		return extract.Result{}, err
	}
	text, ok := f.texts[base]
	if !ok {
		return extract.Result{}, fmt.Errorf("no stub for %q", base)
	}
	return extract.Result{Text: text, Pages: 1, Method: "plain-text"}, nil
}

// captureIndex records everything upserted.
type captureIndex struct {
	records []vector.Record
	err     error
}

func (c *captureIndex) Upsert(ctx context.Context, records []vector.Record) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, records...)
	return nil
}

func (c *captureIndex) Query(ctx context.Context, vec []float32, topK int, filter vector.Filter) ([]vector.Match, error) {
	return nil, nil
}

func (c *captureIndex) Close() error { return nil }

// ctxExtractor honors cancellation the way an exec-backed extractor does.
type ctxExtractor struct {
	text string
}

func (c *ctxExtractor) Extract(ctx context.Context, path string) (extract.Result, error) {
	if err := ctx.Err(); err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: c.text, Pages: 1, Method: "plain-text"}, nil
}

func newTestPipeline(t *testing.T, ex Extractor, embedder ai.Embedder, index vector.Index, opts ...PipelineOption) *Pipeline {
	t.Helper()
	up, err := vector.NewUpserter(index)
	require.NoError(t, err)
	p, err := NewPipeline(ex, embedder, up, "/data", opts...)
	require.NoError(t, err)
	return p
}

func TestPipelineRequiresDependencies(t *testing.T) {
	up, err := vector.NewUpserter(&captureIndex{})
	require.NoError(t, err)

	_, err = NewPipeline(nil, mock.NewMockEmbedder(), up, "/data")
	assert.ErrorIs(t, err, ErrExtractorRequired)

	_, err = NewPipeline(&fakeExtractor{}, nil, up, "/data")
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(&fakeExtractor{}, mock.NewMockEmbedder(), nil, "/data")
	assert.ErrorIs(t, err, ErrUpserterRequired)
}

func TestPipelineProcessSingleFile(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.txt": strings.Repeat("x", 1700)}}
	index := &captureIndex{}
	p := newTestPipeline(t, ex, mock.NewMockEmbedder(), index)

	job := core.NewJob("Docs", []string{"a.txt"})
	result, err := p.Process(context.Background(), job)
	require.NoError(t, err)

	// 1700 chars at 800/window → 3 chunks.
	assert.Equal(t, 3, result.ChunkCount)
	assert.Equal(t, []string{"a.txt"}, result.ProcessedFiles)
	assert.Empty(t, result.SkippedFiles)
	require.Len(t, index.records, 3)

	// Deterministic IDs and metadata shape.
	assert.Equal(t, core.ChunkID("Docs", "a.txt", 0), index.records[0].ID)
	assert.Equal(t, "a.txt", index.records[0].Metadata.Source)
	assert.Equal(t, "Docs", index.records[0].Metadata.Collection)
	assert.Equal(t, 2, index.records[2].Metadata.Page)
}

func TestPipelineSkipsUnsupportedFiles(t *testing.T) {
	ex := &fakeExtractor{
		texts: map[string]string{"good.txt": "some content"},
		errs:  map[string]error{"bad.zip": extract.ErrUnsupportedFormat},
	}
	index := &captureIndex{}
	p := newTestPipeline(t, ex, mock.NewMockEmbedder(), index)

	job := core.NewJob("Docs", []string{"bad.zip", "good.txt"})
	result, err := p.Process(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, []string{"bad.zip"}, result.SkippedFiles)
	assert.Equal(t, []string{"good.txt"}, result.ProcessedFiles)
	assert.Equal(t, 1, result.ChunkCount)
}

func TestPipelineSkipsEmptyExtraction(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"blank.txt": "   \n\t "}}
	index := &captureIndex{}
	p := newTestPipeline(t, ex, mock.NewMockEmbedder(), index)

	job := core.NewJob("Docs", []string{"blank.txt"})
	result, err := p.Process(context.Background(), job)
	require.NoError(t, err)

	// Nothing extractable still completes, with an empty result.
	assert.Zero(t, result.ChunkCount)
	assert.Equal(t, []string{"blank.txt"}, result.SkippedFiles)
	assert.Empty(t, index.records)
}

func TestPipelineExtractionTimeoutIsFatal(t *testing.T) {
	ex := &fakeExtractor{
		texts: map[string]string{"fast.txt": "content"},
		errs:  map[string]error{"slow.pdf": fmt.Errorf("pdftotext: %w", context.DeadlineExceeded)},
	}
	index := &captureIndex{}
	p := newTestPipeline(t, ex, mock.NewMockEmbedder(), index)

	// A timed-out extraction must fail the job, not quietly skip the file.
	job := core.NewJob("Docs", []string{"slow.pdf", "fast.txt"})
	_, err := p.Process(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, index.records)
}

func TestPipelineCancellationIsFatal(t *testing.T) {
	index := &captureIndex{}
	p := newTestPipeline(t, &ctxExtractor{text: "content"}, mock.NewMockEmbedder(), index)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := core.NewJob("Docs", []string{"a.txt", "b.txt"})
	_, err := p.Process(ctx, job)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, index.records)
}

func TestPipelineProviderFailureIsFatal(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{
		"a.txt": "content a",
		"b.txt": "content b",
	}}
	index := &captureIndex{}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, ai.ErrProviderUnavailable
	}
	p := newTestPipeline(t, ex, embedder, index)

	job := core.NewJob("Docs", []string{"a.txt", "b.txt"})
	_, err := p.Process(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)

	// No partial vectors on failure.
	assert.Empty(t, index.records)
}

func TestPipelineProviderFailureMidJobLeavesNoVectors(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{
		"a.txt": "content a",
		"b.txt": "content b",
	}}
	index := &captureIndex{}
	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 2 {
			return nil, ai.ErrProviderUnavailable
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1}
		}
		return out, nil
	}
	p := newTestPipeline(t, ex, embedder, index)

	job := core.NewJob("Docs", []string{"a.txt", "b.txt"})
	_, err := p.Process(context.Background(), job)
	require.Error(t, err)

	// The first file embedded fine, but nothing reached the index.
	assert.Empty(t, index.records)
}

func TestPipelineUpsertFailureIsFatal(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.txt": "content"}}
	index := &captureIndex{err: vector.ErrIndexUnavailable}
	p := newTestPipeline(t, ex, mock.NewMockEmbedder(), index)

	job := core.NewJob("Docs", []string{"a.txt"})
	_, err := p.Process(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vector.ErrIndexUnavailable))
}
