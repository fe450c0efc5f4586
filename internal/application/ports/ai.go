package ports

import "context"

// ContentSummarizer is the large-model capability used by indexing.
type ContentSummarizer interface {
	SummarizeText(ctx context.Context, text string) (string, error)
	DescribeImage(ctx context.Context, url string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
