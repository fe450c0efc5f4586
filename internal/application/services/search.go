package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cloudy/internal/application/policy"
	"cloudy/internal/application/ports"
	"cloudy/internal/application/querybuilder"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/user"
)

const (
	DefaultSearchTopK     = 5
	DefaultSearchMinScore = 0.75
)

type SearchService struct {
	logger   *zap.Logger
	files    ports.FileService
	embedder ports.Embedder
	index    ports.VectorIndex
	mCounter *prometheus.CounterVec
	topK     int
	minScore float64
}

func NewSearchService(
	logger *zap.Logger,
	files ports.FileService,
	embedder ports.Embedder,
	index ports.VectorIndex,
	mCounter *prometheus.CounterVec,
	topK int,
	minScore float64,
) ports.SearchService {
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	return &SearchService{
		logger:   logger,
		files:    files,
		embedder: embedder,
		index:    index,
		mCounter: mCounter,
		topK:     topK,
		minScore: minScore,
	}
}

// Search merges name matches with semantic matches. Name matches come first;
// semantic hits follow in similarity order, minus files already listed.
// A failing branch only empties its own half of the result.
func (ss *SearchService) Search(ctx context.Context, requester *user.User, q string) (file.Files, error) {
	if requester == nil {
		return nil, apperr.ErrUnauthorized
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return file.Files{}, nil
	}
	ss.mCounter.WithLabelValues("search_requests_total").Inc()

	var (
		exact  file.Files
		ranked []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if exact, err = ss.exact(gctx, requester, q); err != nil {
			ss.logger.Warn("name search failed", zap.String("query", q), zap.Error(err))
			exact = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ranked, err = ss.semantic(gctx, q); err != nil {
			ss.logger.Warn("semantic search failed", zap.String("query", q), zap.Error(err))
			ranked = nil
		}
		return nil
	})
	_ = g.Wait()

	out := make(file.Files, 0, len(exact)+len(ranked))
	seen := make(map[file.ID]struct{}, len(exact)+len(ranked))
	for _, f := range exact {
		if _, ok := seen[f.ID]; ok {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f)
	}

	rest := make([]file.ID, 0, len(ranked))
	for _, id := range ranked {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rest = append(rest, id)
	}
	if len(rest) == 0 {
		return out, nil
	}

	resolved, err := ss.resolve(ctx, requester, rest)
	if err != nil {
		ss.logger.Warn("semantic hits lookup failed", zap.Int("hits", len(rest)), zap.Error(err))
		return out, nil
	}

	return append(out, resolved...), nil
}

func (ss *SearchService) exact(ctx context.Context, requester *user.User, q string) (file.Files, error) {
	spec, err := querybuilder.Build(requester, nil, q, "", 0)
	if err != nil {
		return nil, err
	}
	return ss.files.List(ctx, requester, spec)
}

// semantic returns file ids above the score threshold in rank order.
func (ss *SearchService) semantic(ctx context.Context, q string) ([]uuid.UUID, error) {
	vec, err := ss.embedder.Embed(ctx, q)
	if err != nil {
		return nil, err
	}

	matches, err := ss.index.Query(ctx, vec, ss.topK)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		if m.Score <= ss.minScore {
			continue
		}
		id, err := uuid.Parse(m.ID)
		if err != nil {
			ss.logger.Warn("vector index returned a foreign id", zap.String("id", m.ID))
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// resolve loads full records for ids the requester can see and restores the
// order of ids, which the metadata store does not keep.
func (ss *SearchService) resolve(ctx context.Context, requester *user.User, ids []file.ID) (file.Files, error) {
	vals := make([]string, len(ids))
	rank := make(map[file.ID]int, len(ids))
	for i, id := range ids {
		vals[i] = id.String()
		rank[id] = i
	}

	fls, err := ss.files.List(ctx, requester, query.Spec{
		Filter: []query.Expr{policy.Visibility(requester), query.In(query.FieldID, vals...)},
		Sort:   query.DefaultSort,
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(fls, func(a, b *file.File) int {
		return rank[a.ID] - rank[b.ID]
	})

	return fls, nil
}
