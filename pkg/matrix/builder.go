// Package matrix orchestrates snapping, path search and caching into the
// complete weighted directed distance graph over a set of points of
// interest.
package matrix

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"

	"github.com/tspgen/streetgraph/pkg/concurrent"
	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/projection"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
	"github.com/tspgen/streetgraph/pkg/routing"
	"github.com/tspgen/streetgraph/pkg/snap"
)

var ErrValidation = errors.New("invalid distance matrix request")

const (
	defaultWorkers   = 8
	defaultChunkSize = 256
)

// BuildRequest is the caller facing input. Labels may be left empty, every
// point is then labeled "Point N" the way the original tooling did.
type BuildRequest struct {
	Points []datastructure.Coordinate `validate:"required,min=1"`
	Labels []string
}

// Stats reports per build observability counts. Per pair failures never
// abort a build, they surface here instead.
type Stats struct {
	ResolvedPoints   int
	Pairs            int
	CacheHits        int
	CacheMisses      int
	UnreachablePairs int
	NoPathPairs      int
}

type Builder struct {
	graph     *roadgraph.Graph
	projector *projection.Projector
	resolver  *snap.Resolver
	solver    *routing.Solver
	cache     *routing.PathCache
	validate  *validator.Validate
	metrics   *builderMetrics

	workers   int
	chunkSize int
}

type Option func(*Builder)

func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithChunkSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// WithoutPathCache turns off shortest path memoization.
func WithoutPathCache() Option {
	return func(b *Builder) {
		b.cache = routing.NewPathCache(false)
	}
}

// WithResolver swaps the default brute force resolver, e.g. for one with the
// r-tree index enabled.
func WithResolver(r *snap.Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

func WithSolver(s *routing.Solver) Option {
	return func(b *Builder) {
		b.solver = s
	}
}

// WithRegisterer registers the builder's counters with a Prometheus
// registry. Without it the counters still count, just unregistered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(b *Builder) {
		b.metrics = newBuilderMetrics(reg)
	}
}

func NewBuilder(g *roadgraph.Graph, projector *projection.Projector, opts ...Option) *Builder {
	b := &Builder{
		graph:     g,
		projector: projector,
		cache:     routing.NewPathCache(true),
		validate:  validator.New(),
		workers:   defaultWorkers,
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.resolver == nil {
		b.resolver = snap.NewResolver(g, projector)
	}
	if b.solver == nil {
		b.solver = routing.NewSolver(g)
	}
	if b.metrics == nil {
		b.metrics = newBuilderMetrics(nil)
	}
	return b
}

type pairOutcome struct {
	param        concurrent.SolvePairParam
	result       datastructure.PathResult
	notReachable bool
}

// Build produces the distance graph over the request points. Precondition
// failures abort immediately; unreachable pairs are recorded as omitted
// edges and counted, never invented as a euclidean fallback.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*datastructure.DistanceGraph, Stats, error) {
	stats := Stats{}

	labels, err := b.validateRequest(req)
	if err != nil {
		return nil, stats, err
	}

	matches, err := b.resolver.ResolveBatch(req.Points)
	if err != nil {
		return nil, stats, err
	}
	stats.ResolvedPoints = len(matches)

	locs, err := b.projector.ProjectBatch(req.Points)
	if err != nil {
		return nil, stats, err
	}

	nodes := make([]datastructure.DistanceNode, len(req.Points))
	for i := range req.Points {
		nodes[i] = datastructure.NewDistanceNode(labels[i], req.Points[i], locs[i])
	}
	graph := datastructure.NewDistanceGraph(nodes)

	pairs := orderedPairs(matches)
	stats.Pairs = len(pairs)
	outcomes := make([]pairOutcome, len(pairs))

	for start := 0; start < len(pairs); start += b.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("distance matrix build cancelled: %w", err)
		}

		end := start + b.chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		b.processChunk(pairs[start:end], outcomes, &stats)
		slog.Info("distance matrix progress", "pairs_done", end, "pairs_total", len(pairs))
	}

	for _, outcome := range outcomes {
		if outcome.notReachable || !outcome.result.Reachable() {
			continue
		}
		if err := graph.AddEdge(outcome.param.FromIdx, outcome.param.ToIdx,
			outcome.result.Cost, outcome.result.Nodes); err != nil {
			return nil, stats, err
		}
	}

	b.metrics.pairsTotal.Add(float64(stats.Pairs))
	b.metrics.cacheHits.Add(float64(stats.CacheHits))
	b.metrics.cacheMisses.Add(float64(stats.CacheMisses))
	b.metrics.unreachablePairs.Add(float64(stats.UnreachablePairs))
	b.metrics.noPathPairs.Add(float64(stats.NoPathPairs))

	return graph, stats, nil
}

func (b *Builder) validateRequest(req BuildRequest) ([]string, error) {
	if err := b.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(req.Labels) == 0 {
		labels := make([]string, len(req.Points))
		for i := range labels {
			labels[i] = fmt.Sprintf("Point %d", i+1)
		}
		return labels, nil
	}
	if len(req.Labels) != len(req.Points) {
		return nil, fmt.Errorf("%w: %d labels for %d points", ErrValidation,
			len(req.Labels), len(req.Points))
	}
	return req.Labels, nil
}

// orderedPairs lists every (i, j), i != j, in lexicographic order. The
// outcome slot per pair makes the final edge set independent of worker
// scheduling.
func orderedPairs(matches []datastructure.NodeMatch) []concurrent.SolvePairParam {
	pairs := make([]concurrent.SolvePairParam, 0, len(matches)*(len(matches)-1))
	for i := range matches {
		for j := range matches {
			if i == j {
				continue
			}
			pairs = append(pairs, concurrent.NewSolvePairParam(len(pairs), i, j,
				matches[i].NodeID, matches[j].NodeID))
		}
	}
	return pairs
}

func (b *Builder) processChunk(chunk []concurrent.SolvePairParam,
	outcomes []pairOutcome, stats *Stats) {
	jobs := make([]concurrent.SolvePairParam, 0, len(chunk))
	for _, param := range chunk {
		if result, ok := b.cache.Get(param.SrcNodeID, param.DstNodeID); ok {
			stats.CacheHits++
			if !result.Reachable() {
				stats.NoPathPairs++
			}
			outcomes[param.PairID] = pairOutcome{param: param, result: result}
			continue
		}
		stats.CacheMisses++
		jobs = append(jobs, param)
	}
	if len(jobs) == 0 {
		return
	}

	workers := concurrent.NewWorkerPool[concurrent.SolvePairParam, pairOutcome](
		b.workers, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()
	workers.Start(b.solvePair)
	workers.Wait()

	for outcome := range workers.CollectResults() {
		outcomes[outcome.param.PairID] = outcome
		if outcome.notReachable {
			stats.UnreachablePairs++
			continue
		}
		if !outcome.result.Reachable() {
			stats.NoPathPairs++
		}
		b.cache.Put(outcome.param.SrcNodeID, outcome.param.DstNodeID, outcome.result)
	}
}

func (b *Builder) solvePair(param concurrent.SolvePairParam) pairOutcome {
	result, err := b.solver.FindPath(param.SrcNodeID, param.DstNodeID)
	if err != nil {
		// endpoint outside the largest SCC, reportable but never fatal
		// for the batch
		slog.Warn("pair endpoint not reachable", "src", param.SrcNodeID,
			"dst", param.DstNodeID, "err", err)
		return pairOutcome{param: param, notReachable: true}
	}
	return pairOutcome{param: param, result: result}
}
