// Package snap maps arbitrary geographic points onto the road network,
// either to the nearest node or onto the nearest edge geometry.
package snap

import (
	"errors"
	"math"
	"sync"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/geo"
	"github.com/tspgen/streetgraph/pkg/projection"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
)

var ErrNoCandidates = errors.New("no candidate node with valid coordinates in road graph")

type candidate struct {
	nodeID int32
	loc    datastructure.Point
	// position in the graph's stable node ordering, the tie breaker
	order int
}

// Resolver snaps query coordinates to the nearest road network node. One
// resolver is bound to one graph; the dense candidate array is built once,
// not per query.
type Resolver struct {
	graph     *roadgraph.Graph
	projector *projection.Projector

	candidates []candidate
	index      *rtreeIndex

	cacheEnabled bool
	mu           sync.RWMutex
	cache        map[datastructure.Coordinate]datastructure.NodeMatch
}

type Option func(*Resolver)

// WithoutCache disables the per coordinate result memo.
func WithoutCache() Option {
	return func(r *Resolver) {
		r.cacheEnabled = false
	}
}

// WithRtreeIndex replaces the brute force scan with an r-tree lookup. The
// tie break and invalid coordinate exclusion semantics stay identical.
func WithRtreeIndex() Option {
	return func(r *Resolver) {
		r.index = newRtreeIndex(r.candidates)
	}
}

func NewResolver(g *roadgraph.Graph, projector *projection.Projector, opts ...Option) *Resolver {
	r := &Resolver{
		graph:        g,
		projector:    projector,
		cacheEnabled: true,
		cache:        make(map[datastructure.Coordinate]datastructure.NodeMatch),
	}
	r.candidates = collectCandidates(g)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// collectCandidates densifies the snappable nodes, skipping any node whose
// coordinates are missing or non finite.
func collectCandidates(g *roadgraph.Graph) []candidate {
	nodes := g.Nodes()
	candidates := make([]candidate, 0, len(nodes))
	for order, node := range nodes {
		if !finite(node.Loc) {
			continue
		}
		candidates = append(candidates, candidate{nodeID: node.ID, loc: node.Loc, order: order})
	}
	return candidates
}

// ResolveBatch snaps every point, order preserving, one match per input.
// Cache hits are served first, only misses touch the candidate array.
func (r *Resolver) ResolveBatch(points []datastructure.Coordinate) ([]datastructure.NodeMatch, error) {
	if len(r.candidates) == 0 {
		return nil, ErrNoCandidates
	}

	matches := make([]datastructure.NodeMatch, len(points))
	missIdx := make([]int, 0, len(points))

	if r.cacheEnabled {
		r.mu.RLock()
		for i, p := range points {
			if match, ok := r.cache[p]; ok {
				matches[i] = match
			} else {
				missIdx = append(missIdx, i)
			}
		}
		r.mu.RUnlock()
	} else {
		for i := range points {
			missIdx = append(missIdx, i)
		}
	}

	if len(missIdx) == 0 {
		return matches, nil
	}

	missCoords := make([]datastructure.Coordinate, len(missIdx))
	for j, i := range missIdx {
		missCoords[j] = points[i]
	}
	queries, err := r.projector.ProjectBatch(missCoords)
	if err != nil {
		return nil, err
	}

	for j, i := range missIdx {
		matches[i] = r.nearest(queries[j])
	}

	if r.cacheEnabled {
		r.mu.Lock()
		for j, i := range missIdx {
			r.cache[missCoords[j]] = matches[i]
		}
		r.mu.Unlock()
	}
	return matches, nil
}

// Resolve is the single point convenience wrapper around ResolveBatch.
func (r *Resolver) Resolve(point datastructure.Coordinate) (datastructure.NodeMatch, error) {
	matches, err := r.ResolveBatch([]datastructure.Coordinate{point})
	if err != nil {
		return datastructure.NodeMatch{}, err
	}
	return matches[0], nil
}

// SnapDistanceMeters reports the great circle distance between a query and
// its matched node, for "where did my point land" output in ground meters
// rather than in the planar CRS.
func (r *Resolver) SnapDistanceMeters(query datastructure.Coordinate,
	match datastructure.NodeMatch) (float64, bool) {
	node, ok := r.graph.NodeByID(match.NodeID)
	if !ok {
		return 0, false
	}
	return geo.GreatCircleDistanceMeters(query, node.Coord), true
}

// CacheSize is exposed for observability and tests.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Resolver) nearest(query datastructure.Point) datastructure.NodeMatch {
	if r.index != nil {
		return r.index.nearest(query)
	}

	best := r.candidates[0]
	bestDist := query.EuclideanDistance(best.loc)
	for _, cand := range r.candidates[1:] {
		// strict less keeps the first candidate in stable node order
		// on exact ties
		if dist := query.EuclideanDistance(cand.loc); dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	return datastructure.NewNodeMatch(best.nodeID, best.loc, bestDist)
}

func finite(p datastructure.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
