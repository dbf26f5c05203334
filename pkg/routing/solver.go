// Package routing computes least-cost paths between road network nodes,
// restricted to the graph's largest strongly connected component.
package routing

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slog"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/roadgraph"
	"github.com/tspgen/streetgraph/pkg/util"
)

var (
	ErrUnknownNode  = errors.New("node not present in road graph")
	ErrNotReachable = errors.New("node outside the largest strongly connected component")
)

// Solver runs A* over the directed edges weighted by length in meters. The
// heuristic is the straight line distance to the target in the shared planar
// CRS, admissible and consistent because no road is shorter than the crow
// flies; with the heuristic off this is plain Dijkstra.
type Solver struct {
	graph        *roadgraph.Graph
	useHeuristic bool
}

type Option func(*Solver)

// WithoutHeuristic turns the search into Dijkstra, useful when node planar
// coordinates are not trusted.
func WithoutHeuristic() Option {
	return func(s *Solver) {
		s.useHeuristic = false
	}
}

func NewSolver(g *roadgraph.Graph, opts ...Option) *Solver {
	s := &Solver{graph: g, useHeuristic: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindPath returns the least-cost node sequence from src to dst inclusive.
// Both endpoints must be inside the largest SCC, otherwise ErrNotReachable
// before any search. A search that exhausts the frontier anyway yields an
// infinite-cost empty result, not an error, so one dead pair cannot abort a
// whole batch.
func (s *Solver) FindPath(src, dst int32) (datastructure.PathResult, error) {
	if _, ok := s.graph.NodeByID(src); !ok {
		return datastructure.PathResult{}, fmt.Errorf("%w: %d", ErrUnknownNode, src)
	}
	dstNode, ok := s.graph.NodeByID(dst)
	if !ok {
		return datastructure.PathResult{}, fmt.Errorf("%w: %d", ErrUnknownNode, dst)
	}
	if !s.graph.InLargestSCC(src) {
		return datastructure.PathResult{}, fmt.Errorf("%w: %d", ErrNotReachable, src)
	}
	if !s.graph.InLargestSCC(dst) {
		return datastructure.PathResult{}, fmt.Errorf("%w: %d", ErrNotReachable, dst)
	}

	if src == dst {
		return datastructure.NewPathResult([]int32{src}, 0), nil
	}

	pq := datastructure.NewMinHeap[int32]()
	pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: 0, Item: src})

	costSoFar := make(map[int32]float64)
	costSoFar[src] = 0.0

	cameFrom := make(map[int32]int32)
	visited := make(map[int32]struct{})

	for pq.Size() > 0 {
		current, err := pq.ExtractMin()
		if err != nil {
			break
		}

		if current.Item == dst {
			return datastructure.NewPathResult(s.reconstructPath(cameFrom, src, dst),
				costSoFar[dst]), nil
		}
		visited[current.Item] = struct{}{}

		for _, edgeID := range s.graph.GetOutEdgeIDs(current.Item) {
			edge := s.graph.GetEdge(edgeID)
			if _, ok := visited[edge.To]; ok {
				continue
			}

			newCost := costSoFar[current.Item] + edge.Length

			oldCost, seen := costSoFar[edge.To]
			if !seen {
				costSoFar[edge.To] = newCost
				cameFrom[edge.To] = current.Item
				pq.Insert(datastructure.PriorityQueueNode[int32]{
					Rank: newCost + s.estimate(edge.To, dstNode),
					Item: edge.To,
				})
			} else if newCost < oldCost {
				costSoFar[edge.To] = newCost
				cameFrom[edge.To] = current.Item
				node := datastructure.PriorityQueueNode[int32]{
					Rank: newCost + s.estimate(edge.To, dstNode),
					Item: edge.To,
				}
				if pq.Contains(edge.To) {
					if err := pq.DecreaseKey(node); err != nil {
						pq.Insert(node)
					}
				} else {
					pq.Insert(node)
				}
			}
		}
	}

	slog.Warn("frontier exhausted inside largest SCC", "src", src, "dst", dst)
	return datastructure.NoPathResult(), nil
}

func (s *Solver) estimate(nodeID int32, target roadgraph.Node) float64 {
	if !s.useHeuristic {
		return 0
	}
	node, ok := s.graph.NodeByID(nodeID)
	if !ok {
		return 0
	}
	// nodes kept without a projected location get no estimate; a NaN rank
	// would strand them in the frontier
	dist := node.Loc.EuclideanDistance(target.Loc)
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return 0
	}
	return dist
}

func (s *Solver) reconstructPath(cameFrom map[int32]int32, src, dst int32) []int32 {
	path := make([]int32, 0)
	curr := dst
	for curr != src {
		path = append(path, curr)
		curr = cameFrom[curr]
	}
	path = append(path, src)
	return util.ReverseG(path)
}
