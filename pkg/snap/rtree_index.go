package snap

import (
	"github.com/dhconnelly/rtreego"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

// neighborCandidates bounds the refinement set pulled from the r-tree; exact
// distances and the stable order tie break are applied on top of it.
const neighborCandidates = 16

type nodeLeaf struct {
	cand candidate
	rect rtreego.Rect
}

func (l *nodeLeaf) Bounds() rtreego.Rect {
	return l.rect
}

type rtreeIndex struct {
	tree *rtreego.Rtree
	size int
}

func newRtreeIndex(candidates []candidate) *rtreeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, cand := range candidates {
		point := rtreego.Point{cand.loc.X, cand.loc.Y}
		tree.Insert(&nodeLeaf{cand: cand, rect: point.ToRect(0.5)})
	}
	return &rtreeIndex{tree: tree, size: len(candidates)}
}

func (idx *rtreeIndex) nearest(query datastructure.Point) datastructure.NodeMatch {
	k := neighborCandidates
	if k > idx.size {
		k = idx.size
	}

	neighbors := idx.tree.NearestNeighbors(k, rtreego.Point{query.X, query.Y})

	var best candidate
	bestDist := 0.0
	found := false
	for _, spatial := range neighbors {
		leaf, ok := spatial.(*nodeLeaf)
		if !ok || leaf == nil {
			continue
		}
		dist := query.EuclideanDistance(leaf.cand.loc)
		if !found || dist < bestDist ||
			(dist == bestDist && leaf.cand.order < best.order) {
			best = leaf.cand
			bestDist = dist
			found = true
		}
	}
	return datastructure.NewNodeMatch(best.nodeID, best.loc, bestDist)
}
