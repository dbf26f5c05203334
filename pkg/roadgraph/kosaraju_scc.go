package roadgraph

import (
	"github.com/tspgen/streetgraph/pkg/util"
)

// largestSCC runs Kosaraju over the directed graph and returns the node ids
// of the biggest strongly connected component. Iterative DFS, road networks
// easily exceed safe recursion depth.
func largestSCC(g *Graph) map[int32]struct{} {
	n := len(g.nodes)

	revAdj := make([][]int32, n)
	for _, edge := range g.edges {
		toIdx := g.nodeIdx[edge.To]
		revAdj[toIdx] = append(revAdj[toIdx], int32(g.nodeIdx[edge.From]))
	}

	// first pass: finish order on the forward graph
	order := make([]int32, 0, n)
	visited := make([]bool, n)
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		dfsForward(g, int32(start), visited, &order)
	}

	order = util.ReverseG(order)

	// second pass: collect components on the reversed graph
	visited = make([]bool, n)
	var largest []int32
	for _, v := range order {
		if visited[v] {
			continue
		}
		component := dfsReverse(revAdj, v, visited)
		if len(component) > len(largest) {
			largest = component
		}
	}

	scc := make(map[int32]struct{}, len(largest))
	for _, idx := range largest {
		scc[g.nodes[idx].ID] = struct{}{}
	}
	return scc
}

func dfsForward(g *Graph, start int32, visited []bool, order *[]int32) {
	type frame struct {
		node    int32
		edgePos int
	}
	stack := []frame{{node: start}}
	visited[start] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		outIDs := g.outEdges[top.node]
		advanced := false
		for top.edgePos < len(outIDs) {
			edge := g.edges[outIDs[top.edgePos]]
			top.edgePos++
			next := int32(g.nodeIdx[edge.To])
			if !visited[next] {
				visited[next] = true
				stack = append(stack, frame{node: next})
				advanced = true
				break
			}
		}
		if !advanced && top.edgePos >= len(outIDs) {
			*order = append(*order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
}

func dfsReverse(revAdj [][]int32, start int32, visited []bool) []int32 {
	component := make([]int32, 0)
	stack := []int32{start}
	visited[start] = true

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, v)

		for _, next := range revAdj[v] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return component
}
