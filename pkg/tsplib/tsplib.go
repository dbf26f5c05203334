// Package tsplib serializes a distance graph into the TSPLIB text format so
// the result can be fed directly into off the shelf TSP solvers.
package tsplib

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tspgen/streetgraph/pkg/datastructure"
	"github.com/tspgen/streetgraph/pkg/util"
)

var (
	ErrEmptyGraph      = errors.New("tsplib export needs at least one node")
	ErrIncompleteGraph = errors.New("explicit weight export needs every ordered pair")
)

// Exporter writes TSPLIB instances. The zero value is not usable, build one
// with NewExporter.
type Exporter struct {
	name    string
	comment string
}

type Option func(*Exporter)

func WithComment(comment string) Option {
	return func(e *Exporter) {
		e.comment = comment
	}
}

func NewExporter(name string, opts ...Option) *Exporter {
	e := &Exporter{name: name}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteNodeCoords emits a EUC_2D instance from the projected planar node
// positions. Edge weights are ignored, a solver recomputes euclidean
// distances from the coordinates.
func (e *Exporter) WriteNodeCoords(w io.Writer, g *datastructure.DistanceGraph) error {
	if g.NumNodes() == 0 {
		return ErrEmptyGraph
	}

	var sb strings.Builder
	e.writeHeader(&sb, g.NumNodes(), "EUC_2D")
	sb.WriteString("NODE_COORD_SECTION\n")
	for i, node := range g.Nodes {
		// TSPLIB numbers nodes from 1
		fmt.Fprintf(&sb, "%d %.3f %.3f\n", i+1,
			util.RoundFloat(node.Loc.X, 3), util.RoundFloat(node.Loc.Y, 3))
	}
	sb.WriteString("EOF\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteExplicit emits an ATSP instance with the full directed weight matrix.
// Every ordered pair must carry an edge, a graph with omitted pairs cannot
// be expressed and is rejected.
func (e *Exporter) WriteExplicit(w io.Writer, g *datastructure.DistanceGraph) error {
	n := g.NumNodes()
	if n == 0 {
		return ErrEmptyGraph
	}

	var sb strings.Builder
	e.writeHeader(&sb, n, "EXPLICIT")
	sb.WriteString("EDGE_WEIGHT_FORMAT: FULL_MATRIX\n")
	sb.WriteString("EDGE_WEIGHT_SECTION\n")
	for i := 0; i < n; i++ {
		row := make([]string, n)
		for j := 0; j < n; j++ {
			if i == j {
				row[j] = "0"
				continue
			}
			weight, ok := g.Weight(i, j)
			if !ok {
				return fmt.Errorf("%w: no edge %d -> %d", ErrIncompleteGraph, i, j)
			}
			row[j] = fmt.Sprintf("%d", int64(math.Round(weight)))
		}
		sb.WriteString(strings.Join(row, " "))
		sb.WriteByte('\n')
	}
	sb.WriteString("EOF\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *Exporter) writeHeader(sb *strings.Builder, dimension int, weightType string) {
	fmt.Fprintf(sb, "NAME: %s\n", e.name)
	if e.comment != "" {
		fmt.Fprintf(sb, "COMMENT: %s\n", e.comment)
	}
	if weightType == "EXPLICIT" {
		sb.WriteString("TYPE: ATSP\n")
	} else {
		sb.WriteString("TYPE: TSP\n")
	}
	fmt.Fprintf(sb, "DIMENSION: %d\n", dimension)
	fmt.Fprintf(sb, "EDGE_WEIGHT_TYPE: %s\n", weightType)
}
