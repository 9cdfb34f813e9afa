package callgraph

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// ToGraph converts a built call graph into a dominikbraun/graph directed
// graph keyed by function id, for downstream tooling that wants a generic
// graph structure. Only resolved call edges are materialized; ambiguous
// sites contribute one edge per candidate.
func (g *CallGraph) ToGraph() graph.Graph[string, string] {
	dg := graph.New(graph.StringHash, graph.Directed())

	for id, fn := range g.Functions {
		attrs := []func(*graph.VertexProperties){
			graph.VertexAttribute("label", fn.QualifiedName),
		}
		if g.IsEntryPoint(id) {
			attrs = append(attrs,
				graph.VertexAttribute("shape", "doubleoctagon"),
				graph.VertexAttribute("color", "blue"))
		} else if len(fn.DataAccess) > 0 {
			attrs = append(attrs,
				graph.VertexAttribute("shape", "cylinder"),
				graph.VertexAttribute("color", "red"))
		}
		_ = dg.AddVertex(id, attrs...)
	}

	for _, fn := range g.Functions {
		for _, site := range fn.Calls {
			if !site.Resolved {
				continue
			}
			for _, calleeID := range site.Candidates {
				// Duplicate edges (multiple call sites between the same
				// pair) are fine to drop for export purposes.
				_ = dg.AddEdge(fn.ID, calleeID,
					graph.EdgeAttribute("confidence", fmt.Sprintf("%.2f", site.Confidence)),
					graph.EdgeAttribute("reason", string(site.Reason)))
			}
		}
	}

	return dg
}

// WriteDOT serializes the call graph in Graphviz DOT format.
func (g *CallGraph) WriteDOT(w io.Writer) error {
	return draw.DOT(g.ToGraph(), w)
}
