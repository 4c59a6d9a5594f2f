package deps

import (
	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/deps/python"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
)

// attributes returns the node attribute sets for nodes 0..depth. The caller
// has already checked depth against the declaration count.
func (a *Assembler) attributes(meta *pypi.PackageMetadata, depth int) ([]dag.Metadata, error) {
	attrs := make([]dag.Metadata, 0, depth+1)
	attrs = append(attrs, dag.Metadata{
		dag.MetaName:    meta.Name,
		dag.MetaVersion: meta.Version,
	})

	for i, raw := range meta.RequiresDist[:depth] {
		req, err := python.ParseRequirement(raw)
		if err != nil {
			if a.policy == PolicyStrict {
				return nil, err
			}
			a.logger.Warn("keeping unparseable declaration as placeholder", "node", i+1, "declaration", raw)
			attrs = append(attrs, dag.Metadata{
				dag.MetaName:    raw,
				dag.MetaVersion: "",
				MetaUnparsed:    true,
			})
			continue
		}
		attrs = append(attrs, dag.Metadata{
			dag.MetaName:    req.Name,
			dag.MetaVersion: req.Constraint,
		})
	}
	return attrs, nil
}

// assemble lays attrs out as a star: node 0 in row 0, nodes 1..n in row 1,
// one edge from the root to each dependency.
func assemble(meta *pypi.PackageMetadata, attrs []dag.Metadata) (*dag.DAG, error) {
	graphMeta := dag.Metadata{
		MetaPackage:   meta.Name,
		MetaVersion:   meta.Version,
		MetaDepth:     len(attrs) - 1,
		MetaAvailable: len(meta.RequiresDist),
	}
	if meta.Summary != "" {
		graphMeta[MetaSummary] = meta.Summary
	}
	if meta.License != "" {
		graphMeta[MetaLicense] = meta.License
	}

	g := dag.New(graphMeta)
	for id, m := range attrs {
		row := 1
		if id == dag.RootID {
			row = 0
		}
		if err := g.AddNode(dag.Node{ID: id, Row: row, Meta: m}); err != nil {
			return nil, err
		}
	}
	for id := 1; id < len(attrs); id++ {
		if err := g.AddEdge(dag.Edge{From: dag.RootID, To: id}); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
