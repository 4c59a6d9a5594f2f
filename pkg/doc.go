// Package pkg provides the libraries behind pydepgraph, which graphs the
// declared dependencies of a Python package.
//
// # Overview
//
// pydepgraph asks the Python Package Index for one package's metadata and
// builds a star-shaped directed graph: the package in the middle, an edge to
// each of the first N dependencies it declares. The pkg directory is
// organized as follows:
//
//  1. [integrations] - HTTP client shared by registry clients
//  2. [integrations/pypi] - PyPI JSON API client
//  3. [deps] - Graph assembly from registry metadata
//  4. [deps/python] - Parser for dependency declarations
//  5. [dag] - Graph structure with integer node IDs
//  6. [io] - JSON import and export
//  7. [render/nodelink] - Graphviz DOT and SVG output
//
// Supporting packages: [errors] (structured error codes), [observability]
// (hooks for HTTP and build events), [buildinfo] (version information).
//
// # Architecture
//
//	PyPI JSON API
//	     ↓
//	[integrations/pypi] (fetch name, version, requires_dist)
//	     ↓
//	[deps/python] (split each declaration into name and version)
//	     ↓
//	[deps] (assemble node 0 plus nodes 1..N)
//	     ↓
//	[dag]
//	     ↓
//	JSON / DOT / SVG / terminal
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/pydepgraph/pkg/deps"
//	    "github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
//	    "github.com/matzehuels/pydepgraph/pkg/render/nodelink"
//	)
//
//	client := pypi.NewClient(pypi.Options{})
//	g, err := deps.NewAssembler(client, deps.Options{}).Build(context.Background(), "pandas", 30)
//	if err != nil {
//	    // errors.GetCode(err) tells registry failures from bad input
//	}
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//
// [integrations]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/integrations
// [integrations/pypi]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/integrations/pypi
// [deps]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/deps
// [deps/python]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/deps/python
// [dag]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/dag
// [io]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pydepgraph/pkg/buildinfo
package pkg
