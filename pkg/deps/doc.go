// Package deps assembles dependency graphs from registry metadata.
//
// # Overview
//
// [Assembler.Build] is the whole pipeline:
//
//  1. Fetch the package record through a [Fetcher] (normally [pypi.Client])
//  2. Check the requested depth against the number of declarations
//  3. Parse the first depth declarations with [python.ParseRequirement]
//  4. Lay the result out as a star-shaped [dag.DAG]: node 0 is the package,
//     nodes 1..depth are its dependencies in declaration order
//
// Only direct dependencies are graphed. Nothing is cached between builds.
//
// # Usage
//
//	client := pypi.NewClient(pypi.Options{})
//	a := deps.NewAssembler(client, deps.Options{Logger: logger})
//	g, err := a.Build(ctx, "pandas", 30)
//
// # Node Attributes
//
// Every node has "name" and "version" metadata. The root takes both from the
// registry record; dependency nodes take the declared name and the version
// text after the leading comparator ("requests>=2.0" gives version "2.0").
// Environment markers are dropped.
//
// # Unparseable Declarations
//
// [ParsePolicy] picks the behaviour explicitly. [PolicyStrict] fails the
// build; [PolicyPlaceholder] keeps a node named after the raw declaration
// with an empty version and the "unparsed" flag.
//
// [pypi.Client]: github.com/matzehuels/pydepgraph/pkg/integrations/pypi.Client
// [python.ParseRequirement]: github.com/matzehuels/pydepgraph/pkg/deps/python.ParseRequirement
// [dag.DAG]: github.com/matzehuels/pydepgraph/pkg/dag.DAG
package deps
