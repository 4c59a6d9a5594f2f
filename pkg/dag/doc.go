// Package dag provides the directed graph that holds a package and its
// direct dependencies.
//
// # Overview
//
// Nodes are identified by small integers. Node 0 ([RootID]) is the queried
// package; nodes 1..N are its first N declared dependencies, numbered in
// declaration order. Nodes are organized into rows: the root sits in row 0
// and its dependencies in row 1, and every edge must connect consecutive
// rows.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: 0, Row: 0, Meta: dag.Metadata{"name": "pandas", "version": "2.2.3"}})
//	g.AddNode(dag.Node{ID: 1, Row: 1, Meta: dag.Metadata{"name": "numpy", "version": "1.22.4"}})
//	g.AddEdge(dag.Edge{From: 0, To: 1})
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. [DAG.Validate] checks row adjacency and acyclicity.
//
// # Metadata
//
// Each node carries a [Metadata] map. Graphs built from the registry always
// set [MetaName] and [MetaVersion]; consumers such as the DOT renderer and
// the terminal viewer display every key they find.
//
// # Concurrency
//
// DAG instances are not safe for concurrent modification. A finished graph
// may be read from several goroutines.
package dag
