// Package io provides JSON import and export for dependency graphs.
//
// # JSON Format
//
//	{
//	  "meta": {"package": "pandas", "version": "2.2.3", "depth": 2, "available": 5},
//	  "nodes": [
//	    {"id": 0, "meta": {"name": "pandas", "version": "2.2.3"}},
//	    {"id": 1, "row": 1, "meta": {"name": "numpy", "version": "1.22.4"}},
//	    {"id": 2, "row": 1, "meta": {"name": "pytz", "version": "2020.1"}}
//	  ],
//	  "edges": [
//	    {"from": 0, "to": 1},
//	    {"from": 0, "to": 2}
//	  ]
//	}
//
// "row" is omitted when it is 0. "meta" carries the node attributes shown to
// users; graph-level "meta" describes the query that produced the graph.
//
// This is the format the HTTP API serves and "pydepgraph graph -f json"
// prints, so external visualization tools can consume it directly.
package io
