// Package io reads and writes edge documents in JSON.
//
// # JSON Format
//
// A document lists positioned nodes and the edges between them. Edges may
// reference nodes by id or carry their endpoints inline:
//
//	{
//	  "nodes": [
//	    {"id": "berlin", "x": 412.5, "y": 180},
//	    {"id": "paris",  "x": 300,   "y": 240}
//	  ],
//	  "edges": [
//	    {"from": "berlin", "to": "paris", "meta": {"type": "rail"}},
//	    {"source": {"x": 0, "y": 0}, "target": {"x": 10, "y": 5},
//	     "style": {"stroke": "#c0392b", "width": 2}}
//	  ]
//	}
//
// # Edge Fields
//
//   - from, to: node ids; both must exist in "nodes"
//   - source, target: inline endpoints, used when from/to are absent
//   - meta: freeform object handed to compatibility and style callbacks;
//     edges declared by id also get "from" and "to" entries unless meta
//     already sets them
//   - style: optional stroke, width and opacity for this edge
//
// Node positions come from an external layout. Use package dot to lay out
// a Graphviz graph instead.
package io
