// Package graph maintains a planar graph of polyline arcs that share end
// nodes. The ArcGraph owns every arc and end node by id, snaps coincident
// end node positions together through an R-tree locator, and hands
// read-only scoped views to loop extraction.
package graph
