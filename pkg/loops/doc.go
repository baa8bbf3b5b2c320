// Package loops turns a set of arcs into the closed loops they bound and
// ranks them into one outer boundary plus holes for polygon-with-holes
// meshing.
package loops
