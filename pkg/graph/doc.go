// Package graph defines the hinge hierarchy for carton assemblies.
// An assembly is a tree of named panel nodes. Each panel owns its layer
// and bevel geometry in panel-local coordinates and carries a transform
// relative to its parent. Folding mutates only the hinge rotations.
package graph
