// Package mesh implements a mutable polygonal-mesh engine for deformable
// biological structures. Cells and tissues are represented as a hierarchy
// of geometric objects (vertices, bounding surfaces, enclosed bodies, and
// structure aggregates) owned by a Mesh with id-recycling inventories.
// The Mesh supports live topological editing (splitting, merging,
// extruding, sewing) and reports structural changes to an attached Solver.
package mesh
