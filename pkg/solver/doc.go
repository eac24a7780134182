// Package solver drives a mesh toward mechanical equilibrium. An Engine
// receives change notifications from the mesh, keeps a bounded history of
// them, aggregates the energy and force contributions of every type-bound
// actor, and integrates vertex positions with overdamped forward-Euler
// steps.
package solver
