// Package actor implements pluggable geometric constraints contributing
// energy and force terms to the mesh solver. Actors are stateless with
// respect to any particular mesh, so one instance, parameterized by its
// tunable coefficients, may be bound to every surface or body of a type.
package actor
