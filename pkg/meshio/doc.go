// Package meshio persists meshes and constraint actors through a generic
// structured element tree with a JSON wire form. Restoring a snapshot
// rebuilds the full object hierarchy through an injected particle store;
// identifiers are reassigned, relations and positions are preserved.
package meshio
