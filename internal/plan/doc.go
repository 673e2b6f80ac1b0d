// Package plan turns a requested component set into an ordered,
// side-effect-free list of filesystem steps, and validates a plan against
// the live filesystem without mutating anything. Step ordering guarantees:
// a dependency's steps always precede its dependents', and directory
// creation for a root always precedes copies into that root.
package plan
