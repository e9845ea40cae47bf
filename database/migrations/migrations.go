// Package migrations holds the schema migrations for the "database" visitor
// store. Each file registers itself from init(); cmd/bloomthread imports
// this package for its side effects.
package migrations
