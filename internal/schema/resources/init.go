// Package resources registers all resource definitions with the schema registry.
// Import this package to ensure every console tab's definition is registered.
package resources

// Each file in this package uses init() to register its resource types.
