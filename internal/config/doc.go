// Package config loads and validates the TOML configuration file.
//
// Configuration covers filesystem layout, the semantic similarity
// provider endpoint, alignment tunables, correction safety limits,
// batch scanning, and logging. All path fields are expanded and
// normalized during load.
package config
