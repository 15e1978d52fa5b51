// Package embedder talks to the semantic similarity service.
//
// The service hosts a sentence-embedding model loaded once at process
// start and exposes a single similarity endpoint: given two string lists
// it returns the full cosine-similarity matrix between their normalized
// vector representations. The client is synchronous, honors context
// cancellation, and never retries; retry policy belongs to callers.
package embedder
