// Package mock provides a deterministic in-memory ai.Embedder for tests.
// Vectors are derived from an FNV hash of the input so the same text always
// embeds to the same vector, without any network dependency.
package mock
