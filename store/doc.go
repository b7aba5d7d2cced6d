// Package store ships optional implementations of the token and credentials
// provider contracts: an in-process store for tests and simple embeddings,
// and a bun-backed SQLite store for desktop applications that need the
// session to survive restarts. The client works with any implementation of
// the core provider interfaces; nothing here is required.
package store
