// Package core contains the canonical client contracts, entities, and error
// taxonomy. Higher-level packages (requester, auth, resources) depend on this
// package; core must not depend on transport or storage adapters.
package core
