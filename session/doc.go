// Package session provides the live session index: one Redis set per user
// holding that user's currently valid token strings. Membership in the set
// is the revocation mechanism, independent of and in addition to token
// expiry.
//
// # Architecture boundaries
//
// This package owns Redis operations on the index and nothing else. It does
// NOT interpret tokens, decrypt claims, or make acceptance decisions — those
// belong to the Engine.
//
// # What this package must NOT do
//
//   - Import sessionauth, jwt, or cipher (no upward imports).
//   - Store anything beyond opaque token strings.
package session
