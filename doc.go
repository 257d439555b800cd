// Package sessionauth authenticates users and manages their active sessions
// for a multi-user backend: signed time-bound tokens carrying an encrypted
// identity claim, cross-checked against a live per-user session index in
// Redis that serves as the revocation mechanism.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// sessionauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserStore] capability interface, and value types ([Identity],
// [LoginResult], [AuthResult]). Token signing lives in the jwt sub-package,
// the session index in session, the deterministic payload cipher in cipher.
// Durable user records are an external collaborator behind [UserStore]; a
// PostgreSQL implementation ships in pgstore.
//
// # Token acceptance invariant
//
// A token is accepted iff its signature is valid, it has not expired, and it
// is present in the session index for its claimed user. Multiple
// simultaneously valid tokens per user are permitted (multi-device). Logout
// removes one token; a password change clears the whole index entry and
// reseeds it with the token that made the request.
package sessionauth
