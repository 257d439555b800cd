// Package pgstore implements the credential store over PostgreSQL using pgx.
//
// The schema is a single users table keyed by a client-generated UUID, with
// a unique lowercase email and the deterministic password digest produced by
// the payload cipher. The pool is owned by the caller; the store never closes
// it.
package pgstore
