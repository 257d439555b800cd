// Package cipher implements the deterministic symmetric payload cipher used
// for identity claims and password digests: the same input under the same
// key always yields the same ciphertext.
//
// Determinism is load-bearing. Password digests are compared for equality
// against stored ciphertext, and the conditional password update in the
// credential store matches on the digest value. This also means the scheme
// is weaker than a salted one-way hash (equal passwords produce equal
// digests); it exists for compatibility with the stored data format, and the
// comparison helper is constant-time to avoid adding a timing channel on top.
//
// # What this package must NOT do
//
//   - Rotate or derive per-call keys (the key is fixed at construction).
//   - Emit randomized ciphertext (no per-message IV or nonce).
package cipher
