// Package jwt manages session-token issuance and verification: an HMAC-signed
// token whose single claim is the encrypted identity payload, with expiry
// enforced from static configuration.
package jwt
