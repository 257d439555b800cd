// Package middleware provides net/http middleware that gates handlers behind
// token verification. Tokens travel in the x-access-token request header; a
// missing token is rejected with 403 and NO_TOKEN, any other verification
// failure with 404 and UNAUTH. On success the decrypted identity is attached
// to the request context for the wrapped handler.
package middleware
