// Package httpapi exposes the authenticator and a user directory over HTTP.
//
// Every response uses one envelope shape: {"success": bool} plus either a
// "data" payload or an "errors" array of {code, message, context}. Stable
// client codes (LOG_FAIL, NO_TOKEN, UNAUTH, ...) come from the root package's
// error table; infrastructure failures return a generic 500 and are never
// described to the client.
package httpapi
