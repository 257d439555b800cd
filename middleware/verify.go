package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/cdi-dev/sessionauth"
)

// HeaderToken is the request header the session token is read from.
const HeaderToken = "x-access-token"

// Verify returns middleware that authenticates requests against engine. The
// wrapped handler runs only for tokens the engine accepts; the verified
// identity is available via sessionauth.AuthResultFromContext.
func Verify(engine *sessionauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := engine.VerifyToken(r.Context(), r.Header.Get(HeaderToken))
			if err != nil {
				respondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(sessionauth.WithAuthResult(r.Context(), result)))
		})
	}
}

type errorBody struct {
	Code    sessionauth.Code `json:"code"`
	Message string           `json:"message"`
	Context string           `json:"context,omitempty"`
}

type envelope struct {
	Success bool        `json:"success"`
	Errors  []errorBody `json:"errors,omitempty"`
}

func respondError(w http.ResponseWriter, err error) {
	info, ok := sessionauth.Describe(err)
	if !ok {
		// Infrastructure failure; never leak the cause.
		info = sessionauth.ErrorInfo{
			Code:       sessionauth.CodeUnauthorized,
			Message:    "Unauthorized access",
			Context:    "Failed to authenticate token.",
			HTTPStatus: http.StatusNotFound,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(info.HTTPStatus)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Errors:  []errorBody{{Code: info.Code, Message: info.Message, Context: info.Context}},
	})
}
