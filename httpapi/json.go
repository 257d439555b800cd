package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cdi-dev/sessionauth"
)

type errorBody struct {
	Code    sessionauth.Code `json:"code"`
	Message string           `json:"message"`
	Context string           `json:"context,omitempty"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    any         `json:"data,omitempty"`
	Errors  []errorBody `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondError translates err through the error table. Errors with no table
// entry are infrastructure failures: logged server-side, reported to the
// client as a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	info, ok := sessionauth.Describe(err)
	if !ok {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Errors:  []errorBody{{Code: "SERVER_ERROR", Message: "Internal server error"}},
		})
		return
	}
	writeJSON(w, info.HTTPStatus, envelope{
		Success: false,
		Errors:  []errorBody{{Code: info.Code, Message: info.Message, Context: info.Context}},
	})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return sessionauth.ErrIncompleteData
	}
	return nil
}
