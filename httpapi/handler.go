package httpapi

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/cdi-dev/sessionauth"
	"github.com/cdi-dev/sessionauth/middleware"
)

// UserDirectory is the CRUD surface the user routes need on top of the
// engine's credential store. pgstore.Store satisfies it.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (sessionauth.UserRecord, error)
	Create(ctx context.Context, in sessionauth.CreateUserInput) (sessionauth.UserRecord, error)
	List(ctx context.Context, page, size int) ([]sessionauth.UserRecord, error)
	Update(ctx context.Context, id string, in sessionauth.UpdateUserInput) error
	Delete(ctx context.Context, id string) error
}

// Handler serves the authentication and user-directory routes.
type Handler struct {
	engine *sessionauth.Engine
	users  UserDirectory
}

// NewHandler wires engine and users. users may be nil, in which case only the
// auth routes are registered.
func NewHandler(engine *sessionauth.Engine, users UserDirectory) *Handler {
	return &Handler{engine: engine, users: users}
}

// Routes returns the full route set mounted on a fresh mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	verify := middleware.Verify(h.engine)

	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.Handle("POST /user/change_password", verify(http.HandlerFunc(h.changePassword)))

	if h.users != nil {
		mux.HandleFunc("POST /user", h.createUser)
		mux.Handle("GET /users", verify(http.HandlerFunc(h.listUsers)))
		mux.Handle("GET /user/{id}", verify(http.HandlerFunc(h.getUser)))
		mux.Handle("PUT /user/{id}", verify(http.HandlerFunc(h.updateUser)))
		mux.Handle("DELETE /user/{id}", verify(http.HandlerFunc(h.deleteUser)))
	}
	return mux
}

/*==== AUTH ROUTES ====*/

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.engine.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set(middleware.HeaderToken, result.Token)
	respondData(w, http.StatusOK, result)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.engine.Logout(r.Context(), body.Token, body.User.ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "User successfully logged out")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	auth, ok := sessionauth.AuthResultFromContext(r.Context())
	if !ok {
		respondError(w, r, sessionauth.ErrUnauthorized)
		return
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.engine.ChangePassword(r.Context(), sessionauth.ChangePasswordInput{
		UserID:          auth.Identity.ID,
		Token:           auth.Token,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.ConfirmPassword,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "Password successfully updated")
}

/*==== USER ROUTES ====*/

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Fullname string `json:"fullname"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Email == "" || body.Password == "" {
		respondError(w, r, sessionauth.ErrIncompleteData)
		return
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		respondError(w, r, sessionauth.ErrInvalidEmail)
		return
	}

	digest, err := h.engine.PasswordDigest(body.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), sessionauth.CreateUserInput{
		Email:    body.Email,
		Password: digest,
		Fullname: body.Fullname,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 20)

	users, err := h.users.List(r.Context(), page, size)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(users) == 0 {
		respondError(w, r, sessionauth.ErrUserNotFound)
		return
	}
	respondData(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Fullname string `json:"fullname"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.users.Update(r.Context(), r.PathValue("id"), sessionauth.UpdateUserInput{
		Email:    body.Email,
		Fullname: body.Fullname,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "User successfully updated")
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "User successfully deleted")
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
