package sessionauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cdi-dev/sessionauth/cipher"
	"github.com/cdi-dev/sessionauth/jwt"
	"github.com/cdi-dev/sessionauth/session"
)

// Engine is the session authenticator. It orchestrates login, logout, token
// verification, and password change over the payload cipher, the token
// manager, the session index, and the external credential store.
//
// All configuration is fixed at Build time; Engine holds no per-request
// mutable state and is safe for concurrent use.
type Engine struct {
	config     Config
	cipher     *cipher.Cipher
	jwtManager *jwt.Manager
	sessions   *session.Index
	users      UserStore
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close flushes the audit dispatcher. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events dropped due to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, email string, cause error, meta map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
		Metadata:  meta,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

// Login authenticates email+password against the credential store, issues a
// session token over the encrypted identity, and registers it in the session
// index. The index insert completes before Login returns; a token is never
// handed out without being live.
//
// Unknown email and wrong password both fail with the LOG_FAIL client code
// (distinct sentinels, identical code). The raw password is never logged or
// returned.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.users == nil || e.cipher == nil || e.jwtManager == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is missing", ErrIncompleteData)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is missing", ErrIncompleteData)
	}

	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrInvalidUsername, nil)
			return nil, ErrInvalidUsername
		}
		e.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, nil)
		return nil, err
	}

	if !cipher.Equal(e.cipher.Encrypt(password), user.Password) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, email, ErrIncorrectPassword, nil)
		return nil, ErrIncorrectPassword
	}

	identity := Identity{ID: user.ID, Email: user.Email}
	claim, err := e.cipher.EncryptJSON(identity)
	if err != nil {
		return nil, err
	}

	token, err := e.jwtManager.Issue(claim)
	if err != nil {
		return nil, err
	}

	if err := e.sessions.Add(ctx, user.ID, token); err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, email, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, email, nil, nil)

	return &LoginResult{
		ID:    user.ID,
		Email: user.Email,
		Token: token,
	}, nil
}

// Logout removes token from the user's session index entry. Removing a token
// that is not there is a no-op and still succeeds, so Logout is idempotent.
func (e *Engine) Logout(ctx context.Context, token, userID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return ErrNoToken
	}

	if err := e.sessions.Remove(ctx, userID, token); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, "", nil, nil)
	return nil
}

// VerifyToken runs the acceptance pipeline: signature and expiry, claim
// decryption, then a single session-index membership lookup. Every failure
// after the missing-token check collapses into ErrUnauthorized — including
// index lookup errors, which are treated identically to "not a member".
func (e *Engine) VerifyToken(ctx context.Context, token string) (*AuthResult, error) {
	if e == nil || e.cipher == nil || e.jwtManager == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if token == "" {
		e.metricInc(MetricVerifyNoToken)
		return nil, ErrNoToken
	}

	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil, e.rejectToken(ctx, "", err)
	}

	var identity Identity
	if err := e.cipher.DecryptJSON(claims.User, &identity); err != nil {
		return nil, e.rejectToken(ctx, "", err)
	}

	ok, err := e.sessions.IsMember(ctx, identity.ID, token)
	if err != nil || !ok {
		return nil, e.rejectToken(ctx, identity.ID, err)
	}

	e.metricInc(MetricVerifyAccepted)
	return &AuthResult{Identity: identity, Token: token}, nil
}

func (e *Engine) rejectToken(ctx context.Context, userID string, cause error) error {
	e.metricInc(MetricVerifyRejected)
	e.emitAudit(ctx, auditEventTokenRejected, false, userID, "", cause, nil)
	return ErrUnauthorized
}

// ChangePassword validates the input, performs one atomic conditional digest
// update on the credential store, and on success clears the user's session
// index entry and reseeds it with the token that made this request — every
// other active session is revoked, the caller's survives.
//
// The single conditional update is deliberate: a separate read-then-write
// would race with a concurrent change for the same user.
func (e *Engine) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if e == nil || e.users == nil || e.cipher == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if field, ok := missingPasswordChangeField(in); !ok {
		return fmt.Errorf("%w: %s is missing", ErrIncompleteData, field)
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.NewPassword {
		e.metricInc(MetricPasswordChangeFailure)
		return ErrPasswordMismatch
	}

	currentDigest := e.cipher.Encrypt(in.CurrentPassword)
	newDigest := e.cipher.Encrypt(in.NewPassword)

	matched, err := e.users.UpdatePassword(ctx, in.UserID, currentDigest, newDigest)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.UserID, "", err, nil)
		return err
	}
	if !matched {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.UserID, "", ErrPasswordNotMatched, nil)
		return ErrPasswordNotMatched
	}

	// Revoke every other session, keep the caller's. Must complete before a
	// success response is emitted.
	if err := e.sessions.Replace(ctx, in.UserID, in.Token); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, in.UserID, "", err, nil)
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.metricInc(MetricSessionsRevoked)
	e.emitAudit(ctx, auditEventPasswordChanged, true, in.UserID, "", nil, nil)
	return nil
}

// PasswordDigest returns the deterministic ciphertext digest of a plaintext
// password, as stored in UserRecord.Password. Registration flows use it
// before handing records to a credential store.
func (e *Engine) PasswordDigest(password string) (string, error) {
	if e == nil || e.cipher == nil {
		return "", ErrEngineNotReady
	}
	return e.cipher.Encrypt(password), nil
}

func missingPasswordChangeField(in ChangePasswordInput) (string, bool) {
	switch {
	case in.UserID == "":
		return "user id", false
	case in.Token == "":
		return "token", false
	case in.CurrentPassword == "":
		return "currentPassword", false
	case in.NewPassword == "":
		return "newPassword", false
	}
	return "", true
}
