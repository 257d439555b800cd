package sessionauth

import "context"

// Identity is the payload encrypted into the token's claim. It is decrypted
// only during verification and attached to the request on success.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// AuthResult is produced by VerifyToken and carries the decrypted identity
// together with the original token string, so downstream operations (logout,
// password change) can act on the session that made the request.
type AuthResult struct {
	Identity Identity
	Token    string
}

// UserRecord is the durable per-user record owned by the credential store.
// Password holds the deterministic ciphertext digest, never the plaintext.
type UserRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Fullname string `json:"fullname,omitempty"`
}

// ChangePasswordInput carries a password-change request. Token must be the
// token that authenticated the request; it is the only session that survives
// the change. ConfirmPassword is optional and validated only when present.
type ChangePasswordInput struct {
	UserID          string
	Token           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// CreateUserInput is the registration payload consumed by a credential store.
// Password is already a ciphertext digest when it reaches the store.
type CreateUserInput struct {
	Email    string
	Password string
	Fullname string
}

// UpdateUserInput mutates profile fields of an existing record. Empty fields
// are left unchanged.
type UpdateUserInput struct {
	Email    string
	Fullname string
}

// UserStore is the credential-store capability the Engine depends on. Any
// durable backend can satisfy it; implementations return ErrUserNotFound for
// absent records and propagate infrastructure failures unmodified.
//
// UpdatePassword performs one atomic conditional update: set the digest to
// newDigest only where the stored digest equals currentDigest. It reports
// whether a record matched. The single round trip is what keeps concurrent
// password changes race-free; callers must not emulate it with a read
// followed by a write.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	FindByID(ctx context.Context, id string) (UserRecord, error)
	UpdatePassword(ctx context.Context, userID, currentDigest, newDigest string) (bool, error)
}
