package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the HMAC algorithm used to sign tokens.
type SigningMethod string

const (
	MethodHS256 SigningMethod = "hs256"
	MethodHS384 SigningMethod = "hs384"
	MethodHS512 SigningMethod = "hs512"
)

// Config is the static token configuration: secret, algorithm, expiry.
// Immutable after NewManager.
type Config struct {
	Secret        []byte
	SigningMethod SigningMethod
	TokenTTL      time.Duration
}

// Claims is the token payload. User carries the encrypted identity
// ciphertext; the manager never sees the plaintext identity.
type Claims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// Manager issues and parses session tokens. A Manager is a pure function of
// its Config plus the clock; it performs no I/O.
type Manager struct {
	config Config
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256, MethodHS384, MethodHS512:
	case "":
		cfg.SigningMethod = MethodHS256
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a token embedding the encrypted identity claim, with expiry
// TokenTTL from now. Each token carries a fresh jti: the identity ciphertext
// is deterministic and iat/exp truncate to seconds, so without it two logins
// in the same second would collapse into one token string and one session
// index member.
func (m *Manager) Issue(encryptedIdentity string) (string, error) {
	now := time.Now()
	claims := Claims{
		User: encryptedIdentity,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(m.method(), claims)
	return token.SignedString(m.config.Secret)
}

// Parse validates signature and expiry and returns the claims. The caller is
// responsible for decrypting the identity and checking session membership.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS384:
		return jwt.SigningMethodHS384
	case MethodHS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}
