package sessionauth

import (
	"context"
	"errors"
	"testing"
)

func TestLoginSuccessRegistersSession(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	engine := newTestEngine(t, rdb, store)
	seedUser(t, engine, store, "u1", "alice@example.com", "old-password-123")

	result, err := engine.Login(ctx, "alice@example.com", "old-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.ID != "u1" || result.Email != "alice@example.com" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}

	ok, err := rdb.SIsMember(ctx, "sa:u1", result.Token).Result()
	if err != nil {
		t.Fatalf("SIsMember failed: %v", err)
	}
	if !ok {
		t.Fatal("expected token in session index before Login returns")
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockUserStore()
	engine := newTestEngine(t, rdb, store)
	seedUser(t, engine, store, "u1", "alice@example.com", "pw-123456")

	if _, err := engine.Login(context.Background(), "  Alice@Example.COM ", "pw-123456"); err != nil {
		t.Fatalf("expected normalized email to match, got %v", err)
	}
}

func TestLoginUnknownEmailAndWrongPasswordShareCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	engine := newTestEngine(t, rdb, store)
	seedUser(t, engine, store, "u1", "alice@example.com", "right-pw")

	_, errUnknown := engine.Login(ctx, "nobody@example.com", "whatever")
	if !errors.Is(errUnknown, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", errUnknown)
	}

	_, errWrong := engine.Login(ctx, "alice@example.com", "wrong-pw")
	if !errors.Is(errWrong, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", errWrong)
	}

	infoUnknown, ok := Describe(errUnknown)
	if !ok {
		t.Fatal("expected table entry for unknown email")
	}
	infoWrong, ok := Describe(errWrong)
	if !ok {
		t.Fatal("expected table entry for wrong password")
	}
	if infoUnknown.Code != infoWrong.Code || infoUnknown.Code != CodeLogFail {
		t.Fatalf("expected both failures to share LOG_FAIL, got %q and %q", infoUnknown.Code, infoWrong.Code)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	engine := newTestEngine(t, rdb, store)

	if _, err := engine.Login(ctx, "", "pw"); !errors.Is(err, ErrIncompleteData) {
		t.Fatalf("expected ErrIncompleteData for empty email, got %v", err)
	}
	if _, err := engine.Login(ctx, "a@b.c", ""); !errors.Is(err, ErrIncompleteData) {
		t.Fatalf("expected ErrIncompleteData for empty password, got %v", err)
	}
	if store.findByEmailCalls != 0 {
		t.Fatal("expected no store lookup for incomplete input")
	}
}

func TestLoginFailurePropagatesStoreError(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockUserStore()
	store.findErr = errors.New("connection refused")
	engine := newTestEngine(t, rdb, store)

	_, err := engine.Login(context.Background(), "alice@example.com", "pw-123")
	if err == nil || errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected raw infrastructure error, got %v", err)
	}
	if _, ok := Describe(err); ok {
		t.Fatal("infrastructure error must not map to a client code")
	}
}

func TestLoginMultiDeviceKeepsOlderTokens(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	engine := newTestEngine(t, rdb, store)
	seedUser(t, engine, store, "u1", "alice@example.com", "pw-123456")

	first, err := engine.Login(ctx, "alice@example.com", "pw-123456")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := engine.Login(ctx, "alice@example.com", "pw-123456")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	// Two devices, two distinct sessions, even within the same second.
	if first.Token == second.Token {
		t.Fatal("expected each login to issue its own token")
	}

	if _, err := engine.VerifyToken(ctx, first.Token); err != nil {
		t.Fatalf("first token should stay valid: %v", err)
	}
	if _, err := engine.VerifyToken(ctx, second.Token); err != nil {
		t.Fatalf("second token should be valid: %v", err)
	}

	n, err := rdb.SCard(ctx, "sa:u1").Result()
	if err != nil {
		t.Fatalf("SCard failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both tokens in the index, got %d", n)
	}

	// Logging the first device out must not touch the second session.
	if err := engine.Logout(ctx, first.Token, "u1"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.VerifyToken(ctx, first.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected first token revoked, got %v", err)
	}
	if _, err := engine.VerifyToken(ctx, second.Token); err != nil {
		t.Fatalf("second token should survive the other device's logout: %v", err)
	}
}
