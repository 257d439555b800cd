package sessionauth

import (
	"errors"
	"strings"
)

var (
	// ErrNoToken indicates a request that carried no session token at all.
	ErrNoToken = errors.New("no token provided")
	// ErrUnauthorized is the single coarse rejection for every token that
	// fails verification: bad signature, expired, undecryptable claim, or
	// absent from the session index. The causes are deliberately not
	// distinguishable by the caller.
	ErrUnauthorized = errors.New("failed to authenticate token")
	// ErrInvalidUsername is returned by Login when no user record exists
	// for the supplied email.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrIncorrectPassword is returned by Login when the password digest
	// does not match the stored one. Clients see the same LOG_FAIL code as
	// for ErrInvalidUsername.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrIncompleteData indicates a required request field is missing.
	ErrIncompleteData = errors.New("incomplete request data")
	// ErrPasswordMismatch indicates confirmPassword was supplied and
	// differs from newPassword.
	ErrPasswordMismatch = errors.New("invalid password confirmation")
	// ErrPasswordNotMatched is returned by ChangePassword when the
	// conditional update matched zero records: the current password digest
	// did not equal the stored one.
	ErrPasswordNotMatched = errors.New("current password does not match")
	// ErrEmailTaken indicates the email is already registered to another user.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidEmail indicates the supplied email is not a valid address.
	// Shares the INVALID_EMAIL client code with ErrEmailTaken.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUserNotFound is the sentinel UserStore implementations return for
	// absent records.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoRecordUpdated indicates an update matched zero records.
	ErrNoRecordUpdated = errors.New("no record was updated")
	// ErrNoRecordDeleted indicates a delete matched zero records.
	ErrNoRecordDeleted = errors.New("no record was deleted")
	// ErrEngineNotReady is an exported sentinel for an Engine used before
	// its dependencies were wired.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Code is a stable client-visible error code carried in response envelopes.
type Code string

const (
	CodeLogFail         Code = "LOG_FAIL"
	CodeNoToken         Code = "NO_TOKEN"
	CodeUnauthorized    Code = "UNAUTH"
	CodeIncompleteData  Code = "INC_DATA"
	CodeInvalidPassword Code = "INV_PASS"
	CodeNoPassword      Code = "NO_PASS"
	CodeInvalidEmail    Code = "INVALID_EMAIL"
	CodeNoRecordUpdated Code = "NO_RECORD_UPDATED"
	CodeNoRecordDeleted Code = "NO_RECORD_DELETED"
	CodeZeroResults     Code = "ZERO_RES"
)

// Kind classifies errors for handling policy: validation and auth failures
// produce stable client codes, conflicts signal unmet state preconditions,
// and everything else is infrastructure — logged and forwarded unmodified to
// an outer fault handler.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindAuth
	KindConflict
)

// ErrorInfo is the client-visible description of a classified error.
type ErrorInfo struct {
	Code       Code
	Kind       Kind
	Message    string
	Context    string
	HTTPStatus int
}

type errorEntry struct {
	sentinel error
	info     ErrorInfo
}

// Order matters only for readability; lookup is by errors.Is.
var errorTable = []errorEntry{
	{ErrInvalidUsername, ErrorInfo{CodeLogFail, KindAuth, "Log-In failed", "Invalid username", 400}},
	{ErrIncorrectPassword, ErrorInfo{CodeLogFail, KindAuth, "Log-In failed", "Incorrect Password", 400}},
	{ErrNoToken, ErrorInfo{CodeNoToken, KindAuth, "No token provided", "Please provide valid token in body form", 403}},
	{ErrUnauthorized, ErrorInfo{CodeUnauthorized, KindAuth, "Unauthorized access", "Failed to authenticate token.", 404}},
	{ErrIncompleteData, ErrorInfo{CodeIncompleteData, KindValidation, "Incomplete request data", "", 400}},
	{ErrPasswordMismatch, ErrorInfo{CodeInvalidPassword, KindValidation, "Invalid password", "Invalid password confirmation", 400}},
	{ErrPasswordNotMatched, ErrorInfo{CodeNoPassword, KindAuth, "No password is found", "Please check current password", 400}},
	{ErrEmailTaken, ErrorInfo{CodeInvalidEmail, KindConflict, "Invalid email", "Please insert another email", 400}},
	{ErrInvalidEmail, ErrorInfo{CodeInvalidEmail, KindValidation, "Invalid email", "Please provide a valid email address", 400}},
	{ErrUserNotFound, ErrorInfo{CodeZeroResults, KindConflict, "Database returned no result", "User not found", 404}},
	{ErrNoRecordUpdated, ErrorInfo{CodeNoRecordUpdated, KindConflict, "No record was updated", "No user was updated", 400}},
	{ErrNoRecordDeleted, ErrorInfo{CodeNoRecordDeleted, KindConflict, "No record was deleted", "No user was deleted", 400}},
}

// Describe maps err to its client-visible ErrorInfo. The second return is
// false for infrastructure errors, which must not be exposed to clients.
//
// For wrapped sentinels the wrapping detail becomes the Context when the
// table entry leaves it empty (e.g. "%w: currentPassword is missing").
func Describe(err error) (ErrorInfo, bool) {
	for _, entry := range errorTable {
		if !errors.Is(err, entry.sentinel) {
			continue
		}
		info := entry.info
		if info.Context == "" {
			info.Context = wrapDetail(err, entry.sentinel)
		}
		return info, true
	}
	return ErrorInfo{}, false
}

// KindOf reports the handling class of err. Unknown errors are infrastructure.
func KindOf(err error) Kind {
	if info, ok := Describe(err); ok {
		return info.Kind
	}
	return KindInfrastructure
}

func wrapDetail(err, sentinel error) string {
	detail := strings.TrimPrefix(err.Error(), sentinel.Error())
	return strings.TrimPrefix(detail, ": ")
}
