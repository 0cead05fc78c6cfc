package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrBadCredentials indicates the presented username/password pair did not
// match. Deliberately carries no detail about which half failed.
var ErrBadCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a credential pair and returns the identity to
// embed in issued tokens. The pipeline only depends on this interface, so a
// real credential store can replace the demo pair without touching it.
type CredentialVerifier interface {
	Verify(username, password string) (string, error)
}

// StaticVerifier matches a single fixed pair. Demo-grade stand-in for a
// credential store; comparisons are constant-time.
type StaticVerifier struct {
	username string
	password string
}

// NewStaticVerifier builds a verifier for one literal pair.
func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

// Verify compares both halves before deciding so the timing does not reveal
// whether the username alone matched.
func (v *StaticVerifier) Verify(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password))
	if userOK&passOK != 1 {
		return "", ErrBadCredentials
	}
	return v.username, nil
}
