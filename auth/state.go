package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/golang-jwt/jwt/v5"
)

const stateIssuer = "echo_blog"

// ErrInvalidState is returned for a state parameter that was not issued by
// us, has expired, or belongs to another provider.
var ErrInvalidState = errors.New("auth: invalid oauth state")

// States issues and checks the OAuth state parameter. A state is an HS256
// token naming the provider, with a random id and a short expiry.
type States struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

// NewStates signs states with secret; they expire after ttl.
func NewStates(secret string, ttl time.Duration) *States {
	return &States{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

// Issue returns a fresh state for provider.
func (s *States) Issue(provider model.Provider) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		Subject:   string(provider),
		ID:        hex.EncodeToString(nonce),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return state, nil
}

// Verify checks that state was issued for provider and is still valid.
func (s *States) Verify(state string, provider model.Provider) error {
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithSubject(string(provider)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
