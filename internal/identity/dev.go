package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevIssuer is the iss claim of locally minted development tokens.
const DevIssuer = "automarket-dev"

// DevClaims mirrors the identity claims of a provider ID token.
type DevClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// HMACVerifier accepts HS256 tokens signed with a shared secret.  It backs
// AUTH_MODE=dev so the API can be exercised without the real provider.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (h *HMACVerifier) Verify(_ context.Context, raw string) (Principal, error) {
	var c DevClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(DevIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, err
	}
	if c.Subject == "" {
		return Principal{}, ErrNoSubject
	}
	return Principal{Subject: c.Subject, Email: c.Email, EmailVerified: c.EmailVerified, Name: c.Name}, nil
}

// IssueDevToken signs an HS256 token for p that expires after ttl.
func IssueDevToken(secret string, p Principal, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := DevClaims{
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Name:          p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DevIssuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
