package identity

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

const testProject = "automarket-test"

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func firebaseClaims(sub string, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            firebaseIssuerPrefix + testProject,
		"aud":            testProject,
		"sub":            sub,
		"email":          "seller@example.com",
		"email_verified": true,
		"name":           "Sam Seller",
		"iat":            time.Now().Add(-time.Minute).Unix(),
		"exp":            exp.Unix(),
	}
}

func newTestVerifier(key *rsa.PrivateKey) *OIDCVerifier {
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return NewOIDCVerifier(firebaseIssuerPrefix+testProject, testProject, keys)
}

func TestOIDCVerifierAcceptsValidToken(t *testing.T) {
	key := newRSAKey(t)
	v := newTestVerifier(key)

	raw := signRS256(t, key, firebaseClaims("uid-123", time.Now().Add(time.Hour)))
	p, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "uid-123" || p.Email != "seller@example.com" || !p.EmailVerified || p.Name != "Sam Seller" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestOIDCVerifierRejects(t *testing.T) {
	key := newRSAKey(t)
	other := newRSAKey(t)
	v := newTestVerifier(key)

	wrongAud := firebaseClaims("uid-1", time.Now().Add(time.Hour))
	wrongAud["aud"] = "someone-else"
	wrongIss := firebaseClaims("uid-1", time.Now().Add(time.Hour))
	wrongIss["iss"] = "https://securetoken.google.com/other"

	cases := map[string]string{
		"expired":       signRS256(t, key, firebaseClaims("uid-1", time.Now().Add(-time.Hour))),
		"foreign key":   signRS256(t, other, firebaseClaims("uid-1", time.Now().Add(time.Hour))),
		"wrong aud":     signRS256(t, key, wrongAud),
		"wrong iss":     signRS256(t, key, wrongIss),
		"malformed":     "not-a-token",
		"empty subject": signRS256(t, key, firebaseClaims("", time.Now().Add(time.Hour))),
	}
	for name, raw := range cases {
		if _, err := v.Verify(context.Background(), raw); err == nil {
			t.Fatalf("%s: expected verification to fail", name)
		}
	}
}

func TestHMACVerifierRoundTrip(t *testing.T) {
	raw, exp, err := IssueDevToken("dev-secret", Principal{Subject: "dev-1", Email: "dev@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}
	p, err := NewHMACVerifier("dev-secret").Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "dev-1" || p.Email != "dev@example.com" {
		t.Fatalf("unexpected principal %+v", p)
	}

	if _, err := NewHMACVerifier("other-secret").Verify(context.Background(), raw); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestHMACVerifierRejectsExpiredAndSubjectless(t *testing.T) {
	expired, _, err := IssueDevToken("s", Principal{Subject: "dev-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewHMACVerifier("s").Verify(context.Background(), expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	noSub, _, err := IssueDevToken("s", Principal{}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewHMACVerifier("s").Verify(context.Background(), noSub); !errors.Is(err, ErrNoSubject) {
		t.Fatalf("expected ErrNoSubject, got %v", err)
	}
}
