package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "test-key"

type testIssuer struct {
	server *httptest.Server
	key    *rsa.PrivateKey
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwks)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testIssuer{server: server, key: key}
}

func (i *testIssuer) sign(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	s, err := token.SignedString(i.key)
	require.NoError(t, err)
	return s
}

func (i *testIssuer) claims(audience string, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.server.URL,
			Subject:   "user_123",
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "reviewer@example.com",
		Scope: "detect:write history:read",
	}
}

func newTestVerifier(t *testing.T, issuer *testIssuer, audience string) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), Config{Issuer: issuer.server.URL + "/", Audience: audience})
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestVerifier_Verify(t *testing.T) {
	issuer := newTestIssuer(t)
	v := newTestVerifier(t, issuer, "authorship-api")

	claims, err := v.Verify(issuer.sign(t, issuer.claims("authorship-api", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
	assert.Equal(t, "reviewer@example.com", claims.Email)
}

func TestVerifier_Rejects(t *testing.T) {
	issuer := newTestIssuer(t)
	v := newTestVerifier(t, issuer, "authorship-api")

	wrongIssuer := issuer.claims("authorship-api", time.Hour)
	wrongIssuer.Issuer = "https://evil.example.com"

	noExpiry := issuer.claims("authorship-api", time.Hour)
	noExpiry.ExpiresAt = nil

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged := jwt.NewWithClaims(jwt.SigningMethodRS256, issuer.claims("authorship-api", time.Hour))
	forged.Header["kid"] = testKID
	forgedToken, err := forged.SignedString(otherKey)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        issuer.sign(t, issuer.claims("authorship-api", -time.Minute)),
		"wrong audience": issuer.sign(t, issuer.claims("other-api", time.Hour)),
		"wrong issuer":   issuer.sign(t, wrongIssuer),
		"no expiry":      issuer.sign(t, noExpiry),
		"bad signature":  forgedToken,
		"garbage":        "not.a.jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.Error(t, err)
		})
	}
}

func TestVerifier_NoAudienceConfigured(t *testing.T) {
	issuer := newTestIssuer(t)
	v := newTestVerifier(t, issuer, "")

	_, err := v.Verify(issuer.sign(t, issuer.claims("anything", time.Hour)))
	assert.NoError(t, err)
}

func TestNewVerifier_RequiresIssuer(t *testing.T) {
	_, err := NewVerifier(context.Background(), Config{})
	assert.ErrorContains(t, err, "issuer is required")
}

func TestMiddleware(t *testing.T) {
	issuer := newTestIssuer(t)
	v := newTestVerifier(t, issuer, "")
	good := issuer.sign(t, issuer.claims("", time.Hour))

	handler := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user_123", Subject(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing", "", http.StatusUnauthorized, "missing token"},
		{"invalid", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + good, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/detect", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		want       string
	}{
		{"empty header", "", ""},
		{"valid bearer token", "Bearer eyJhbGciOiJSUzI1NiJ9.test", "eyJhbGciOiJSUzI1NiJ9.test"},
		{"lowercase bearer", "bearer token123", "token123"},
		{"invalid format - no space", "Bearertoken123", ""},
		{"invalid format - wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"empty token after bearer", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			assert.Equal(t, tt.want, extractBearerToken(req))
		})
	}
}

func TestStaticVerifier(t *testing.T) {
	v := StaticVerifier{Token: "t0k", Claims: NewTestClaims("svc")}
	c, err := v.Verify("t0k")
	require.NoError(t, err)
	assert.Equal(t, "svc", c.Subject)

	_, err = v.Verify("other")
	assert.Error(t, err)
}
