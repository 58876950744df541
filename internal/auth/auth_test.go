package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/circuitgen-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the password")
	}
	if !h.Verify("correct horse", hash) {
		t.Error("Verify() rejected the right password")
	}
	if h.Verify("wrong horse", hash) {
		t.Error("Verify() accepted a wrong password")
	}

	other, err := h.Hash("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if other == hash {
		t.Error("hashes of the same password should differ by salt")
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	id, err := issuer.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if id != 42 {
		t.Errorf("subject = %d, want 42", id)
	}
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", 15*time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	issuer.now = func() time.Time { return base.Add(14 * time.Minute) }
	if _, err := issuer.Authenticate(token); err != nil {
		t.Errorf("token rejected before expiry: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(16 * time.Minute) }
	if _, err := issuer.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	good, err := issuer.Issue(1)
	if err != nil {
		t.Fatal(err)
	}

	otherKey, err := NewTokenIssuer("other-secret", time.Hour).Issue(1)
	if err != nil {
		t.Fatal(err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "1",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"wrong secret": otherKey,
		"missing sub":  noSubject,
		"missing exp":  noExpiry,
		"tampered":     tampered,
		"malformed":    "not-a-token",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

type fakeUsers map[int64]models.User

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return u, nil
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	users := fakeUsers{1: {ID: 1, Email: "a@example.com"}}

	var seen models.User
	handler := Middleware(issuer, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, _ := issuer.Issue(1)
	orphan, _ := issuer.Issue(99)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", "Bearer " + orphan, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.User{}
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("missing WWW-Authenticate challenge")
			}
			if tt.want == http.StatusNoContent && seen.ID != 1 {
				t.Errorf("context user = %+v", seen)
			}
		})
	}
}
