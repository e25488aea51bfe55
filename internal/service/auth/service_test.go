package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

const testSecret = "integration-test-secret"

func newTestService(t *testing.T) *service {
	t.Helper()
	svc, ok := NewService(testSecret, nil).(*service)
	if !ok {
		t.Fatal("NewService returned unexpected implementation")
	}
	return svc
}

func sampleUser() domain.User {
	return domain.User{
		ID:   "user-1",
		Name: "Анна",
		Role: domain.RoleUser,
	}
}

func TestIssueAndAuthenticateRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.IssueToken(sampleUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	identity, err := svc.Authenticate("Bearer " + token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", identity.UserID)
	}
	if identity.Role != domain.RoleUser {
		t.Errorf("Role = %q, want %q", identity.Role, domain.RoleUser)
	}
}

func TestAuthenticateHeaderErrors(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.IssueToken(sampleUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{name: "empty header", header: "", want: domain.ErrMissingToken},
		{name: "blank header", header: "   ", want: domain.ErrMissingToken},
		{name: "no scheme", header: token, want: domain.ErrMalformedToken},
		{name: "wrong scheme", header: "Basic " + token, want: domain.ErrMalformedToken},
		{name: "extra parts", header: "Bearer " + token + " trailing", want: domain.ErrMalformedToken},
		{name: "garbage token", header: "Bearer not.a.jwt", want: domain.ErrMalformedToken},
		{name: "lowercase scheme accepted", header: "bearer " + token, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(tc.header)
			if !errors.Is(err, tc.want) {
				t.Errorf("Authenticate(%q) = %v, want %v", tc.header, err, tc.want)
			}
		})
	}
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	foreign := NewService("another-secret", nil)

	token, err := foreign.IssueToken(sampleUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = svc.Authenticate("Bearer " + token)
	if !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Errorf("Authenticate = %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)

	issuedAt := time.Now().Add(-48 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.IssueToken(sampleUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	svc.now = time.Now
	_, err = svc.Authenticate("Bearer " + token)
	if !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Errorf("Authenticate = %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestAuthenticateRejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newTestService(t)

	// alg=none с валидной структурой должен отсекаться на проверке метода подписи.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"usuarioId": "user-1",
		"role":      "user",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	_, err = svc.Authenticate("Bearer " + token)
	if !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Errorf("Authenticate = %v, want ErrInvalidOrExpiredToken", err)
	}
}

func TestAuthenticateRejectsIncompleteClaims(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{
			name: "missing user id",
			claims: jwt.MapClaims{
				"role": "user",
				"exp":  time.Now().Add(time.Hour).Unix(),
			},
		},
		{
			name: "unknown role",
			claims: jwt.MapClaims{
				"usuarioId": "user-1",
				"role":      "superadmin",
				"exp":       time.Now().Add(time.Hour).Unix(),
			},
		},
		{
			name: "missing role",
			claims: jwt.MapClaims{
				"usuarioId": "user-1",
				"exp":       time.Now().Add(time.Hour).Unix(),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("sign token: %v", err)
			}
			_, err = svc.Authenticate("Bearer " + token)
			if !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
				t.Errorf("Authenticate = %v, want ErrInvalidOrExpiredToken", err)
			}
		})
	}
}

func TestAuthorizeRoleList(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name     string
		identity Identity
		allowed  []domain.Role
		want     error
	}{
		{
			name:     "user denied admin-only resource",
			identity: Identity{UserID: "user-1", Role: domain.RoleUser},
			allowed:  []domain.Role{domain.RoleAdmin},
			want:     domain.ErrForbidden,
		},
		{
			name:     "user allowed when list includes user",
			identity: Identity{UserID: "user-1", Role: domain.RoleUser},
			allowed:  []domain.Role{domain.RoleUser, domain.RoleAdmin},
			want:     nil,
		},
		{
			name:     "admin allowed admin-only resource",
			identity: Identity{UserID: "admin-1", Role: domain.RoleAdmin},
			allowed:  []domain.Role{domain.RoleAdmin},
			want:     nil,
		},
		{
			name:     "empty list denies everyone",
			identity: Identity{UserID: "admin-1", Role: domain.RoleAdmin},
			allowed:  nil,
			want:     domain.ErrForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(tc.identity, tc.allowed...)
			if !errors.Is(err, tc.want) {
				t.Errorf("Authorize = %v, want %v", err, tc.want)
			}
		})
	}
}
