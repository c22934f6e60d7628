package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	id "presence/pkg/domain"
	"presence/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AuthMiddlewareSuite) serve(v JWTValidator, header string) (*httptest.ResponseRecorder, id.Initials) {
	var seen id.Initials
	h := RequireAuth(v, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Initials(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/attendance/snapshot", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	rr, _ := s.serve(stubValidator{}, "")
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Contains(rr.Body.String(), "Missing or invalid Authorization header")
}

func (s *AuthMiddlewareSuite) TestInvalidToken() {
	rr, _ := s.serve(stubValidator{err: errors.New("expired")}, "Bearer abc")
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Contains(rr.Body.String(), "Invalid or expired token")
}

func (s *AuthMiddlewareSuite) TestTokenWithoutInitials() {
	rr, _ := s.serve(stubValidator{claims: &JWTClaims{Initials: " "}}, "Bearer abc")
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *AuthMiddlewareSuite) TestValidTokenSetsInitials() {
	rr, seen := s.serve(stubValidator{claims: &JWTClaims{Initials: " AB ", JTI: "j1"}}, "Bearer abc")
	s.Equal(http.StatusNoContent, rr.Code)
	assert.Equal(s.T(), id.Initials("AB"), seen)
}
