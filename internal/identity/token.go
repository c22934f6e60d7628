// Package identity issues and validates the bearer tokens that carry the
// signed-in person's initials.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	authmw "presence/pkg/platform/middleware/auth"
)

const (
	DefaultIssuer   = "presence"
	DefaultAudience = "presence-api"
)

// Claims are the access token claims.
type Claims struct {
	Initials string `json:"initials"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewTokenService(signingKey, issuer, audience string) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// Issue signs a token for initials valid for expiresIn.
func (s *TokenService) Issue(initials id.Initials, expiresIn time.Duration) (string, error) {
	if initials.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "initials are required")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Initials: initials.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   initials.Key(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return signed, nil
}

// Parse validates tokenString and returns its claims.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken satisfies the auth middleware's validator.
func (s *TokenService) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Initials: claims.Initials, JTI: claims.ID}, nil
}

// PeekInitials reads the initials claim without verifying the signature.
// Clients use it to learn who they are signed in as; the server always
// verifies.
func PeekInitials(tokenString string) (id.Initials, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "malformed token")
	}
	return id.ParseInitials(claims.Initials)
}
