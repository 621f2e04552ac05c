package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Krusty2272/AiFitnessCoach/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures split into exactly two kinds: the HTTP layer
// maps both to "not authenticated" but logs them differently.
var (
	ErrTokenExpired = errors.New("session: token expired")
	ErrTokenInvalid = errors.New("session: token invalid")
)

// Manager issues and verifies stateless session tokens. Rotating the
// signing secret invalidates every outstanding token at once; that is
// the intended revocation mechanism, there is no denylist.
type Manager struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token TTL must be positive")
	}

	return &Manager{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		audience:  cfg.JWTAudience,
		accessTTL: cfg.AccessTokenTTL,
	}, nil
}

// Issue mints a signed token whose subject is the Telegram user id.
func (m *Manager) Issue(now time.Time, telegramID int64) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			Subject:   strconv.FormatInt(telegramID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			ID:        uuid.NewString(),
		},
		TokenType: TokenTypeAccess,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify checks the signature and expiry of a presented token and
// resolves it back to a Telegram user id. Only HS256 is accepted; a
// token declaring any other algorithm fails as invalid regardless of
// its signature.
func (m *Manager) Verify(tokenString string, now time.Time) (int64, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30*time.Second), // clock skew tolerance
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.TokenType != TokenTypeAccess {
		return 0, fmt.Errorf("%w: token_type mismatch", ErrTokenInvalid)
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return 0, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	if m.audience != "" && !containsAudience(claims.Audience, m.audience) {
		return 0, fmt.Errorf("%w: audience mismatch", ErrTokenInvalid)
	}

	telegramID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || telegramID == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	return telegramID, nil
}

// TokenFromHeader extracts the token from a bearer-scheme Authorization
// header. A missing or malformed header is not an error; callers treat
// it as an anonymous request.
func TokenFromHeader(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) {
		return "", false
	}
	if header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
