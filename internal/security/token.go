package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService wraps JWT creation and validation. The subject is the
// username; the public moniker never appears in a token.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// CreateForUser creates a JWT for the given username using the default TTL.
func (t *TokenService) CreateForUser(username string) (string, error) {
	return t.CreateWithTTL(username, t.expiresIn)
}

// CreateWithTTL creates a JWT for the given username with an explicit TTL.
func (t *TokenService) CreateWithTTL(username string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Subject validates a token and returns its username.
func (t *TokenService) Subject(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("%w: empty subject", jwt.ErrTokenMalformed)
	}
	return sub, nil
}
