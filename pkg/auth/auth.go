package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized covers every verification failure: bad signature, wrong
// audience or issuer, expired token, missing subject.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier checks bearer tokens against a pre-shared HS256 secret and the
// configured audience and issuer. Stateless; one instance serves all
// requests.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
}

func NewVerifier(secret, audience, issuer string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		issuer:   issuer,
	}
}

// Authenticate parses and verifies the token, returning the subject claim
// as the user id.
func (v *Verifier) Authenticate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrUnauthorized)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing user id in token", ErrUnauthorized)
	}
	return sub, nil
}
