package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"storeledger/backend/internal/domain"
)

const tokenIssuer = "storeledger"

// Identity verifies bearer tokens minted by the external identity provider.
// Only HS256 tokens signed with the shared secret are accepted.
type Identity struct {
	secret []byte
	now    func() time.Time
}

type ledgerClaims struct {
	jwtlib.RegisteredClaims
	PersonType string `json:"person_type,omitempty"`
}

func NewIdentity(secret string) *Identity {
	return &Identity{secret: []byte(secret), now: time.Now}
}

func (i *Identity) ParseToken(tokenStr string) (domain.Principal, error) {
	claims := &ledgerClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(i.now), jwtlib.WithExpirationRequired())
	if err != nil || !token.Valid {
		return domain.Principal{}, errors.New("invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return domain.Principal{}, errors.New("token subject is required")
	}

	return domain.Principal{
		UserID:     strings.TrimSpace(sub),
		PersonType: domain.ParsePersonType(claims.PersonType),
	}, nil
}

// Sign mints a token for principal. Production tokens come from the identity
// provider; this is used by ledgerctl and tests.
func (i *Identity) Sign(principal domain.Principal, ttl time.Duration) (string, error) {
	if principal.UserID == "" {
		return "", errors.New("principal user id is required")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	now := i.now().UTC()
	claims := ledgerClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   principal.UserID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
		PersonType: string(principal.PersonType),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
