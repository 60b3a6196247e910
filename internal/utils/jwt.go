package utils // package utils provides helpers for the access tokens issued by the identity service

import (
	"errors"  // errors reports malformed claims
	"fmt"     // fmt formats numeric subjects
	"strconv" // strconv parses string subjects
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for signing and verifying tokens
)

// RoleCustomer is the role claim carried by tokens of buying customers.
const RoleCustomer = "CUSTOMER"

// ErrInvalidClaims is returned when a token verifies but its subject or
// role cannot be interpreted.
var ErrInvalidClaims = errors.New("invalid token claims")

// Claims are the fields of an access token the service relies on.  The
// subject is the account id.
type Claims struct {
	AccountID uint64
	Role      string
}

// NewAccessToken builds and signs an HS256 JWT for an account.  Tokens
// are normally issued by the identity service; this service uses it in
// tests and local tooling.  The JWT includes the subject (sub), role,
// expiration (exp) and issued at (iat) claims.
func NewAccessToken(secret string, accountID uint64, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(accountID, 10),
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken verifies raw with the shared HS256 secret and
// extracts its claims.  Expired tokens and tokens signed with any other
// algorithm are rejected.  The subject may be encoded as a string or
// a number.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, err
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidClaims
	}
	id, err := subject(mc["sub"])
	if err != nil {
		return Claims{}, err
	}
	role, _ := mc["role"].(string)
	return Claims{AccountID: id, Role: role}, nil
}

func subject(v interface{}) (uint64, error) {
	var s string
	switch sub := v.(type) {
	case string:
		s = sub
	case float64:
		s = fmt.Sprintf("%.0f", sub)
	default:
		return 0, ErrInvalidClaims
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidClaims
	}
	return id, nil
}
