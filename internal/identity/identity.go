// Package identity carries the authenticated operator explicitly instead of
// reading it from ambient storage. Tokens come from the external identity
// provider; this package only parses them.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Context is the operator on whose behalf the console acts.
type Context struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Email      string   `json:"email"`
	Audience   []string `json:"audience,omitempty"`
	TenantID   string   `json:"tenant_id"`
	Token      string   `json:"-"`
}

// DisplayName prefers the given name, then the username.
func (c Context) DisplayName() string {
	if c.GivenName != "" {
		return c.GivenName
	}
	if c.Username != "" {
		return c.Username
	}
	return c.UserID
}

// Claims are the identity-provider token claims the console reads.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Email             string `json:"email"`
	TenantID          string `json:"tenant_id"`
}

// Parser turns bearer tokens into a Context.
type Parser struct {
	secret        []byte
	defaultTenant string
}

// NewParser verifies HS256 signatures with secret; an empty secret parses
// tokens without verification, trusting the proxy in front of the console.
func NewParser(secret, defaultTenant string) *Parser {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Parser{secret: key, defaultTenant: defaultTenant}
}

func (p *Parser) Parse(token string) (Context, error) {
	if token == "" {
		return Context{}, ErrMissingToken
	}

	claims := &Claims{}
	var err error
	if p.secret == nil {
		_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	} else {
		_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	}
	if err != nil {
		return Context{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" && claims.PreferredUsername == "" {
		return Context{}, errors.Join(ErrInvalidToken, errors.New("token has no subject"))
	}

	c := Context{
		UserID:     claims.Subject,
		Username:   claims.PreferredUsername,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Email:      claims.Email,
		Audience:   claims.Audience,
		TenantID:   claims.TenantID,
		Token:      token,
	}
	if c.UserID == "" {
		c.UserID = c.Username
	}
	if c.TenantID == "" {
		c.TenantID = p.defaultTenant
	}
	return c, nil
}

// ExtractToken reads a "Bearer <token>" Authorization header.
func ExtractToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

type ctxKey struct{}

func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(Context)
	return c, ok
}
