package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

const (
	AdminScope = "battleship:admin"

	DefaultAdminTokenTTL = 15 * time.Minute
	MaxAdminTokenTTL     = 24 * time.Hour
)

// AdminTokens issues and verifies short-lived HS256 tokens that authorise
// moderator actions such as deleting a game.
type AdminTokens struct {
	secret string
	issuer string
}

func NewAdminTokens(secret, issuer string) *AdminTokens {
	return &AdminTokens{secret: secret, issuer: issuer}
}

// Issue signs an admin token for subject. A zero ttl uses DefaultAdminTokenTTL.
func (a *AdminTokens) Issue(subject string, ttl time.Duration) (string, error) {
	if a == nil || a.secret == "" {
		return "", fmt.Errorf("admin token secret is not configured")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if ttl == 0 {
		ttl = DefaultAdminTokenTTL
	}
	if ttl > MaxAdminTokenTTL {
		return "", fmt.Errorf("ttl %s exceeds %s", ttl, MaxAdminTokenTTL)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   a.issuer,
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"jti":   uuid.NewString(),
		"scope": AdminScope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.secret))
}

// Verify checks signature, expiry, issuer and scope, and returns the subject.
func (a *AdminTokens) Verify(tokenString string) (string, error) {
	if a == nil || a.secret == "" {
		return "", fmt.Errorf("admin token secret is not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrUnauthorized
	}
	if !claims.VerifyIssuer(a.issuer, true) {
		return "", fmt.Errorf("%w: wrong issuer", ErrUnauthorized)
	}
	if _, hasExp := claims["exp"]; !hasExp {
		return "", fmt.Errorf("%w: token never expires", ErrUnauthorized)
	}
	if scope, _ := claims["scope"].(string); scope != AdminScope {
		return "", fmt.Errorf("%w: missing admin scope", ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrUnauthorized)
	}
	return sub, nil
}

// Authorizer decides whether a caller may run admin operations: either its
// user id is on the admin list or it presents a valid admin token.
type Authorizer struct {
	tokens *AdminTokens
	admins map[string]struct{}
}

func NewAuthorizer(tokens *AdminTokens, adminUserIDs []string) *Authorizer {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &Authorizer{tokens: tokens, admins: admins}
}

// ParseAdminList splits a comma separated list of user ids.
func ParseAdminList(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (a *Authorizer) Allowed(userID, token string) bool {
	if a == nil {
		return false
	}
	if _, ok := a.admins[userID]; ok && userID != "" {
		return true
	}
	if token == "" || a.tokens == nil {
		return false
	}
	_, err := a.tokens.Verify(token)
	return err == nil
}
