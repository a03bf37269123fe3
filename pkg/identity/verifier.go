package identity

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"support-chat-be/pkg/apperr"
)

// Role distinguishes the two sides of a support conversation.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Identity is the verified subject behind a connection or request.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleAgent
}

// Verifier validates a bearer credential and resolves it to an Identity.
// Token issuance lives in the auth service; this side only verifies.
type Verifier interface {
	Verify(token string) (Identity, error)
}

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) Verifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.KindUnauthorized, "unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "token missing user_id")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "invalid user id in token")
	}

	role := RoleCustomer
	if roleStr, ok := claims["role"].(string); ok && Role(roleStr) == RoleAgent {
		role = RoleAgent
	}

	return Identity{UserID: userID, Role: role}, nil
}
