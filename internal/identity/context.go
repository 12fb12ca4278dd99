package identity

import (
	"errors"

	"github.com/elawdiya/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalsKey is where the JWT middleware stores the parsed *jwt.Token.
const LocalsKey = "user"

var (
	ErrNoToken     = errors.New("invalid token in context")
	ErrBadClaims   = errors.New("invalid claims")
	ErrMissingSub  = errors.New("missing sub claim")
	ErrMissingRole = errors.New("missing role claim")
)

// Principal is the authenticated caller as described by their access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

func claimsFrom(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadClaims
	}
	return claims, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := claimsFrom(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrMissingSub
	}
	return uuid.Parse(sub)
}

// GetPrincipal extracts user id, email and role from JWT claims in context.
func GetPrincipal(c *fiber.Ctx) (*Principal, error) {
	claims, err := claimsFrom(c)
	if err != nil {
		return nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrMissingSub
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}
	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return nil, ErrMissingRole
	}
	email, _ := claims["email"].(string)
	return &Principal{UserID: userID, Email: email, Role: role}, nil
}
