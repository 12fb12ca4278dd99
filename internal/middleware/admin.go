package middleware

import (
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/identity"
	"github.com/elawdiya/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PrincipalKey is where ModeratorRequired stores the confirmed *identity.Principal.
const PrincipalKey = "principal"

// ModeratorRequired admits callers whose token role can moderate reports and
// whose stored role still agrees. The token check runs first so plain users
// are refused without touching the database.
func ModeratorRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := identity.GetPrincipal(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if !principal.Role.CanModerate() {
			return forbidden(c)
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "role").
			First(&user, "id = ?", principal.UserID).Error; err != nil {
			return forbidden(c)
		}
		if !user.Role.CanModerate() {
			return forbidden(c)
		}

		principal.Role = user.Role
		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Error: true, Message: "Admin access required",
	})
}
