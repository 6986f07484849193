package auth

import (
	"strings"

	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/common"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, deps *common.Deps) {
	auth := api.Group("/auth")

	// Public routes
	auth.Post("/register", func(c *fiber.Ctx) error { return RegisterAPI(c, deps) })
	auth.Post("/verify-otp", func(c *fiber.Ctx) error { return VerifyOTPAPI(c, deps) })
	auth.Post("/resend-otp", func(c *fiber.Ctx) error { return ResendOTPAPI(c, deps) })
	auth.Post("/login", func(c *fiber.Ctx) error { return LoginAPI(c, deps) })
	auth.Post("/logout", LogoutAPI)

	// Protected routes
	auth.Use(AuthMiddleware(deps.Config.JWT.Secret))
	auth.Get("/me", func(c *fiber.Ctx) error { return MeAPI(c, deps) })
	auth.Post("/change-password", func(c *fiber.Ctx) error { return ChangePasswordAPI(c, deps) })
}

// AuthMiddleware validates the JWT from the jwt_token cookie or the
// Authorization header and sets the user context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenString string

		// Bearer header first, then cookie
		if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		if tokenString == "" {
			tokenString = c.Cookies("jwt_token")
		}

		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token found")
		}

		claims, err := ValidateJWT(secret, tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware checks if user has required role
func RoleMiddleware(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := common.UserRole(c)
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
	}
}
