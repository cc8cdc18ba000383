// middleware/auth.go
package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "emberfest-secret-change-in-production"
	}
	return []byte(secret)
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(401, "Invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fiber.NewError(401, "Token expired")
	}

	return claims, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Missing or malformed authorization header"})
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("email", claims["email"])

	return c.Next()
}

// AdminAuthMiddleware gates the admin area. The claim alone is not enough:
// the token's email must also match the single privileged identity, so a
// stale token from a demoted account cannot reach admin routes.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Missing or malformed authorization header"})
	}

	claims, err := parseToken(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	isAdmin, ok := claims["is_admin"].(bool)
	if !ok || !isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Access denied. Admin privileges required."})
	}

	email, _ := claims["email"].(string)
	if !IsAdminEmail(email) {
		return c.Status(403).JSON(fiber.Map{"error": "Access denied. Admin privileges required."})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("email", email)
	c.Locals("isAdmin", true)

	return c.Next()
}

// IsAdminEmail reports whether email is the privileged identity (ADMIN_EMAIL).
func IsAdminEmail(email string) bool {
	admin := os.Getenv("ADMIN_EMAIL")
	return admin != "" && strings.EqualFold(email, admin)
}

// ParseClaims validates a raw token string. Used by the websocket server,
// which runs outside Fiber.
func ParseClaims(tokenString string) (jwt.MapClaims, error) {
	return parseToken(tokenString)
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return 0, fiber.NewError(401, "User not authenticated")
	}

	if id, ok := userID.(float64); ok {
		return uint(id), nil
	}

	if id, ok := userID.(uint); ok {
		return id, nil
	}

	return 0, fiber.NewError(401, "Invalid user ID format")
}

func GetEmail(c *fiber.Ctx) (string, error) {
	email := c.Locals("email")
	if email == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}

	if e, ok := email.(string); ok {
		return e, nil
	}

	return "", fiber.NewError(401, "Invalid email format")
}
