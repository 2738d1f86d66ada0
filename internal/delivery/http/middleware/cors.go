package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS разрешает кросс-доменные запросы к API валидации.
// Пустой список источников означает "*"; с "*" credentials не передаются.
func CORS(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	if allow == "" {
		allow = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Content-Type,Accept",
		AllowCredentials: !strings.Contains(allow, "*"),
		MaxAge:           600,
	})
}
