package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SPA serves a file from dir when it exists and index.html otherwise, so
// client-side routes survive a reload. Unknown /api paths stay 404 JSON.
func SPA(dir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			return fail(c, fiber.StatusNotFound, "Not found")
		}

		rel := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
		if rel != "/" {
			full := filepath.Join(dir, rel)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return c.SendFile(full)
			}
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			return fail(c, fiber.StatusNotFound, "Not found")
		}
		return c.SendFile(index)
	}
}
