package web

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"mode":     s.flags.Mode().String(),
		"armed":    s.flags.Armed(),
		"thinking": s.flags.Thinking(),
		"speaking": s.flags.Speaking(),
		"offline":  s.flags.Offline(),
	})
}

func (s *Server) handlePositions(c *fiber.Ctx) error {
	return c.JSON(s.pos.Snapshot())
}

func (s *Server) handleCapture(c *fiber.Ctx) error {
	s.captureMu.RLock()
	defer s.captureMu.RUnlock()
	if s.capture == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no capture yet"})
	}
	return c.JSON(s.capture)
}
