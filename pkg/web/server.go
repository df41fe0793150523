// Package web serves the head's status over JSON for debugging and
// dashboards.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/servo"
	"github.com/cogbotics/go-animahead/pkg/state"
)

// CaptureStats summarizes the most recent recording session.
type CaptureStats struct {
	ID       string        `json:"id"`
	Duration time.Duration `json:"duration_ns"`
	Status   string        `json:"status"`
	When     time.Time     `json:"when"`
}

// Server is the JSON status server.
type Server struct {
	app   *fiber.App
	port  string
	flags *state.Flags
	pos   *servo.Positions

	captureMu sync.RWMutex
	capture   *CaptureStats
}

// NewServer creates the status server over the given state.
func NewServer(port string, flags *state.Flags, pos *servo.Positions) *Server {
	s := &Server{port: port, flags: flags, pos: pos}

	app := fiber.New(fiber.Config{
		AppName:               "animahead",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealthz)
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/positions", s.handlePositions)
	api.Get("/capture", s.handleCapture)

	s.app = app
	return s
}

// RecordCapture publishes the stats of a finished recording session.
func (s *Server) RecordCapture(id string, duration time.Duration, status string) {
	s.captureMu.Lock()
	s.capture = &CaptureStats{ID: id, Duration: duration, Status: status, When: time.Now()}
	s.captureMu.Unlock()
}

// Listen blocks serving requests until Shutdown.
func (s *Server) Listen() error {
	log.Info("status server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
