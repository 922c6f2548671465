// Package server exposes analysis sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/japaniel/lingodemo/pkg/dictionary"
	"github.com/japaniel/lingodemo/pkg/extract"
	"github.com/japaniel/lingodemo/pkg/pipeline"
	"github.com/japaniel/lingodemo/pkg/profile"
	"github.com/japaniel/lingodemo/pkg/session"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 4 * 1024 * 1024

// Server wraps a fiber app serving one Session.
type Server struct {
	Session *session.Session
	// Logger receives one record per request. nil means no logging.
	Logger *slog.Logger

	app *fiber.App
}

// LookupRequest is the body of POST /lookup.
type LookupRequest struct {
	Lang  string   `json:"lang"`
	Words []string `json:"words"`
}

// LookupResponse is returned by POST /lookup.
type LookupResponse struct {
	Lang    string               `json:"lang"`
	Results []dictionary.Outcome `json:"results"`
}

// New builds the routes for sess.
func New(sess *session.Session, logger *slog.Logger) *Server {
	s := &Server{Session: sess, Logger: logger}
	app := fiber.New(fiber.Config{
		AppName:               "lingodemo",
		BodyLimit:             MaxBodySize,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.logRequest)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/languages", s.languages)
	app.Post("/analyze", s.analyze)
	app.Post("/lookup", s.lookup)
	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is done.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()
	if s.Logger != nil {
		s.Logger.Info("server listening", "addr", addr)
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) languages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"languages": s.Session.Table.Profiles()})
}

func (s *Server) analyze(c *fiber.Ctx) error {
	var req session.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	rep, err := s.Session.Run(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

func (s *Server) lookup(c *fiber.Ctx) error {
	var req LookupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if len(req.Words) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "words must not be empty")
	}
	words := extract.DedupeStrings(req.Words)
	out, err := s.Session.Lookup(c.UserContext(), req.Lang, words)
	if err != nil {
		return err
	}
	return c.JSON(LookupResponse{Lang: req.Lang, Results: out})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, profile.ErrInvalidSelection),
		errors.Is(err, pipeline.ErrTokenizerUnsupported),
		errors.Is(err, extract.ErrMalformedPattern):
		return fiber.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError && s.Logger != nil {
		s.Logger.Error("request failed", "path", c.Path(), "requestid", c.Locals("requestid"), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if s.Logger != nil {
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		s.Logger.Info("request",
			"method", c.Method(), "path", c.Path(), "status", status,
			"elapsed", time.Since(start), "requestid", c.Locals("requestid"))
	}
	return err
}
