// Package server exposes box exports over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/config"
	"github.com/chazu/carton/pkg/engine"
	"github.com/chazu/carton/pkg/export"
	"github.com/chazu/carton/pkg/texture"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// ExportTimeout bounds one export, including texture loads.
const ExportTimeout = 60 * time.Second

// Designer builds and encodes a box. script may be empty.
type Designer interface {
	Export(ctx context.Context, w io.Writer, p config.Params, script string) (export.Format, error)
}

// Server is the HTTP front end.
type Server struct {
	app      *fiber.App
	designer Designer
	log      zerolog.Logger
}

// New wires routes and middleware around d.
func New(d Designer, log zerolog.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "carton",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: ExportTimeout,
		}),
		designer: d,
		log:      log,
	}

	// ============================================================
	// Global Middleware
	// ============================================================

	s.app.Use(recover.New())
	s.app.Use(requestID)
	s.app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// ============================================================
	// Routes
	// ============================================================

	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.Get("/api/faces", s.faces)
	s.app.Post("/api/export", s.export)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestID(c fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Locals("requestid", id)
	return c.Next()
}

func (s *Server) faces(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"faces": assembly.FaceNames})
}

// exportBody is the JSON accepted by POST /api/export. Omitted params
// keep their defaults.
type exportBody struct {
	config.Params
	Name   string `json:"name"`
	Script string `json:"script"`
}

func (s *Server) export(c fiber.Ctx) error {
	id, _ := c.Locals("requestid").(string)
	log := s.log.With().Str("request_id", id).Logger()

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}
	body := exportBody{Params: config.DefaultParams()}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		log.Debug().Err(err).Msg("decode export request")
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}

	p := body.Params
	if err := p.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if strings.EqualFold(p.Format, string(export.SVG)) && p.Textured() {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "SVG export is only available for Color faces",
		})
	}

	if p.FaceKind == config.FaceCustom && !texture.IsDataURI(p.Texture) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "custom textures must be uploaded as data URIs",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), ExportTimeout)
	defer cancel()

	var buf bytes.Buffer
	f, err := s.designer.Export(ctx, &buf, p, body.Script)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("export failed")
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	log.Info().Str("format", string(f)).Int("bytes", buf.Len()).Msg("exported")
	c.Set("Content-Type", f.ContentType())
	c.Set("Content-Disposition", `attachment; filename="`+export.FileName(body.Name, f)+`"`)
	return c.Send(buf.Bytes())
}

// statusOf maps designer errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidParams), errors.Is(err, engine.ErrScript), errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrUnsupportedCombination):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
