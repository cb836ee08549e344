package router

import (
	"io"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/studio-calendar/internal/handler"
	"github.com/Leganyst/studio-calendar/internal/middleware"
)

type Options struct {
	Calendar    *handler.CalendarHandler
	Auth        middleware.Authenticator
	FrontendURL string
	// AccessLog — куда писать строки access-лога; nil — stdout.
	AccessLog io.Writer
	Log       *slog.Logger
}

// NewApp собирает fiber-приложение со всеми маршрутами API.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "studio-calendar",
		ErrorHandler:          handler.ErrorHandler(opts.Log),
		DisableStartupMessage: true,
	})

	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(accessLog))
	app.Use(middleware.CorsMiddleware(opts.FrontendURL))

	api := app.Group("/api")
	api.Get("/health", handler.Health)

	SetupCalendarRoutes(api, opts.Calendar, opts.Auth)

	return app
}

// SetupCalendarRoutes: статичные пути регистрируются раньше /:id.
func SetupCalendarRoutes(api fiber.Router, h *handler.CalendarHandler, auth middleware.Authenticator) {
	cal := api.Group("/calendar", middleware.AuthMiddleware(auth))

	cal.Get("/", h.List)
	cal.Get("/available-slots", h.AvailableSlots)
	cal.Get("/feed.ics", h.Feed)
	cal.Get("/:id", h.Get)

	cal.Post("/", h.Create)
	cal.Post("/book/:slotId", h.Book)
	cal.Post("/generate-slots", middleware.AdminOnly(), h.Generate)

	cal.Put("/:id", middleware.AdminOnly(), h.Update)
	cal.Delete("/:id", middleware.AdminOnly(), h.Delete)
}
