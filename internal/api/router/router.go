package router

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/chapool/go-hwkeyring/internal/api"
	"github/chapool/go-hwkeyring/internal/api/handlers"
)

// Init builds the echo instance and attaches every route. It has to be called after InitNewServer.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Bridge.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = HTTPErrorHandler

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())
	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(echoMiddleware.RequestID())
	s.Echo.Use(requestLogger())

	metricsMiddleware, err := echoprometheus.MiddlewareConfig{
		Namespace:  "hwkeyring",
		Subsystem:  "http",
		Registerer: s.Metrics.Registry,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/-/")
		},
	}.ToMiddleware()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register HTTP metrics")
	}
	s.Echo.Use(metricsMiddleware)

	s.Router = &api.Router{
		Routes:     nil,
		Root:       s.Echo.Group(""),
		Management: s.Echo.Group("/-"),
		APIV1:      s.Echo.Group("/api/v1"),
	}

	handlers.AttachAllRoutes(s)

	log.Debug().Int("routes", len(s.Router.Routes)).Msg("Router initialized")
}
