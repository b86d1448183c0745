package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/sitewizard/sitewizard/internal/profile"
	"github.com/sitewizard/sitewizard/plugin/llm"
	"github.com/sitewizard/sitewizard/server/intake"
	"github.com/sitewizard/sitewizard/server/internal/observability"
	apiv1 "github.com/sitewizard/sitewizard/server/router/api/v1"
	"github.com/sitewizard/sitewizard/server/runner/retention"
	"github.com/sitewizard/sitewizard/server/wizard"
	"github.com/sitewizard/sitewizard/store"
)

// sessionMaxAge is how long an untouched session survives before the
// retention runner prunes it.
const sessionMaxAge = 30 * 24 * time.Hour

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
	retention  *retention.Runner
}

// NewServer assembles the HTTP server: provider gateway, intake engine,
// wizard collaborators, routes and middleware.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	gatewayConfig := llm.NewConfigFromProfile(profile)
	if err := gatewayConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid provider configuration")
	}
	gateway, err := llm.NewGateway(gatewayConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create provider gateway")
	}
	metrics := observability.NewMetrics(1000)
	gateway.SetMetricsRecorder(metrics)

	engine := intake.NewEngine(store, gateway,
		intake.WithTurnTimeout(time.Duration(profile.IntakeTimeoutSec)*time.Second*3))

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.Error("panic recovered", "error", err, "path", c.Path())
			return err
		},
	}))
	echoServer.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, values echomw.RequestLoggerValues) error {
			slog.Info("request",
				slog.String("method", values.Method),
				slog.String("uri", values.URI),
				slog.Int("status", values.Status))
			return nil
		},
	}))

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiV1 := apiv1.NewAPIV1Service(profile, store, engine, wizard.NewService())
	apiV1.Metrics = metrics
	apiV1.Register(echoServer)

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
		apiV1:      apiV1,
		retention:  retention.NewRunner(store, sessionMaxAge),
	}
	return s, nil
}

// Start launches background runners and begins serving. It returns once the
// listener stops.
func (s *Server) Start(ctx context.Context) error {
	go s.retention.Run(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", slog.String("address", address), slog.String("mode", s.Profile.Mode))
	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}
