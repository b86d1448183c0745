package v1

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sitewizard/sitewizard/internal/profile"
	"github.com/sitewizard/sitewizard/server/intake"
	"github.com/sitewizard/sitewizard/server/internal/observability"
	"github.com/sitewizard/sitewizard/server/middleware"
	"github.com/sitewizard/sitewizard/server/wizard"
	"github.com/sitewizard/sitewizard/store"
)

// APIV1Service holds the HTTP surface of the API.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Engine  *intake.Engine
	Wizard  *wizard.Service
	// Metrics is optional; the metrics endpoint reports empty data without it.
	Metrics *observability.Metrics

	rateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, engine *intake.Engine, wizardService *wizard.Service) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Engine:      engine,
		Wizard:      wizardService,
		rateLimiter: middleware.NewRateLimiter(),
	}
}

// Register binds all v1 routes onto the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(echomw.CORS())

	group.POST("/intake/sessions", s.StartIntakeSession)
	group.GET("/intake/sessions", s.ListIntakeSessions)
	group.GET("/intake/sessions/:id", s.GetIntakeSession)
	group.POST("/intake/sessions/:id/messages", s.SendIntakeMessage)
	group.DELETE("/intake/sessions/:id", s.DeleteIntakeSession)
	group.GET("/intake/resume/:token", s.ResumeIntakeSession)

	group.GET("/intake/metrics", s.GetIntakeMetrics)

	group.GET("/wizard/templates", s.ListTemplates)
	group.GET("/wizard/plans", s.ListHostingPlans)
	group.GET("/wizard/domains/check", s.CheckDomain)
}
