package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	intakeerrors "github.com/sitewizard/sitewizard/server/internal/errors"
)

// ListTemplates returns the website template catalog.
// GET /api/v1/wizard/templates
func (s *APIV1Service) ListTemplates(c echo.Context) error {
	templates, err := s.Wizard.Templates.ListTemplates(c.Request().Context())
	if err != nil {
		return writeError(c, intakeerrors.Internal("failed to list templates", err))
	}
	return c.JSON(http.StatusOK, templates)
}

// ListHostingPlans returns the purchasable hosting tiers.
// GET /api/v1/wizard/plans
func (s *APIV1Service) ListHostingPlans(c echo.Context) error {
	plans, err := s.Wizard.Plans.ListPlans(c.Request().Context())
	if err != nil {
		return writeError(c, intakeerrors.Internal("failed to list plans", err))
	}
	return c.JSON(http.StatusOK, plans)
}

// CheckDomain answers a domain availability query.
// GET /api/v1/wizard/domains/check?domain=...
func (s *APIV1Service) CheckDomain(c echo.Context) error {
	domain := c.QueryParam("domain")
	if domain == "" {
		return writeError(c, intakeerrors.InvalidArgument("domain query parameter is required"))
	}
	check, err := s.Wizard.Domains.CheckDomain(c.Request().Context(), domain)
	if err != nil {
		return writeError(c, intakeerrors.Internal("domain check failed", err))
	}
	return c.JSON(http.StatusOK, check)
}
