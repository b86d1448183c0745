package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sitewizard/sitewizard/server/internal/observability"
)

// GetIntakeMetrics returns aggregated provider-call metrics.
// GET /api/v1/intake/metrics
func (s *APIV1Service) GetIntakeMetrics(c echo.Context) error {
	if s.Metrics == nil {
		return c.JSON(http.StatusOK, observability.Snapshot{
			Providers: map[string]observability.ProviderSnapshot{},
		})
	}
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
