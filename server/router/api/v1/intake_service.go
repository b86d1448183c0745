package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sitewizard/sitewizard/server/intake"
	intakeerrors "github.com/sitewizard/sitewizard/server/internal/errors"
)

// CreateIntakeSessionRequest is the body of POST /api/v1/intake/sessions.
type CreateIntakeSessionRequest struct {
	Provider string `json:"provider"`
	OwnerID  string `json:"ownerId"`
}

// SendIntakeMessageRequest is the body of POST /api/v1/intake/sessions/:id/messages.
type SendIntakeMessageRequest struct {
	Content string `json:"content"`
}

// ListIntakeSessionsResponse is the body of GET /api/v1/intake/sessions.
type ListIntakeSessionsResponse struct {
	Sessions []*intake.Session `json:"sessions"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// StartIntakeSession creates a new intake session.
// POST /api/v1/intake/sessions
func (s *APIV1Service) StartIntakeSession(c echo.Context) error {
	req := &CreateIntakeSessionRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, intakeerrors.InvalidArgument("malformed request body"))
	}
	if req.Provider == "" {
		req.Provider = s.Profile.IntakeProvider
	}

	session, err := s.Engine.Start(c.Request().Context(), req.Provider, req.OwnerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// SendIntakeMessage processes one user turn on a session.
// POST /api/v1/intake/sessions/:id/messages
func (s *APIV1Service) SendIntakeMessage(c echo.Context) error {
	if !s.rateLimiter.Allow(c.RealIP()) {
		return writeError(c, &intakeerrors.IntakeError{
			Code:    intakeerrors.ErrCodeRateLimitExceeded,
			Message: "too many requests, slow down",
		})
	}

	req := &SendIntakeMessageRequest{}
	if err := c.Bind(req); err != nil {
		return writeError(c, intakeerrors.InvalidArgument("malformed request body"))
	}

	session, err := s.Engine.SendMessage(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// GetIntakeSession returns a session with its transcript and collected data.
// GET /api/v1/intake/sessions/:id
func (s *APIV1Service) GetIntakeSession(c echo.Context) error {
	session, err := s.Engine.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ResumeIntakeSession returns a session looked up by its resumption token.
// GET /api/v1/intake/resume/:token
func (s *APIV1Service) ResumeIntakeSession(c echo.Context) error {
	session, err := s.Engine.GetByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ListIntakeSessions returns all sessions for an owner.
// GET /api/v1/intake/sessions?owner=...
func (s *APIV1Service) ListIntakeSessions(c echo.Context) error {
	owner := c.QueryParam("owner")
	if owner == "" {
		return writeError(c, intakeerrors.InvalidArgument("owner query parameter is required"))
	}

	sessions, err := s.Engine.List(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, &ListIntakeSessionsResponse{Sessions: sessions})
}

// DeleteIntakeSession removes a session. Deleting a missing session succeeds.
// DELETE /api/v1/intake/sessions/:id
func (s *APIV1Service) DeleteIntakeSession(c echo.Context) error {
	if err := s.Engine.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError converts an engine error into an HTTP response.
func writeError(c echo.Context, err error) error {
	code := intakeerrors.GetCodeFromError(err, intakeerrors.ErrCodeInternal)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		slog.Error("intake request failed",
			slog.String("path", c.Path()),
			slog.String("code", string(code)),
			slog.String("error", err.Error()))
	}
	return c.JSON(status, errorResponse{Code: string(code), Error: err.Error()})
}

func statusForCode(code intakeerrors.ErrorCode) int {
	switch code {
	case intakeerrors.ErrCodeInvalidProvider, intakeerrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case intakeerrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case intakeerrors.ErrCodeSessionLocked:
		return http.StatusConflict
	case intakeerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case intakeerrors.ErrCodeProviderTimeout:
		return http.StatusGatewayTimeout
	case intakeerrors.ErrCodeProviderUnavailable,
		intakeerrors.ErrCodeProviderRateLimited,
		intakeerrors.ErrCodeProviderAuth,
		intakeerrors.ErrCodeExtractionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
