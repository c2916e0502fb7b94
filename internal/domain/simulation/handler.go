package simulation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/anairr18/pediasignal-pilot-sub002/internal/domain/casebank"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/sessions", h.StartSession)
	api.GET("/sessions/:id", h.GetSessionState)
	api.DELETE("/sessions/:id", h.EndSession)
	api.POST("/sessions/:id/interventions", h.ApplyIntervention)
	api.POST("/sessions/:id/tick", h.Tick)
}

type startSessionRequest struct {
	CaseID    string `json:"caseId"`
	LearnerID string `json:"learnerId"`
}

func (h *Handler) StartSession(c echo.Context) error {
	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "caseId is required")
	}
	if req.LearnerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "learnerId is required")
	}

	session, err := h.svc.StartSession(c.Request().Context(), req.CaseID, req.LearnerID)
	if errors.Is(err, casebank.ErrCaseNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, session)
}

type applyInterventionRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ApplyIntervention(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	var req applyInterventionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	result, err := h.svc.ApplyIntervention(c.Request().Context(), id, req.Name)
	var invalid *InvalidInterventionError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, ErrSessionComplete):
		return echo.NewHTTPError(http.StatusConflict, "session already complete")
	case errors.As(err, &invalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, invalid.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

type tickRequest struct {
	DeltaSeconds float64 `json:"deltaSeconds"`
}

func (h *Handler) Tick(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	var req tickRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DeltaSeconds < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "deltaSeconds must be non-negative")
	}

	result, err := h.svc.Tick(c.Request().Context(), id, req.DeltaSeconds)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, ErrSessionComplete):
		return echo.NewHTTPError(http.StatusConflict, "session already complete")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetSessionState(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	state, err := h.svc.GetSessionState(c.Request().Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

func (h *Handler) EndSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	if err := h.svc.EndSession(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
