package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"blast/pkg/loadgen"
	"blast/pkg/runs"
)

// APIHandler exposes the run manager over REST.
type APIHandler struct {
	manager *runs.Manager
	logger  zerolog.Logger
}

// StartRunRequest is the body of POST /runs.
type StartRunRequest struct {
	RunID  string         `json:"run_id" binding:"required"`
	Config loadgen.Config `json:"config" binding:"required"`
}

// StartRunResponse is returned when a run is accepted.
type StartRunResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
}

// StatusResponse reports whether a run is executing.
type StatusResponse struct {
	Status      string `json:"status"`
	ActiveRunID string `json:"active_run_id,omitempty"`
}

// ListRunsResponse is returned by GET /runs.
type ListRunsResponse struct {
	Runs  []runs.RunInfo `json:"runs"`
	Total int            `json:"total"`
}

// ErrorResponse is the error envelope for every non-2xx reply.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterRoutes attaches the API to the router.
func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/runs", h.StartRun)
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
	router.POST("/runs/:id/stop", h.StopRun)
	router.GET("/status", h.GetStatus)
	router.GET("/healthz", h.HealthCheck)
}

// StartRun begins a new load run asynchronously.
func (h *APIHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid_request",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if err := h.manager.Start(req.RunID, req.Config); err != nil {
		statusCode := http.StatusInternalServerError
		errorType := "internal_error"

		var cfgErr *loadgen.ConfigError
		switch {
		case errors.As(err, &cfgErr):
			statusCode = http.StatusBadRequest
			errorType = "invalid_configuration"
		case errors.Is(err, runs.ErrRunActive):
			statusCode = http.StatusConflict
			errorType = "run_active"
		default:
			statusCode = http.StatusConflict
			errorType = "run_exists"
		}

		c.JSON(statusCode, ErrorResponse{
			Error:     errorType,
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusCreated, StartRunResponse{
		RunID:     req.RunID,
		Status:    runs.StatusRunning,
		StartTime: time.Now(),
	})
}

// StopRun cancels the active run.
func (h *APIHandler) StopRun(c *gin.Context) {
	if c.Param("id") != h.manager.ActiveRunID() {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "run_not_active",
			Message:   "the requested run is not executing",
			Timestamp: time.Now(),
		})
		return
	}

	if err := h.manager.Stop(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "run_not_active",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: h.manager.Status()})
}

// GetRun returns a stored run record.
func (h *APIHandler) GetRun(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.manager.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     "run_not_found",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListRuns returns metadata for every stored run.
func (h *APIHandler) ListRuns(c *gin.Context) {
	infos, err := h.manager.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_error",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, ListRunsResponse{Runs: infos, Total: len(infos)})
}

// GetStatus reports whether a run is executing.
func (h *APIHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:      h.manager.Status(),
		ActiveRunID: h.manager.ActiveRunID(),
	})
}

// HealthCheck implements the health check endpoint
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
