package rest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/api/middleware"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/export"
	"github.com/feral-file/gpp-indexer/internal/logger"
	internalTemporal "github.com/feral-file/gpp-indexer/internal/providers/temporal"
	"github.com/feral-file/gpp-indexer/internal/store"
	"github.com/feral-file/gpp-indexer/internal/workflows"
)

const (
	// CSV_FILENAME is the attachment name of the CSV export
	CSV_FILENAME = "kenya_gpp_data.csv"
	// manualRunTimeout bounds an on-demand update workflow
	manualRunTimeout = 3 * time.Hour
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /healthz
	HealthCheck(c *gin.Context)

	// GetState returns the watermark and the processed source units
	// GET /v1/state
	GetState(c *gin.Context)

	// GetTable returns the wide table as JSON
	// GET /v1/table
	GetTable(c *gin.Context)

	// GetTableCSV returns the wide table as CSV, one column per month
	// GET /v1/table.csv
	GetTableCSV(c *gin.Context)

	// GetRegion returns a single row of the wide table
	// GET /v1/regions/:key
	GetRegion(c *gin.Context)

	// TriggerUpdate starts an update workflow
	// POST /v1/updates
	TriggerUpdate(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	tables       store.Reader
	orchestrator internalTemporal.TemporalOrchestrator
	taskQueue    string
}

// NewHandler creates a new REST API handler. A nil orchestrator disables TriggerUpdate.
func NewHandler(tables store.Reader, orchestrator internalTemporal.TemporalOrchestrator, taskQueue string) Handler {
	return &handler{
		tables:       tables,
		orchestrator: orchestrator,
		taskQueue:    taskQueue,
	}
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "gpp-indexer",
	})
}

func (h *handler) GetState(c *gin.Context) {
	state, err := h.tables.GetRunState(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Failed to read run state")
		return
	}
	if state == nil {
		respondNotFound(c, "No update has completed yet")
		return
	}

	c.JSON(http.StatusOK, toStateResponse(state))
}

func (h *handler) GetTable(c *gin.Context) {
	table, err := h.tables.GetWideTable(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Failed to read wide table")
		return
	}

	c.JSON(http.StatusOK, toTableResponse(table))
}

func (h *handler) GetTableCSV(c *gin.Context) {
	table, err := h.tables.GetWideTable(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Failed to read wide table")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		respondInternalError(c, err, "Failed to render CSV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, CSV_FILENAME))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *handler) GetRegion(c *gin.Context) {
	key := domain.RegionKey(c.Param("key"))
	if key == "" {
		respondBadRequest(c, "Region key is required")
		return
	}

	table, err := h.tables.GetWideTable(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Failed to read wide table", zap.String("region_key", string(key)))
		return
	}

	if table != nil {
		if row, ok := table.Row(key); ok {
			c.JSON(http.StatusOK, toRegionResponse(*row))
			return
		}
	}

	respondNotFound(c, domain.ErrRegionNotFound.Error(), string(key))
}

func (h *handler) TriggerUpdate(c *gin.Context) {
	if h.orchestrator == nil {
		respondWithError(c, http.StatusServiceUnavailable, errCodeServiceUnavailable, "Workflow orchestration is not configured")
		return
	}

	var req TriggerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	w := workflows.NewWorker(nil, workflows.WorkerConfig{})
	options := client.StartWorkflowOptions{
		ID:                       workflows.MANUAL_WORKFLOW_ID_PREFIX + ulid.Make().String(),
		TaskQueue:                h.taskQueue,
		WorkflowExecutionTimeout: manualRunTimeout,
	}

	run, err := h.orchestrator.ExecuteWorkflow(c.Request.Context(), options, w.UpdateGPPTable,
		workflows.UpdateRequest{Force: req.Force, Trigger: workflows.TRIGGER_API})
	if err != nil {
		respondWithError(c, http.StatusBadGateway, errCodeServiceUnavailable, "Failed to start update", err.Error())
		return
	}

	logger.InfoCtx(c.Request.Context(), "Triggered update",
		zap.String("workflow_id", run.GetID()),
		zap.Bool("force", req.Force),
		zap.String("auth_method", c.GetString(middleware.AUTH_METHOD_KEY)),
		zap.String("auth_subject", c.GetString(middleware.AUTH_SUBJECT_KEY)),
	)

	c.JSON(http.StatusAccepted, TriggerUpdateResponse{
		WorkflowID: run.GetID(),
		RunID:      run.GetRunID(),
	})
}
