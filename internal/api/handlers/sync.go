package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/service"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

// syncBatchRequest accepts runTotals as an object or as a JSON encoded string (form posts)
type syncBatchRequest struct {
	Offset    int             `json:"offset"`
	Limit     int             `json:"limit"`
	RunTotals json.RawMessage `json:"runTotals"`
}

func (r syncBatchRequest) totals() (domain.SyncRunTotals, error) {
	var totals domain.SyncRunTotals
	raw := bytes.TrimSpace(r.RunTotals)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return totals, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return totals, err
		}
		if encoded == "" {
			return totals, nil
		}
		raw = []byte(encoded)
	}
	err := json.Unmarshal(raw, &totals)
	return totals, err
}

// HandleSyncBatch handles POST /admin/sync/batch: runs one batch from the caller's offset and totals
func HandleSyncBatch(runner service.BatchRunner, defaultLimit int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req syncBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, &errors.ErrValidation{Message: "invalid request body: " + err.Error()}, logger)
			return
		}
		totals, err := req.totals()
		if err != nil {
			respondError(c, &errors.ErrValidation{Message: "invalid runTotals: " + err.Error()}, logger)
			return
		}
		if req.Limit == 0 {
			req.Limit = defaultLimit
		}

		res, err := runner.RunBatch(c.Request.Context(), service.BatchRequest{
			Offset:    req.Offset,
			Limit:     req.Limit,
			RunTotals: totals,
		})
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"batchId":   res.BatchID,
			"done":      res.Done,
			"summary":   res.Summary,
			"runTotals": res.RunTotals,
		})
	}
}

// HandleSyncRun handles POST /admin/sync/run?restart=true&max_batches=N
func HandleSyncRun(driver SyncRunner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := service.RunOptions{}
		if v := c.Query("restart"); v != "" {
			restart, err := strconv.ParseBool(v)
			if err != nil {
				respondError(c, &errors.ErrValidation{Message: "restart must be a boolean"}, logger)
				return
			}
			opts.Restart = restart
		}
		if v := c.Query("max_batches"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				respondError(c, &errors.ErrValidation{Message: "max_batches must be a non-negative integer"}, logger)
				return
			}
			opts.MaxBatches = n
		}

		cp, err := driver.Run(c.Request.Context(), opts)
		if err != nil {
			body := gin.H{"ok": false, "error": err.Error()}
			if cp != nil {
				body["checkpoint"] = cp
			}
			logger.Error("Grade sync run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "done": cp.Done, "checkpoint": cp})
	}
}

// HandleSyncCheckpoint handles GET /admin/sync/checkpoint
func HandleSyncCheckpoint(driver SyncRunner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cp, err := driver.Checkpoint(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "checkpoint": cp})
	}
}

// HandleSyncReset handles DELETE /admin/sync/checkpoint
func HandleSyncReset(driver SyncRunner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := driver.Reset(c.Request.Context()); err != nil {
			respondError(c, err, logger)
			return
		}
		logger.Info("Grade sync checkpoint reset")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
