// Package api exposes the advisor over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xaenox/recycle-bot/internal/advisor"
	"github.com/xaenox/recycle-bot/internal/imageinput"
	"github.com/xaenox/recycle-bot/internal/models"
	"github.com/xaenox/recycle-bot/internal/services"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Handler struct {
	analyses *services.AnalysisService
	logger   *zap.Logger
}

func NewHandler(analyses *services.AnalysisService, logger *zap.Logger) *Handler {
	return &Handler{analyses: analyses, logger: logger}
}

// AdviceRequest carries either ranked predictions or a single label.
type AdviceRequest struct {
	Predictions []advisor.Prediction `json:"predictions"`
	Label       *string              `json:"label"`
}

type ClassifyResponse struct {
	Analysis *models.Analysis `json:"analysis"`
	Advice   advisor.Advice   `json:"advice"`
}

// NewRouter registers all routes on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/advice", h.AdviceHandler)
	v1.POST("/classify", h.ClassifyHandler)
	v1.GET("/users/:id/history", h.HistoryHandler)
	v1.GET("/users/:id/stats", h.StatsHandler)
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()))
	}
}

// AdviceHandler computes advice without classifying or storing anything.
func (h *Handler) AdviceHandler(c *gin.Context) {
	var req AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var advice advisor.Advice
	switch {
	case len(req.Predictions) > 0:
		advice = advisor.Advise(req.Predictions)
	case req.Label != nil:
		advice = advisor.AdviseLabel(*req.Label)
	default:
		// empty predictions are treated as unrecognized
		advice = advisor.Advise(nil)
	}
	c.JSON(http.StatusOK, gin.H{"data": advice})
}

// ClassifyHandler accepts a multipart "image" field and an optional "user_id".
func (h *Handler) ClassifyHandler(c *gin.Context) {
	var userID int64
	if raw := c.PostForm("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			BadRequest(c, "user_id must be an integer")
			return
		}
		userID = id
	}

	fh, err := c.FormFile("image")
	if err != nil {
		InvalidImage(c, "missing image field")
		return
	}
	if fh.Size > h.analyses.MaxImageBytes() {
		TooLarge(c, "image exceeds size limit")
		return
	}

	f, err := fh.Open()
	if err != nil {
		Internal(c, "failed to open upload")
		return
	}
	defer f.Close()

	data, _, err := imageinput.Read(f, h.analyses.MaxImageBytes())
	if err != nil {
		h.respondImageError(c, err)
		return
	}

	analysis, err := h.analyses.AnalyzeImage(c.Request.Context(), services.ImageRequest{
		UserID:  userID,
		Source:  models.APIUpload,
		Image:   data,
		Caption: c.PostForm("caption"),
	})
	if err != nil {
		h.respondImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ClassifyResponse{
		Analysis: analysis,
		Advice: advisor.Advice{
			Categories:          analysis.Categories,
			Recommendation:      analysis.Recommendation,
			DisposalInstruction: analysis.DisposalInstruction,
		},
	}})
}

func (h *Handler) respondImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imageinput.ErrTooLarge):
		TooLarge(c, err.Error())
	case errors.Is(err, imageinput.ErrNotImage), errors.Is(err, imageinput.ErrEmptyImage):
		InvalidImage(c, err.Error())
	case errors.Is(err, services.ErrClassification):
		h.logger.Warn("Classifier failed for API upload", zap.Error(err))
		BadGateway(c, "image could not be classified")
	default:
		h.logger.Error("Failed to analyze upload", zap.Error(err))
		Internal(c, "failed to analyze image")
	}
}

func (h *Handler) HistoryHandler(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", defaultHistoryLimit)
	if err != nil || limit <= 0 || limit > maxHistoryLimit {
		BadRequest(c, "limit must be between 1 and 100")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		BadRequest(c, "offset must be a non-negative integer")
		return
	}

	items, err := h.analyses.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err), zap.Int64("user_id", userID))
		Internal(c, "failed to list history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) StatsHandler(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	stats, err := h.analyses.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err), zap.Int64("user_id", userID))
		Internal(c, "failed to get stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
