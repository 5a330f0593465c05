package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nonsonwune/scopequery/export"
	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery"
	"github.com/nonsonwune/scopequery/rolefilter"
)

// APIHandler holds the dependencies for API handlers, like the query engine
type APIHandler struct {
	Engine *nlquery.NLQueryEngine
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(engine *nlquery.NLQueryEngine) *APIHandler {
	return &APIHandler{
		Engine: engine,
	}
}

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	AdminID  string `json:"admin_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// NewRouter wires every route onto a gin engine.
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestMetrics())

	api := router.Group("/api")
	{
		// Admin routes
		api.GET("/admins", h.GetAllAdmins)
		api.GET("/admins/:adminId/scope", h.GetAdminScope)

		// Query routes
		api.POST("/query", h.Query)
		api.POST("/query/export", h.ExportQuery)

		api.GET("/ping", PingHandler)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// --- Admin Handlers ---

// GetAllAdmins handles GET /api/admins
func (h *APIHandler) GetAllAdmins(c *gin.Context) {
	admins := h.Engine.Store().Admins()
	if admins == nil {
		// Return empty list instead of null for JSON consistency
		c.JSON(http.StatusOK, []models.AdminProfile{})
		return
	}
	c.JSON(http.StatusOK, admins)
}

// GetAdminScope handles GET /api/admins/:adminId/scope
func (h *APIHandler) GetAdminScope(c *gin.Context) {
	adminID := c.Param("adminId")
	admin, err := h.Engine.Store().AdminByID(adminID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"admin": admin,
		"scope": rolefilter.Describe(admin),
		"stats": rolefilter.Stats(h.Engine.Store().Students(), admin),
	})
}

// --- Query Handlers ---

// Query handles POST /api/query
func (h *APIHandler) Query(c *gin.Context) {
	resp, ok := h.runQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query_id": resp.QueryID,
		"scope":    resp.Scope,
		"spec":     resp.Spec,
		"result":   resp.Result,
		"summary":  resp.Result.Summary(),
		"notice":   resp.Notice,
	})
}

// ExportQuery handles POST /api/query/export?format=csv|xlsx
func (h *APIHandler) ExportQuery(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", export.FormatCSV))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, ok := h.runQuery(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	if format == export.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, resp.Result)
	} else {
		err = export.WriteCSV(&buf, resp.Result)
	}
	if err != nil {
		log.Printf("Error in ExportQuery handler for query %s: %v", resp.QueryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export results"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(resp.QueryID, format)+`"`)
	c.Header("X-Query-ID", resp.QueryID)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// runQuery binds the request and answers it, writing the error response itself
// when it returns false.
func (h *APIHandler) runQuery(c *gin.Context) (*nlquery.QueryResponse, bool) {
	start := time.Now()

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return nil, false
	}

	resp, err := h.Engine.ProcessQueryFor(c.Request.Context(), req.AdminID, req.Question)
	if err != nil {
		var parseErr *models.QueryParseError
		switch {
		case errors.Is(err, models.ErrAdminNotFound):
			observeQuery(outcomeNotFound, start)
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		case errors.As(err, &parseErr):
			observeQuery(outcomeParseError, start)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": parseErr.UserMessage(), "detail": parseErr.Err.Error()})
		default:
			log.Printf("Error in query handler: %v", err)
			observeQuery(outcomeError, start)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run query"})
		}
		return nil, false
	}

	switch {
	case resp.Result.Empty != nil && resp.Result.Empty.Stage == models.StageScope:
		observeQuery(outcomeEmptyScope, start)
	case resp.Result.Empty != nil:
		observeQuery(outcomeEmptyResult, start)
	default:
		observeQuery(outcomeOK, start)
	}
	return resp, true
}

// PingHandler handles GET /api/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
