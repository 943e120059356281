package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/efaktura-ingest/internal/ingest"
	"github.com/rezonia/efaktura-ingest/internal/model"
	"github.com/rezonia/efaktura-ingest/internal/parser/csvimport"
	"github.com/rezonia/efaktura-ingest/internal/parser/ubl"
	"github.com/rezonia/efaktura-ingest/internal/store"
)

// tenantHeader carries the tenant scope for every API call
const tenantHeader = "X-Tenant-ID"

// Config holds server configuration
type Config struct {
	Address         string
	DefaultCurrency string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	Debug           bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	parser   *ubl.Parser
	ingestor *ingest.Ingestor
	store    store.DocumentStore
	logger   zerolog.Logger
}

// NewServer creates a new API server over the given document store
func NewServer(config *Config, docStore store.DocumentStore, logger zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	currency := config.DefaultCurrency
	if currency == "" {
		currency = ubl.DefaultCurrency
	}

	s := &Server{
		config:   config,
		router:   router,
		parser:   ubl.NewParser(ubl.WithDefaultCurrency(currency)),
		ingestor: ingest.NewIngestor(docStore, ingest.WithLogger(logger)),
		store:    docStore,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Ingest endpoints
		v1.POST("/ingest/xml", s.handleIngestXML)
		v1.POST("/ingest/csv", s.handleIngestCSV)

		// Parse-only endpoint (no persistence)
		v1.POST("/parse", s.handleParse)

		// Document review endpoints
		v1.GET("/documents", s.handleListDocuments)
		v1.GET("/documents/:id", s.handleGetDocument)
		v1.POST("/documents/:id/approve", s.handleApprove)
		v1.POST("/documents/:id/reject", s.handleReject)
		v1.POST("/documents/:id/link", s.handleLink)
		v1.DELETE("/documents/:id", s.handleDelete)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// tenantID reads and validates the tenant header. Writes the error
// response itself; callers bail out when ok is false.
func (s *Server) tenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(tenantHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + tenantHeader + " header"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid tenant id", Details: err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func directionParam(c *gin.Context) model.Direction {
	if c.Query("direction") == string(model.DirectionSales) {
		return model.DirectionSales
	}
	return model.DirectionPurchase
}

func (s *Server) handleIngestXML(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	inv := s.parser.Parse(body)
	if inv == nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "malformed XML"})
		return
	}

	doc := inv.ToDocument(tenantID, directionParam(c))
	if c.Query("review") == "1" {
		// Manual review flow: document waits for an operator decision
		doc.Status = model.StatusPending
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.ingestor.ImportBatch(ctx, tenantID, []*model.ImportedDocument{doc})
	c.JSON(http.StatusOK, newIngestResponse(result))
}

func (s *Server) handleIngestCSV(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	currency := s.config.DefaultCurrency
	if currency == "" {
		currency = ubl.DefaultCurrency
	}
	importer := csvimport.NewImporter(
		csvimport.WithDirection(directionParam(c)),
		csvimport.WithCurrency(currency),
	)
	parsed := importer.Import(body, tenantID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result := s.ingestor.ImportBatch(ctx, tenantID, parsed.Documents)
	result.Errors = append(parsed.Errors, result.Errors...)
	c.JSON(http.StatusOK, newIngestResponse(result))
}

func (s *Server) handleParse(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	inv := s.parser.Parse(body)
	if inv == nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "malformed XML"})
		return
	}

	c.JSON(http.StatusOK, ParseResponse{Invoice: inv})
}

func (s *Server) handleListDocuments(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}

	filter := store.Filter{
		Status:    model.Status(c.Query("status")),
		Direction: model.Direction(c.Query("direction")),
	}

	docs, err := s.store.ListForTenant(c.Request.Context(), tenantID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "listing failed", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Documents: docs, Count: len(docs)})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document id"})
		return
	}

	doc, err := s.store.FindByID(c.Request.Context(), tenantID, id)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleApprove(c *gin.Context) {
	s.transition(c, model.StatusApproved, "")
}

func (s *Server) handleReject(c *gin.Context) {
	var req RejectRequest
	_ = c.ShouldBindJSON(&req)
	s.transition(c, model.StatusRejected, req.Reason)
}

// transition applies a review status change, enforcing the allowed
// transition graph
func (s *Server) transition(c *gin.Context, to model.Status, reason string) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document id"})
		return
	}

	doc, err := s.store.FindByID(c.Request.Context(), tenantID, id)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	if !doc.Status.CanTransition(to) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "invalid status transition from " + string(doc.Status) + " to " + string(to),
		})
		return
	}

	if err := s.store.UpdateStatus(c.Request.Context(), tenantID, id, to, reason); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLink(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document id"})
		return
	}

	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice id"})
		return
	}

	// Linking flips the document to imported, so it follows the same
	// transition graph as the review decisions. Already-imported documents
	// may be re-linked to replace the attachment.
	doc, err := s.store.FindByID(c.Request.Context(), tenantID, id)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	if doc.Status != model.StatusImported && !doc.Status.CanTransition(model.StatusImported) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "invalid status transition from " + string(doc.Status) + " to " + string(model.StatusImported),
		})
		return
	}

	if err := s.store.LinkInvoice(c.Request.Context(), tenantID, id, invoiceID); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDelete(c *gin.Context) {
	tenantID, ok := s.tenantID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document id"})
		return
	}

	if err := s.store.Delete(c.Request.Context(), tenantID, id); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage failure", Details: err.Error()})
}
