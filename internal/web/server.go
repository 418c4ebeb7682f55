// Package web exposes the JSON API: wallet analysis, comparison, quota
// status, and health.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/clients"
	"github.com/walletstory/walletstory/internal/domain"
	"github.com/walletstory/walletstory/internal/quota"
	"github.com/walletstory/walletstory/internal/services/analyzer"
)

const shutdownTimeout = 5 * time.Second

// WalletAnalyzer is the analysis engine the server fronts.
type WalletAnalyzer interface {
	Analyze(ctx context.Context, address string) (domain.AnalysisResult, error)
	Compare(ctx context.Context, address1, address2 string) (domain.ComparisonResult, error)
}

// QuotaTracker is the per-day analysis limiter.
type QuotaTracker interface {
	Peek() quota.Status
	Consume()
}

// Server wires the HTTP routes.
type Server struct {
	addr     string
	analyzer WalletAnalyzer
	quota    QuotaTracker
	logger   *zap.Logger
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, wa WalletAnalyzer, qt QuotaTracker, logger *zap.Logger) *Server {
	return &Server{addr: addr, analyzer: wa, quota: qt, logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.GET("/quota", s.handleQuota)

	limited := api.Group("", s.quotaGate())
	limited.POST("/analyze", s.handleAnalyze)
	limited.POST("/compare", s.handleCompare)

	return router
}

// Handler returns the configured http.Handler, for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleQuota(c *gin.Context) {
	c.JSON(http.StatusOK, s.quota.Peek())
}

type analyzeRequest struct {
	Address string `json:"address" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), req.Address)
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	s.quota.Consume()
	c.JSON(http.StatusOK, result)
}

type compareRequest struct {
	Address1 string `json:"address1" binding:"required"`
	Address2 string `json:"address2" binding:"required"`
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address1 and address2 are required"})
		return
	}

	comparison, err := s.analyzer.Compare(c.Request.Context(), req.Address1, req.Address2)
	if err != nil {
		s.writeAnalysisError(c, err)
		return
	}

	s.quota.Consume()
	c.JSON(http.StatusOK, comparison)
}

func (s *Server) writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analyzer.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address format. Please provide a valid Ethereum address."})
	case errors.Is(err, analyzer.ErrNoHistory):
		c.JSON(http.StatusNotFound, gin.H{"error": "This wallet has no transaction history."})
	case errors.Is(err, clients.ErrEtherscanRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "API rate limit reached. Please try again in a few minutes."})
	default:
		s.logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "An unexpected error occurred while analyzing the wallet."})
	}
}

// quotaGate rejects requests once today's analysis quota is spent. The
// counter itself is consumed by the handlers after a successful analysis.
func (s *Server) quotaGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := s.quota.Peek()

		c.Header("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
		c.Header("X-RateLimit-Reset", status.ResetTime)

		if !status.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Daily analysis limit reached.",
				"reset_time": status.ResetTime,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
