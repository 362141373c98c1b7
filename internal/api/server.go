package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/guarzo/cardprice/internal/cache"
	"github.com/guarzo/cardprice/internal/ebay"
	"github.com/guarzo/cardprice/internal/model"
	"github.com/guarzo/cardprice/internal/pricing"
)

// Estimator is the pricing surface the HTTP layer depends on
type Estimator interface {
	EstimatePrice(ctx context.Context, fields model.CardFields) (*model.PriceEstimate, error)
	CacheStats() cache.Stats
}

// Ensure the pricing service satisfies Estimator
var _ Estimator = (*pricing.Service)(nil)

type Server struct {
	router    *gin.Engine
	estimator Estimator
	logger    logrus.FieldLogger
}

// NewServer builds the router. gin's mode is left to the caller.
func NewServer(estimator Estimator, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		router:    gin.New(),
		estimator: estimator,
		logger:    logger.WithField("component", "api"),
	}

	s.router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(s.logger))
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/check", s.Check)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/price", s.EstimatePrice)
		v1.GET("/price/cache", s.CacheStats)
	}
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// priceRequest accepts both the short field names and the card_* names
// used by the extraction pipeline.
type priceRequest struct {
	Name       string `json:"name"`
	Series     string `json:"series"`
	CardSeries string `json:"card_series"`
	Number     string `json:"number"`
	CardNumber string `json:"card_number"`
	Type       string `json:"type"`
	CardType   string `json:"card_type"`
}

func (r priceRequest) fields() model.CardFields {
	return model.CardFields{
		Name:   r.Name,
		Series: firstNonEmpty(r.CardSeries, r.Series),
		Number: firstNonEmpty(r.CardNumber, r.Number),
		Type:   firstNonEmpty(r.CardType, r.Type),
	}
}

func (s *Server) EstimatePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	estimate, err := s.estimator.EstimatePrice(c.Request.Context(), req.fields())
	if err != nil {
		c.Error(err)
		status, message := errorStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, estimate)
}

func (s *Server) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.estimator.CacheStats())
}

// errorStatus maps pricing failures to HTTP responses
func errorStatus(err error) (int, string) {
	var (
		invalid *pricing.InvalidQueryError
		noSales *pricing.NoSalesDataError
		authErr *ebay.AuthError
		cfgErr  *ebay.ConfigError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case errors.As(err, &noSales):
		return http.StatusNotFound, noSales.Error()
	case errors.As(err, &authErr):
		return http.StatusBadGateway, "marketplace authentication failed"
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, "pricing is not configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "pricing timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
