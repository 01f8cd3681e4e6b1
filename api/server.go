// Package api serves the product catalog over HTTP. Clients narrow the list
// with query parameters; each parameter names a whitelisted filter and the
// filters run in the order the parameters appear.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asaidimu/go-sieve/catalog"
	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	// Permitted restricts which query keys reach the chain. Other keys are
	// dropped before filtering. Empty passes every key through, so unknown
	// keys are rejected by the registry.
	Permitted []string
	// Gatherer backs GET /metrics. Nil uses the default gatherer.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server handles catalog requests.
type Server struct {
	chain     *filter.Chain[*query.QueryBuilder]
	store     *sqlite.Store
	permitted []string
	logger    *zap.Logger
	router    *gin.Engine
}

// NewServer creates a Server that narrows store queries with chain.
func NewServer(chain *filter.Chain[*query.QueryBuilder], store *sqlite.Store, opts Options) (*Server, error) {
	if chain == nil {
		return nil, fmt.Errorf("server requires a filter chain")
	}
	if store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		chain:     chain,
		store:     store,
		permitted: opts.Permitted,
		logger:    logger,
		router:    gin.New(),
	}
	s.router.Use(gin.Recovery(), requestLogger(logger))
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/filters", s.handleFilters)
	s.router.GET("/products", s.handleListProducts)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	writeSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleFilters(c *gin.Context) {
	registry := s.chain.Registry()
	writeSuccess(c, http.StatusOK, gin.H{
		"registry": registry.Name(),
		"filters":  registry.Names(),
	})
}

func (s *Server) handleListProducts(c *gin.Context) {
	requests, err := filter.ParseQuery(c.Request.URL.RawQuery)
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidQuery, "Malformed query string", err.Error())
		return
	}
	if len(s.permitted) > 0 {
		requests = requests.Only(s.permitted...)
	}

	qb, err := s.chain.Apply(query.NewQueryBuilder(), requests)
	if err != nil {
		s.writeFilterError(c, err)
		return
	}
	if len(qb.Build().Sort) == 0 {
		qb = qb.Clone().OrderByAsc("created_at")
	}

	docs, err := s.store.Find(c.Request.Context(), qb)
	if err != nil {
		s.logger.Error("Failed to read products", zap.Error(err))
		writeError(c, http.StatusInternalServerError, CodeReadFailed, "Failed to read products", err.Error())
		return
	}

	products := make([]catalog.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := catalog.FromDocument(doc)
		if err != nil {
			s.logger.Error("Failed to decode product", zap.Error(err))
			writeError(c, http.StatusInternalServerError, CodeReadFailed, "Failed to decode product", err.Error())
			return
		}
		products = append(products, p)
	}
	writeSuccess(c, http.StatusOK, products)
}

func (s *Server) writeFilterError(c *gin.Context, err error) {
	var unknown *filter.UnknownFilterError
	var invalid *filter.InvalidValueError
	switch {
	case errors.As(err, &unknown):
		writeError(c, http.StatusBadRequest, CodeUnknownFilter, fmt.Sprintf("Filter '%s' is not supported", unknown.Name), err.Error())
	case errors.As(err, &invalid):
		writeError(c, http.StatusBadRequest, CodeInvalidValue, fmt.Sprintf("Invalid value for filter '%s'", invalid.Filter), err.Error())
	default:
		s.logger.Error("Filter chain failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, CodeFilterFailed, "Failed to apply filters", err.Error())
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		)
	}
}
