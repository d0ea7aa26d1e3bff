package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvsite/interactome/internal/cache"
	"github.com/dvsite/interactome/internal/config"
	"github.com/dvsite/interactome/internal/core"
	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/core/netfetch"
	"github.com/dvsite/interactome/internal/core/resolve"
	"github.com/dvsite/interactome/internal/driver"
	"github.com/dvsite/interactome/internal/stringdb"
)

type Server struct {
	App    *core.Interactome
	Config *config.Config
	Logger zerolog.Logger
}

func NewServer(logger zerolog.Logger) *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfgPath).Msg("could not load config file, using defaults")
		cfg = config.Default()
	}

	// Env vars win over the file (simple override logic)
	if v := os.Getenv("STRINGDB_BASE_URL"); v != "" {
		cfg.StringDB.BaseURL = v
	}
	if v := os.Getenv("STRINGDB_CALLER_IDENTITY"); v != "" {
		cfg.StringDB.CallerIdentity = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("failed to initialize network cache")
	}

	client := stringdb.NewClient(stringdb.Config{
		BaseURL:           cfg.StringDB.BaseURL,
		Timeout:           secondsToDuration(cfg.StringDB.TimeoutSeconds),
		RequestsPerSecond: cfg.StringDB.RequestsPerSecond,
		Burst:             cfg.StringDB.Burst,
		CallerIdentity:    cfg.StringDB.CallerIdentity,
	}, logger)

	return &Server{
		App:    core.NewInteractome(client, store, logger),
		Config: cfg,
		Logger: logger,
	}
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func buildStore(cfg *config.Config, logger zerolog.Logger) (cache.NetworkStore, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		return cache.NewRedisStore(client), nil
	case "memgraph":
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			return nil, err
		}
		if err := d.BuildIndices(context.Background()); err != nil {
			return nil, err
		}
		return cache.NewMemgraphStore(d), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/resolve", s.ResolveIdentifiers)
	api.POST("/network", s.GetNetwork)
	api.POST("/network/invalidate", s.InvalidateNetwork)

	return r
}

type ResolveRequest struct {
	Terms   []string `json:"terms"`
	Species int      `json:"species"`
}

func (s *Server) ResolveIdentifiers(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Species == 0 {
		req.Species = s.Config.Defaults.SpeciesTaxonomyID
	}

	outcomes, err := s.App.ResolveIdentifiers(c.Request.Context(), req.Terms, req.Species)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

type NetworkRequest struct {
	Terms               []string `json:"terms"`
	Species             int      `json:"species"`
	ConfidenceThreshold *int     `json:"confidence_threshold"`
	NetworkType         string   `json:"network_type"`
	ForceRefresh        bool     `json:"force_refresh"`
}

func (s *Server) networkOptions(req NetworkRequest) (netfetch.Options, error) {
	netType, err := model.ParseNetworkType(req.NetworkType)
	if err != nil {
		return netfetch.Options{}, err
	}
	threshold := s.Config.Defaults.ConfidenceThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}
	species := req.Species
	if species == 0 {
		species = s.Config.Defaults.SpeciesTaxonomyID
	}
	return netfetch.Options{
		ConfidenceThreshold: threshold,
		NetworkType:         netType,
		SpeciesTaxonomyID:   species,
		ForceRefresh:        req.ForceRefresh,
	}, nil
}

func (s *Server) GetNetwork(c *gin.Context) {
	var req NetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	opts, err := s.networkOptions(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.App.GetNetwork(c.Request.Context(), req.Terms, opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) InvalidateNetwork(c *gin.Context) {
	var req NetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	opts, err := s.networkOptions(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.App.InvalidateNetwork(c.Request.Context(), req.Terms, opts); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

// writeError maps the core error taxonomy onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var resolveVal *resolve.ValidationError
	var fetchVal *netfetch.ValidationError
	switch {
	case errors.As(err, &resolveVal), errors.As(err, &fetchVal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, netfetch.ErrNoResolvableIdentifiers):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case netfetch.Retryable(err):
		s.Logger.Warn().Err(err).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
	default:
		s.Logger.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
