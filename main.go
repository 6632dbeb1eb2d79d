package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docschema/docschema/handlers"
	"github.com/docschema/docschema/internal/config"
	"github.com/docschema/docschema/internal/database"
	dochandler "github.com/docschema/docschema/internal/document/handler"
	docrepo "github.com/docschema/docschema/internal/document/repository"
	docsvc "github.com/docschema/docschema/internal/document/service"
	"github.com/docschema/docschema/internal/events"
	"github.com/docschema/docschema/internal/oidc"
	"github.com/docschema/docschema/internal/schemacache"
	"github.com/docschema/docschema/internal/storage"
	tplhandler "github.com/docschema/docschema/internal/template/handler"
	tplrepo "github.com/docschema/docschema/internal/template/repository"
	tplsvc "github.com/docschema/docschema/internal/template/service"
	"github.com/docschema/docschema/pkg/logger"
	"github.com/docschema/docschema/pkg/metrics"
	"github.com/docschema/docschema/pkg/middleware"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v nats=%v mode=%s",
		cfg.Keycloak.Issuer() != "", cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.MinIO.Enabled(), cfg.NATS.URL != "", cfg.Validation.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(cors(), gin.Logger(), gin.Recovery())

	checks := map[string]handlers.Check{}

	// Redis backs the schema cache and, optionally, the shared rate limiter.
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis: %s", addr)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var templateRepo tplrepo.Repository = tplrepo.NewMemoryRepo()
	var documentRepo docrepo.Repository = docrepo.NewMemoryRepo()
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, database.DefaultRetry, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		})
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		db := client.Database(cfg.MongoDB.Database)
		tcol, dcol := db.Collection(database.TemplatesCollection), db.Collection(database.DocumentsCollection)
		if err := tplrepo.EnsureIndexes(ctx, tcol); err != nil {
			logger.Warnf("template indexes: %v", err)
		}
		if err := docrepo.EnsureIndexes(ctx, dcol); err != nil {
			logger.Warnf("document indexes: %v", err)
		}
		templateRepo, documentRepo = tplrepo.NewMongoRepo(tcol), docrepo.NewMongoRepo(dcol)
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	} else {
		logger.Warn("MONGODB_URI not set, using in-memory repositories")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		np, err := events.ConnectNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logger.Warnf("events disabled: %v", err)
		} else {
			defer np.Close()
			publisher = np
			checks["nats"] = np.Ready
		}
	}

	tplOpts := []tplsvc.Option{tplsvc.WithPublisher(publisher)}
	if rdb != nil {
		tplOpts = append(tplOpts, tplsvc.WithCache(schemacache.NewRedisCache(rdb, cfg.SchemaCache.Prefix, cfg.SchemaCache.TTL)))
	}
	if cfg.MinIO.Enabled() {
		store, err := storage.NewMinIOStorage(&cfg.MinIO)
		if err != nil {
			logger.Fatalf("failed to configure MinIO: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warnf("schema export bucket %q: %v", cfg.MinIO.Bucket, err)
		}
		tplOpts = append(tplOpts, tplsvc.WithExporter(store))
		checks["minio"] = store.EnsureBucket
	}
	templates := tplsvc.New(templateRepo, tplOpts...)
	documents := docsvc.New(documentRepo, templates, docsvc.WithMode(cfg.Validation.Mode), docsvc.WithPublisher(publisher))

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialize OIDC verifier: %v", err)
	}

	handlers.RegisterHealth(r, checks)
	handlers.RegisterSwagger(r)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("/")
	authed.Use(middleware.TenantMiddleware(verifier))
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			authed.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			authed.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.RegisterSelfRoutes(authed, cfg)
	tplhandler.RegisterTemplateRoutes(authed, templates)
	dochandler.RegisterDocumentRoutes(authed, documents)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting docschema on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// newVerifier returns the token verifier for the tenant middleware, or nil
// when identity comes from trusted gateway headers.
func newVerifier(ctx context.Context, cfg *config.Config) (middleware.Verifier, error) {
	if issuer := cfg.Keycloak.Issuer(); issuer != "" && cfg.Keycloak.ClientID != "" {
		return oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
	}
	if cfg.AllowInsecureToken {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier(), nil
	}
	logger.Warnf("no token verifier configured, trusting %s header", middleware.HeaderCustomerID)
	return nil, nil
}

// Lightweight CORS middleware: set common headers and answer preflight requests.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+middleware.HeaderCustomerID+", "+middleware.HeaderCustomerName)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
