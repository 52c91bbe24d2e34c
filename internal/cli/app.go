package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docmanager/internal/config"
	"github.com/gogotex/docmanager/internal/database"
	"github.com/gogotex/docmanager/internal/document/handler"
	"github.com/gogotex/docmanager/internal/document/repository"
	"github.com/gogotex/docmanager/internal/document/service"
	"github.com/gogotex/docmanager/internal/storage"
	"github.com/gogotex/docmanager/pkg/logger"
	"github.com/gogotex/docmanager/pkg/metrics"
	"github.com/gogotex/docmanager/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const connectAttempts = 5

// App owns the service, its backing connections and the HTTP router.
type App struct {
	cfg      *config.Config
	svc      service.Service
	redis    *redis.Client
	mongo    *mongo.Client
	exporter handler.Exporter
	router   *gin.Engine
	started  time.Time
}

// NewApp connects the configured backends and builds the router.
// Redis used only for rate limiting and MinIO are optional: failures there
// are logged and the service starts without them.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{cfg: cfg, started: time.Now()}

	if cfg.Redis.Host != "" {
		client, err := database.ConnectRedisWithRetry(ctx, database.RedisOptions{
			Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB,
		}, connectAttempts)
		if err != nil {
			if cfg.Store.Backend == config.BackendRedis {
				return nil, err
			}
			logger.Warnf("redis unavailable, rate limiter falls back to memory: %v", err)
		} else {
			a.redis = client
		}
	}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		a.svc = service.NewRedisService(a.redis, cfg.Redis.Prefix)
	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, connectAttempts)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mongo = client
		a.svc = service.NewMongoService(client.Database(cfg.MongoDB.Database))
	case config.BackendMemory:
		a.svc = service.NewMemoryService()
	default:
		a.Close()
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownBackend, cfg.Store.Backend)
	}

	if cfg.MinIO.Endpoint != "" {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("minio unavailable, export disabled: %v", err)
		} else {
			a.exporter = storage.NewExporter(st)
			logger.Infof("snapshot exports go to bucket %s", st.Bucket())
		}
	}

	a.router = a.newRouter(prometheus.NewRegistry())
	logger.WithFields(map[string]interface{}{
		"backend": a.svc.Backend(),
		"redis":   a.redis != nil,
		"mongo":   a.mongo != nil,
		"export":  a.exporter != nil,
	}).Info("document service configured")
	return a, nil
}

func (a *App) Router() *gin.Engine       { return a.router }
func (a *App) Service() service.Service { return a.svc }

// Close releases backend connections.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.mongo.Disconnect(ctx)
	}
}

func (a *App) newRouter(reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if rl := a.cfg.RateLimit; rl.Enabled {
		if rl.UseRedis && a.redis != nil {
			win := time.Duration(rl.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(a.redis, rl.RPS, rl.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", a.ready)

	metrics.RegisterCollectors(reg)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.RegisterSwagger(r)
	handler.RegisterDocumentRoutes(r, a.svc, a.exporter)
	return r
}

// ready returns 200 only when the store backend answers.
func (a *App) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	deps := map[string]bool{}
	switch a.svc.Backend() {
	case config.BackendRedis:
		deps["store"] = a.redis != nil && a.redis.Ping(ctx).Err() == nil
	case config.BackendMongo:
		deps["store"] = a.mongo != nil && a.mongo.Ping(ctx, nil) == nil
	default:
		deps["store"] = true
	}
	if !deps["store"] {
		ready = false
	}
	if a.cfg.Redis.Host != "" {
		deps["redis"] = a.redis != nil
	}
	if a.cfg.MinIO.Endpoint != "" {
		deps["export"] = a.exporter != nil
	}

	body := gin.H{"deps": deps, "backend": a.svc.Backend(), "uptime": time.Since(a.started).String()}
	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
