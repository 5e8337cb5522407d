package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-posts/config"
	_ "github.com/d60-Lab/gin-posts/docs"
	"github.com/d60-Lab/gin-posts/internal/api/handler"
	"github.com/d60-Lab/gin-posts/pkg/metrics"
	"github.com/d60-Lab/gin-posts/pkg/middleware"
)

// Options 路由构建选项
type Options struct {
	Server        config.ServerConfig
	RateLimit     config.RateLimitConfig
	Tracing       config.TracingConfig
	SentryEnabled bool
}

// SetupRouter 组装中间件与路由
func SetupRouter(h *handler.Handler, opts Options) *gin.Engine {
	if opts.Server.Mode != "" {
		gin.SetMode(opts.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	if opts.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing.Enabled {
		r.Use(otelgin.Middleware(opts.Tracing.ServiceName))
	}
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	// 只压缩有响应体的读接口；201/200 的写接口必须保持空 body
	compress := func(c *gin.Context) { c.Next() }
	if opts.Server.Gzip {
		compress = gzip.Gzip(gzip.DefaultCompression)
	}

	r.GET("/healthz", h.Health)
	r.GET("/metrics", compress, gin.WrapH(metrics.Handler()))
	if opts.Server.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	posts := r.Group("/posts")
	posts.Use(middleware.RateLimit(opts.RateLimit.RPS, opts.RateLimit.Burst))
	{
		posts.GET("", compress, h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.DELETE("/:id", h.DeletePost)
	}
	return r
}
