package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cppla/bbscontroller/config"
	"github.com/cppla/bbscontroller/controllers"
	"github.com/cppla/bbscontroller/middleware"
	"github.com/cppla/bbscontroller/service"
	"github.com/cppla/bbscontroller/utils"
)

// RPCPrefix is the path every RPC method is served under.
const RPCPrefix = "/rpc/"

// SetupRouter wires routes, middlewares, and controllers. rdb may be nil.
func SetupRouter(cfg config.AppConfig, svc *service.Service, rdb *redis.Client) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; fall back to the app logger without one
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, true))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", utils.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	counter := middleware.NewRequestCounter()
	r.Use(counter.Middleware(RPCPrefix))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	rpcController := controllers.NewRPCController(svc)
	statsController := controllers.NewStatsController(svc, counter)

	r.GET("/stats", middleware.ServiceTokenRequired(cfg.JWTSecret), statsController.GetStats)

	rpc := r.Group(strings.TrimSuffix(RPCPrefix, "/"))
	rpc.Use(middleware.ServiceTokenRequired(cfg.JWTSecret), middleware.NewRateLimiter(cfg.RateLimitPerMinute, rdb).Middleware())
	for name, h := range rpcController.Methods() {
		rpc.POST("/"+name, h)
	}

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, RPCPrefix) {
			utils.Fail(ctx, http.StatusNotFound, 40401, "UnknownMethod", "rpc method not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
