package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dcms/config"
	"dcms/internal/api/handler"
	"dcms/internal/api/middleware"
	"dcms/internal/model"
	"dcms/pkg/jwt"
	"dcms/pkg/redis"
)

// Setup builds the gin engine. rdb may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── Global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			authorized.GET("/users", adminOnly, h.User.ListUsers)

			cases := authorized.Group("/cases")
			{
				cases.GET("/schema", h.Case.Schema)
				cases.POST("/resolve", h.Case.Resolve)
				cases.GET("/search", h.Case.Search)
				cases.POST("/batch", h.Case.CreateBatch)
				cases.GET("", h.Case.List)
				cases.POST("", h.Case.Create)
				cases.GET("/:id", h.Case.Get)
				cases.PUT("/:id", h.Case.Update)
				cases.DELETE("/:id", adminOnly, h.Case.Delete)
			}

			batches := authorized.Group("/batches")
			{
				batches.POST("", h.Batch.Start)
				batches.GET("/:id", h.Batch.Get)
				batches.DELETE("/:id", h.Batch.Discard)
				batches.POST("/:id/entries", h.Batch.AddEntry)
				batches.DELETE("/:id/entries/:entryId", h.Batch.RemoveEntry)
				batches.POST("/:id/finalize", h.Batch.Finalize)
			}

			reports := authorized.Group("/reports")
			{
				reports.GET("/summary", h.Report.Summary)
				reports.GET("/buckets", h.Report.Buckets)
			}

			authorized.GET("/export/cases", h.Export.ExportCases)
			authorized.GET("/export/calendar", h.Export.ExportCalendar)
			authorized.POST("/import/cases", adminOnly, h.Export.ImportCases)
		}
	}

	return r
}
