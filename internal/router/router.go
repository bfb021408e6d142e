package router

import (
	"fmt"
	"strings"

	"github.com/voltmart/voltmart-api/internal/cache"
	"github.com/voltmart/voltmart-api/internal/config"
	"github.com/voltmart/voltmart-api/internal/constants"
	adminhandlers "github.com/voltmart/voltmart-api/internal/http/handlers/admin"
	publichandlers "github.com/voltmart/voltmart-api/internal/http/handlers/public"
	"github.com/voltmart/voltmart-api/internal/logger"
	"github.com/voltmart/voltmart-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, try again later",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)
		}

		// 游客下单接口
		apiV1.POST("/orders", publicHandler.CreateOrder)
		apiV1.GET("/orders/:order_no", publicHandler.GetOrder)
		apiV1.POST("/promotions/preview", publicHandler.PreviewPromotion)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				// 仪表盘
				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				authorized.GET("/dashboard/top-promotions", adminHandler.GetDashboardTopPromotions)

				// 商品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 促销管理
				authorized.GET("/promotions", adminHandler.GetAdminPromotions)
				authorized.GET("/promotions/:id", adminHandler.GetAdminPromotion)
				authorized.POST("/promotions", adminHandler.CreatePromotion)
				authorized.PUT("/promotions/:id", adminHandler.UpdatePromotion)
				authorized.DELETE("/promotions/:id", adminHandler.DeletePromotion)
				authorized.PATCH("/promotions/:id/status", adminHandler.SetPromotionStatus)
				authorized.POST("/promotions/:id/products", adminHandler.AddPromotionProduct)
				authorized.DELETE("/promotions/:id/products/:product_id", adminHandler.RemovePromotionProduct)
				authorized.PUT("/promotions/:id/overrides", adminHandler.SetPromotionOverride)
				authorized.DELETE("/promotions/:id/overrides/:product_id", adminHandler.RemovePromotionOverride)
				authorized.POST("/promotion-sweeps", adminHandler.SweepPromotions)

				// 订单管理
				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:order_no", adminHandler.GetAdminOrder)
				authorized.POST("/orders/:id/paid", adminHandler.MarkOrderPaid)
				authorized.POST("/orders/:id/complete", adminHandler.MarkOrderCompleted)

				authorized.PUT("/password", adminHandler.UpdateAdminPassword) // 修改密码
			}
		}
	}

	return r
}
