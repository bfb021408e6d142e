package provider

import (
	"github.com/voltmart/voltmart-api/internal/cache"
	"github.com/voltmart/voltmart-api/internal/config"
	"github.com/voltmart/voltmart-api/internal/logger"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/queue"
	"github.com/voltmart/voltmart-api/internal/repository"
	"github.com/voltmart/voltmart-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo     repository.AdminRepository
	ProductRepo   repository.ProductRepository
	CategoryRepo  repository.CategoryRepository
	PromotionRepo repository.PromotionRepository
	OrderRepo     repository.OrderRepository
	DashboardRepo repository.DashboardRepository

	// Services
	AuthService           *service.AuthService
	ProductService        *service.ProductService
	CategoryService       *service.CategoryService
	PromotionEngine       *service.PromotionEngine
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
	OrderService          *service.OrderService
	DashboardService      *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.ProductRepo)
	c.PromotionEngine = service.NewPromotionEngine()
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.PromotionEngine)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.ProductRepo, c.CategoryRepo, c.PromotionEngine)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.PromotionRepo,
		c.PromotionEngine,
		c.QueueClient,
		c.Config.Order.PaymentExpireMinutes,
	)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
