package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/logger"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/queue"
	"github.com/voltmart/voltmart-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单业务服务
// 结算时应用促销定价，并维护促销的使用次数与营收累计。
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	engine        *PromotionEngine
	queueClient   *queue.Client
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	engine *PromotionEngine,
	queueClient *queue.Client,
	expireMinutes int,
) *OrderService {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		engine:        engine,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
	}
}

// CheckoutItemInput 结算单项输入
type CheckoutItemInput struct {
	ProductID uint
	Quantity  int
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	Email         string
	Currency      string
	PromotionCode string
	Items         []CheckoutItemInput
}

// Checkout 创建订单
// 定价规则：提供促销码时仅解析该促销；否则在活跃促销中取最优。
// 促销使用统计与订单创建在同一事务内完成。
func (s *OrderService) Checkout(input CheckoutInput) (*models.Order, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || len(input.Items) == 0 {
		return nil, ErrOrderInvalid
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderItemInvalid
		}
	}

	now := time.Now()
	candidates, err := s.loadCandidates(input.PromotionCode)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}

	order := &models.Order{
		OrderNo:  generateOrderNo(),
		Email:    email,
		Status:   constants.OrderStatusPendingPayment,
		Currency: currency,
	}

	original := decimal.Zero
	total := decimal.Zero
	// 促销 ID -> 归属营收
	promotionRevenue := make(map[uint]decimal.Decimal)

	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotFound
		}
		if product.Stock < item.Quantity {
			return nil, ErrStockInsufficient
		}

		resolved, err := s.engine.ResolveBest(candidates, product, now, GateStatusAndWindow)
		if err != nil {
			return nil, err
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		lineOriginal := product.PriceAmount.Decimal.Mul(quantity)
		lineTotal := resolved.FinalPrice.Decimal.Mul(quantity)
		original = original.Add(lineOriginal)
		total = total.Add(lineTotal)

		orderItem := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.PriceAmount,
			FinalPrice:  resolved.FinalPrice,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		}
		if resolved.Applies {
			promotionID := resolved.PromotionID
			orderItem.PromotionID = &promotionID
			promotionRevenue[promotionID] = promotionRevenue[promotionID].Add(lineTotal)
		}
		order.Items = append(order.Items, orderItem)
	}

	order.OriginalAmount = models.NewMoneyFromDecimal(original)
	order.TotalAmount = models.NewMoneyFromDecimal(total)
	order.DiscountAmount = models.NewMoneyFromDecimal(original.Sub(total))

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrStockInsufficient
			}
		}
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		promotionRepo := s.promotionRepo.WithTx(tx)
		for promotionID, revenue := range promotionRevenue {
			if err := promotionRepo.IncrementUsage(promotionID, models.NewMoneyFromDecimal(revenue)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueOrderTimeoutCancel(
		queue.OrderTimeoutCancelPayload{OrderID: order.ID},
		time.Duration(s.expireMinutes)*time.Minute,
	); err != nil {
		logger.Warnw("order_timeout_enqueue_failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// loadCandidates 加载参与定价的促销集合
func (s *OrderService) loadCandidates(code string) ([]models.Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.promotionRepo.ListByStatus(constants.PromotionStatusActive)
	}
	promotion, err := s.promotionRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	if !Usable(promotion, time.Now(), GateStatusAndWindow) {
		return nil, ErrPromotionNotUsable
	}
	return []models.Promotion{*promotion}, nil
}

// GetByOrderNo 查询订单
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 获取订单列表（后台）
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// MarkPaid 标记订单已支付
func (s *OrderService) MarkPaid(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil, ErrOrderStatusInvalid
	}
	now := time.Now()
	order.Status = constants.OrderStatusPaid
	order.PaidAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkCompleted 标记订单完成
func (s *OrderService) MarkCompleted(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPaid {
		return nil, ErrOrderStatusInvalid
	}
	order.Status = constants.OrderStatusCompleted
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelExpired 取消超时未支付订单并回补库存
// 任务可能重复投递，非待支付状态直接跳过。
func (s *OrderService) CancelExpired(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil
	}

	now := time.Now()
	return s.orderRepo.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		order.Status = constants.OrderStatusCanceled
		order.CanceledAt = &now
		return s.orderRepo.WithTx(tx).Update(order)
	})
}

func generateOrderNo() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("VM%s%s", time.Now().Format("20060102150405"), strings.ToUpper(suffix))
}
