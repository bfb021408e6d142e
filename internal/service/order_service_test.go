package service

import (
	"testing"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/queue"
	"github.com/voltmart/voltmart-api/internal/repository"

	"gorm.io/gorm"
)

func newOrderFixture(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	service := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewPromotionRepository(db),
		NewPromotionEngine(),
		queueClient,
		30,
	)
	return service, db
}

func seedFixedPromotion(t *testing.T, db *gorm.DB) *models.Promotion {
	t.Helper()

	promotion := models.Promotion{
		Name:            "Flash Deal",
		Code:            "FLASH",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      models.UintArray{1, 3},
		ProductDiscounts: models.ProductDiscountList{
			{ProductID: 3, Value: money(t, "15")},
		},
		Status: constants.PromotionStatusActive,
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("seed promotion failed: %v", err)
	}
	return &promotion
}

func TestCheckoutAppliesPromotionAndTracksUsage(t *testing.T) {
	service, db := newOrderFixture(t)
	seedProduct(t, db, 1, 1, "24.99")
	seedProduct(t, db, 2, 1, "49.99")
	seedProduct(t, db, 3, 1, "79.99")
	promotion := seedFixedPromotion(t, db)

	order, err := service.Checkout(CheckoutInput{
		Email: "buyer@example.com",
		Items: []CheckoutItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
			{ProductID: 3, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.OriginalAmount.String() != "154.97" {
		t.Fatalf("expected original 154.97, got %s", order.OriginalAmount.String())
	}
	// 19.99 + 49.99 + 64.99
	if order.TotalAmount.String() != "134.97" {
		t.Fatalf("expected total 134.97, got %s", order.TotalAmount.String())
	}
	if order.DiscountAmount.String() != "20.00" {
		t.Fatalf("expected discount 20.00, got %s", order.DiscountAmount.String())
	}

	byProduct := make(map[uint]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	if byProduct[1].FinalPrice.String() != "19.99" || byProduct[1].PromotionID == nil {
		t.Fatalf("product 1 should price at 19.99 with promotion, got %s", byProduct[1].FinalPrice.String())
	}
	if byProduct[2].PromotionID != nil {
		t.Fatal("product 2 is out of scope and should carry no promotion")
	}
	if byProduct[2].FinalPrice.String() != "49.99" {
		t.Fatalf("product 2 should keep base price, got %s", byProduct[2].FinalPrice.String())
	}
	if byProduct[3].FinalPrice.String() != "64.99" {
		t.Fatalf("product 3 should use override price 64.99, got %s", byProduct[3].FinalPrice.String())
	}

	var reloaded models.Promotion
	if err := db.First(&reloaded, promotion.ID).Error; err != nil {
		t.Fatalf("reload promotion failed: %v", err)
	}
	if reloaded.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", reloaded.UsageCount)
	}
	// 折扣后的归属营收：19.99 + 64.99
	if reloaded.Revenue.String() != "84.98" {
		t.Fatalf("expected revenue 84.98, got %s", reloaded.Revenue.String())
	}

	var product models.Product
	if err := db.First(&product, 1).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if product.Stock != 99 {
		t.Fatalf("expected stock 99 after checkout, got %d", product.Stock)
	}
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	service, db := newOrderFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	_, err := service.Checkout(CheckoutInput{
		Email: "buyer@example.com",
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 500}},
	})
	if err != ErrStockInsufficient {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}
}

func TestCheckoutRejectsUnusablePromotionCode(t *testing.T) {
	service, db := newOrderFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	promotion := models.Promotion{
		Name:            "Paused",
		Code:            "PAUSED",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "20"),
		ApplicationType: constants.ApplicationTypeStorewide,
		Status:          constants.PromotionStatusInactive,
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("seed promotion failed: %v", err)
	}

	_, err := service.Checkout(CheckoutInput{
		Email:         "buyer@example.com",
		PromotionCode: "PAUSED",
		Items:         []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	if err != ErrPromotionNotUsable {
		t.Fatalf("expected ErrPromotionNotUsable, got %v", err)
	}

	_, err = service.Checkout(CheckoutInput{
		Email:         "buyer@example.com",
		PromotionCode: "MISSING",
		Items:         []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	if err != ErrPromotionNotFound {
		t.Fatalf("expected ErrPromotionNotFound, got %v", err)
	}
}

func TestCancelExpiredRestoresStock(t *testing.T) {
	service, db := newOrderFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	order, err := service.Checkout(CheckoutInput{
		Email: "buyer@example.com",
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := service.CancelExpired(order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	canceled, err := service.GetByOrderNo(order.OrderNo)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if canceled.CanceledAt == nil {
		t.Fatal("canceled_at should be set")
	}

	var product models.Product
	if err := db.First(&product, 1).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if product.Stock != 100 {
		t.Fatalf("expected stock restored to 100, got %d", product.Stock)
	}

	// 重复投递应当是幂等的
	if err := service.CancelExpired(order.ID); err != nil {
		t.Fatalf("second cancel failed: %v", err)
	}
	if err := db.First(&product, 1).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if product.Stock != 100 {
		t.Fatalf("stock should not change on repeated cancel, got %d", product.Stock)
	}
}

func TestMarkPaidTransitions(t *testing.T) {
	service, db := newOrderFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	order, err := service.Checkout(CheckoutInput{
		Email: "buyer@example.com",
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	paid, err := service.MarkPaid(order.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.OrderStatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid with timestamp, got %s", paid.Status)
	}
	if _, err := service.MarkPaid(order.ID); err != ErrOrderStatusInvalid {
		t.Fatalf("double pay should be rejected, got %v", err)
	}

	completed, err := service.MarkCompleted(order.ID)
	if err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if completed.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
}
