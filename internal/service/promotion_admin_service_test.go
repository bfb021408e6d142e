package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Promotion{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newPromotionAdminFixture(t *testing.T) (*PromotionAdminService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	service := NewPromotionAdminService(
		repository.NewPromotionRepository(db),
		repository.NewProductRepository(db),
		repository.NewCategoryRepository(db),
		NewPromotionEngine(),
	)
	return service, db
}

func seedProduct(t *testing.T, db *gorm.DB, id, categoryID uint, price string) {
	t.Helper()

	product := models.Product{
		ID:          id,
		CategoryID:  categoryID,
		Slug:        fmt.Sprintf("product-%d", id),
		Name:        fmt.Sprintf("Product %d", id),
		PriceAmount: money(t, price),
		Stock:       100,
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
}

func TestPromotionAdminCreate(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	promotion, warnings, err := service.Create(PromotionInput{
		Name:            "Summer Sale",
		Code:            "summer20",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "20"),
		ApplicationType: constants.ApplicationTypeStorewide,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if promotion.Code != "SUMMER20" {
		t.Fatalf("code should be normalized upper, got %s", promotion.Code)
	}
	if promotion.Status != constants.PromotionStatusDraft {
		t.Fatalf("new promotion should default to draft, got %s", promotion.Status)
	}

	_, _, err = service.Create(PromotionInput{
		Name:            "Duplicate",
		Code:            "SUMMER20",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "10"),
		ApplicationType: constants.ApplicationTypeStorewide,
	})
	if err != ErrPromotionCodeExists {
		t.Fatalf("expected ErrPromotionCodeExists, got %v", err)
	}
}

func TestPromotionAdminCreateRejectsInvalidValue(t *testing.T) {
	service, _ := newPromotionAdminFixture(t)

	_, _, err := service.Create(PromotionInput{
		Name:            "Bad",
		Code:            "BAD",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "150"),
		ApplicationType: constants.ApplicationTypeStorewide,
	})
	if err != ErrPromotionValueInvalid {
		t.Fatalf("expected ErrPromotionValueInvalid, got %v", err)
	}
}

func TestPromotionAdminCreateRejectsEmptyScope(t *testing.T) {
	service, _ := newPromotionAdminFixture(t)

	_, _, err := service.Create(PromotionInput{
		Name:            "No Scope",
		Code:            "NOSCOPE",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
	})
	if err != ErrPromotionScopeInvalid {
		t.Fatalf("expected ErrPromotionScopeInvalid, got %v", err)
	}
}

func TestPromotionAdminCreateRejectsOverrideAbovePrice(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "8.99")

	_, _, err := service.Create(PromotionInput{
		Name:            "Too Deep",
		Code:            "DEEP",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1},
		ProductDiscounts: []models.ProductDiscount{
			{ProductID: 1, Value: money(t, "15")},
		},
	})
	if err != ErrPromotionOverridePrice {
		t.Fatalf("expected ErrPromotionOverridePrice, got %v", err)
	}
}

func seedCategory(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()

	category := models.Category{
		ID:   id,
		Slug: fmt.Sprintf("category-%d", id),
		Name: fmt.Sprintf("Category %d", id),
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category failed: %v", err)
	}
}

func TestPromotionAdminCreateWarnsOnMissingScopeRef(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedCategory(t, db, 1)

	promotion, warnings, err := service.Create(PromotionInput{
		Name:            "Phantom Category",
		Code:            "PHANTOM",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "10"),
		ApplicationType: constants.ApplicationTypeCategories,
		CategoryIDs:     []uint{1, 999},
	})
	if err != nil {
		t.Fatalf("missing scope ref should not block create: %v", err)
	}
	if len(warnings) != 1 || warnings[0] != WarnScopeMembershipMismatch {
		t.Fatalf("expected one scope mismatch warning, got %v", warnings)
	}
	if !promotion.CategoryIDs.Contains(999) {
		t.Fatal("scope list should be stored as submitted")
	}
}

func TestPromotionAdminCreateWarnsOnMissingScopeProduct(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	_, warnings, err := service.Create(PromotionInput{
		Name:            "Phantom Product",
		Code:            "PHANTOMP",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1, 999},
	})
	if err != nil {
		t.Fatalf("missing scope ref should not block create: %v", err)
	}
	if len(warnings) != 1 || warnings[0] != WarnScopeMembershipMismatch {
		t.Fatalf("expected one scope mismatch warning, got %v", warnings)
	}
}

func TestPromotionAdminCreateRejectsOutOfScopeOverride(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")
	seedProduct(t, db, 2, 1, "49.99")

	_, _, err := service.Create(PromotionInput{
		Name:            "Out Of Scope",
		Code:            "OOS",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1},
		ProductDiscounts: []models.ProductDiscount{
			{ProductID: 2, Value: money(t, "5")},
		},
	})
	if err != ErrPromotionScopeInvalid {
		t.Fatalf("override outside scope should be rejected, got %v", err)
	}
}

func TestPromotionAdminCreateRejectsDuplicateOverride(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	_, _, err := service.Create(PromotionInput{
		Name:            "Duplicated",
		Code:            "DUPOV",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1},
		ProductDiscounts: []models.ProductDiscount{
			{ProductID: 1, Value: money(t, "2")},
			{ProductID: 1, Value: money(t, "9")},
		},
	})
	if err != ErrPromotionScopeInvalid {
		t.Fatalf("duplicate override ids should be rejected, got %v", err)
	}
}

func TestPromotionAdminCreateDropsOverridesOutsideSpecificProducts(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")

	promotion, _, err := service.Create(PromotionInput{
		Name:            "Storewide",
		Code:            "WIDE",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeStorewide,
		ProductDiscounts: []models.ProductDiscount{
			{ProductID: 1, Value: money(t, "2")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(promotion.ProductDiscounts) != 0 {
		t.Fatalf("storewide promotion should not store overrides, got %v", promotion.ProductDiscounts)
	}
}

func TestPromotionAdminSetOverrideRequiresScopeMembership(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")
	seedProduct(t, db, 2, 1, "49.99")

	promotion, _, err := service.Create(PromotionInput{
		Name:            "Scoped",
		Code:            "SCOPED",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.SetOverride(promotion.ID, 2, money(t, "5")); err != ErrPromotionScopeInvalid {
		t.Fatalf("override for out-of-scope product should be rejected, got %v", err)
	}
}

func TestPromotionAdminScopeProductSeedsOverride(t *testing.T) {
	service, db := newPromotionAdminFixture(t)
	seedProduct(t, db, 1, 1, "24.99")
	seedProduct(t, db, 2, 1, "49.99")

	promotion, _, err := service.Create(PromotionInput{
		Name:            "Target",
		Code:            "TGT",
		Type:            constants.PromotionTypeFixed,
		Value:           money(t, "5"),
		ApplicationType: constants.ApplicationTypeSpecificProducts,
		ProductIDs:      []uint{1},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.AddScopeProduct(promotion.ID, 2)
	if err != nil {
		t.Fatalf("add scope product failed: %v", err)
	}
	if !updated.ProductIDs.Contains(2) {
		t.Fatal("product 2 should be in scope")
	}
	value, ok := updated.ProductDiscounts.Lookup(2)
	if !ok {
		t.Fatal("override should be seeded for new scope product")
	}
	if value.String() != "5.00" {
		t.Fatalf("fixed promotion should seed default 5.00, got %s", value.String())
	}

	updated, err = service.RemoveScopeProduct(promotion.ID, 2)
	if err != nil {
		t.Fatalf("remove scope product failed: %v", err)
	}
	if updated.ProductIDs.Contains(2) {
		t.Fatal("product 2 should be out of scope")
	}
	if _, ok := updated.ProductDiscounts.Lookup(2); ok {
		t.Fatal("override should be dropped with scope removal")
	}
}

func TestPromotionAdminSetStatusFollowsStateMachine(t *testing.T) {
	service, _ := newPromotionAdminFixture(t)

	promotion, _, err := service.Create(PromotionInput{
		Name:            "Lifecycle",
		Code:            "LIFE",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "10"),
		ApplicationType: constants.ApplicationTypeStorewide,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.SetStatus(promotion.ID, constants.PromotionStatusEnded); err != ErrPromotionStatusInvalid {
		t.Fatalf("draft -> ended should be rejected, got %v", err)
	}
	updated, err := service.SetStatus(promotion.ID, constants.PromotionStatusActive)
	if err != nil {
		t.Fatalf("draft -> active failed: %v", err)
	}
	if updated.Status != constants.PromotionStatusActive {
		t.Fatalf("expected active, got %s", updated.Status)
	}
	if _, err := service.SetStatus(promotion.ID, constants.PromotionStatusInactive); err != nil {
		t.Fatalf("active -> inactive failed: %v", err)
	}
	if _, err := service.SetStatus(promotion.ID, constants.PromotionStatusEnded); err != nil {
		t.Fatalf("inactive -> ended failed: %v", err)
	}
	if _, err := service.SetStatus(promotion.ID, constants.PromotionStatusActive); err != ErrPromotionStatusInvalid {
		t.Fatalf("ended is terminal, got %v", err)
	}
}

func TestPromotionAdminSweepEnded(t *testing.T) {
	service, _ := newPromotionAdminFixture(t)

	past := time.Now().Add(-time.Hour)
	promotion, _, err := service.Create(PromotionInput{
		Name:            "Expired",
		Code:            "EXP",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "10"),
		ApplicationType: constants.ApplicationTypeStorewide,
		EndsAt:          &past,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.SetStatus(promotion.ID, constants.PromotionStatusActive); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	count, err := service.SweepEnded(time.Now())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ended promotion, got %d", count)
	}
	swept, err := service.Get(promotion.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if swept.Status != constants.PromotionStatusEnded {
		t.Fatalf("expected ended, got %s", swept.Status)
	}

	count, err = service.SweepEnded(time.Now())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("second sweep should find nothing, got %d", count)
	}
}

func TestPromotionAdminDeleteIsHard(t *testing.T) {
	service, db := newPromotionAdminFixture(t)

	promotion, _, err := service.Create(PromotionInput{
		Name:            "Gone",
		Code:            "GONE",
		Type:            constants.PromotionTypePercentage,
		Value:           money(t, "10"),
		ApplicationType: constants.ApplicationTypeStorewide,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := service.Delete(promotion.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var count int64
	if err := db.Unscoped().Model(&models.Promotion{}).Where("id = ?", promotion.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatal("delete should remove the row outright")
	}
	if err := service.Delete(promotion.ID); err != ErrPromotionNotFound {
		t.Fatalf("expected ErrPromotionNotFound, got %v", err)
	}
}
