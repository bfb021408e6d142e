package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromotionRepositoryTest(t *testing.T) (*GormPromotionRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Promotion{}); err != nil {
		t.Fatalf("migrate promotion failed: %v", err)
	}
	return NewPromotionRepository(db), db
}

func createPromotion(t *testing.T, repo *GormPromotionRepository, code string, status string, endsAt *time.Time) *models.Promotion {
	t.Helper()
	promotion := &models.Promotion{
		Name:            "测试促销 " + code,
		Code:            code,
		Type:            constants.PromotionTypePercentage,
		Value:           models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		ApplicationType: constants.ApplicationTypeStorewide,
		Status:          status,
		EndsAt:          endsAt,
	}
	if err := repo.Create(promotion); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}

func TestPromotionGetByCode(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	created := createPromotion(t, repo, "SUMMER20", constants.PromotionStatusActive, nil)

	got, err := repo.GetByCode("SUMMER20")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("get by code want id %d got %+v", created.ID, got)
	}

	missing, err := repo.GetByCode("NOPE")
	if err != nil {
		t.Fatalf("get missing code failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing code should return nil, got %+v", missing)
	}
}

func TestPromotionListExpired(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := createPromotion(t, repo, "EXPIRED", constants.PromotionStatusActive, &past)
	createPromotion(t, repo, "RUNNING", constants.PromotionStatusActive, &future)
	createPromotion(t, repo, "OPENENDED", constants.PromotionStatusActive, nil)
	createPromotion(t, repo, "DONE", constants.PromotionStatusEnded, &past)
	createPromotion(t, repo, "DRAFT", constants.PromotionStatusDraft, &past)

	rows, err := repo.ListExpired(now)
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expired rows want 1 got %d", len(rows))
	}
	if rows[0].ID != expired.ID {
		t.Fatalf("expired id want %d got %d", expired.ID, rows[0].ID)
	}
}

func TestPromotionMarkEnded(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	past := time.Now().Add(-time.Hour)
	p1 := createPromotion(t, repo, "END1", constants.PromotionStatusActive, &past)
	p2 := createPromotion(t, repo, "END2", constants.PromotionStatusInactive, &past)

	if err := repo.MarkEnded([]uint{p1.ID, p2.ID}); err != nil {
		t.Fatalf("mark ended failed: %v", err)
	}

	for _, id := range []uint{p1.ID, p2.ID} {
		got, err := repo.GetByID(id)
		if err != nil {
			t.Fatalf("get promotion failed: %v", err)
		}
		if got.Status != constants.PromotionStatusEnded {
			t.Fatalf("promotion %d status want ended got %s", id, got.Status)
		}
	}

	if err := repo.MarkEnded(nil); err != nil {
		t.Fatalf("mark ended with empty ids should be no-op: %v", err)
	}
}

func TestPromotionIncrementUsage(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	promotion := createPromotion(t, repo, "TRACKED", constants.PromotionStatusActive, nil)

	revenue := models.NewMoneyFromDecimal(decimal.RequireFromString("19.99"))
	if err := repo.IncrementUsage(promotion.ID, revenue); err != nil {
		t.Fatalf("increment usage failed: %v", err)
	}
	if err := repo.IncrementUsage(promotion.ID, revenue); err != nil {
		t.Fatalf("second increment failed: %v", err)
	}

	got, err := repo.GetByID(promotion.ID)
	if err != nil {
		t.Fatalf("get promotion failed: %v", err)
	}
	if got.UsageCount != 2 {
		t.Fatalf("usage count want 2 got %d", got.UsageCount)
	}
	if got.Revenue.String() != "39.98" {
		t.Fatalf("revenue want 39.98 got %s", got.Revenue.String())
	}
}

func TestPromotionListFilters(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	createPromotion(t, repo, "SPRING10", constants.PromotionStatusActive, nil)
	createPromotion(t, repo, "WINTER15", constants.PromotionStatusDraft, nil)

	rows, total, err := repo.List(PromotionListFilter{Status: constants.PromotionStatusActive, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Code != "SPRING10" {
		t.Fatalf("status filter want SPRING10 got total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(PromotionListFilter{Search: "WINTER", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Code != "WINTER15" {
		t.Fatalf("search filter want WINTER15 got total=%d rows=%+v", total, rows)
	}
}
