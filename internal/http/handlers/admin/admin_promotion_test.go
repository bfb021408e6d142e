package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/provider"
	"github.com/voltmart/voltmart-api/internal/queue"
	"github.com/voltmart/voltmart-api/internal/repository"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newSweepFixture(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Promotion{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	container := &provider.Container{
		QueueClient: queueClient,
		PromotionAdminService: service.NewPromotionAdminService(
			repository.NewPromotionRepository(db),
			repository.NewProductRepository(db),
			repository.NewCategoryRepository(db),
			service.NewPromotionEngine(),
		),
	}
	return New(container), db
}

func TestSweepPromotionsRunsSyncWhenQueueDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h, db := newSweepFixture(t)
	past := time.Now().Add(-time.Hour)
	promotion := models.Promotion{
		Name:            "Expired",
		Code:            "EXPIRED",
		Type:            constants.PromotionTypePercentage,
		Value:           models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ApplicationType: constants.ApplicationTypeStorewide,
		Status:          constants.PromotionStatusActive,
		EndsAt:          &past,
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("seed promotion failed: %v", err)
	}

	r := gin.New()
	r.POST("/promotion-sweeps", h.SweepPromotions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/promotion-sweeps", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Enqueued bool `json:"enqueued"`
			Ended    int  `json:"ended"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Data.Enqueued {
		t.Fatal("disabled queue should run the sweep synchronously")
	}
	if resp.Data.Ended != 1 {
		t.Fatalf("ended want 1 got %d", resp.Data.Ended)
	}

	var swept models.Promotion
	if err := db.First(&swept, promotion.ID).Error; err != nil {
		t.Fatalf("reload promotion failed: %v", err)
	}
	if swept.Status != constants.PromotionStatusEnded {
		t.Fatalf("promotion status want ended got %s", swept.Status)
	}
}
