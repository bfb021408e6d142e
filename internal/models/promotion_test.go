package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPromotionJSONRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	original := Promotion{
		ID:              7,
		Name:            "Spring Audio Sale",
		Code:            "SPRING-AUDIO",
		Type:            "fixed",
		Value:           NewMoneyFromDecimal(decimal.NewFromInt(15)),
		ApplicationType: "specific-products",
		ProductIDs:      UintArray{1, 3},
		ProductDiscounts: ProductDiscountList{
			{ProductID: 1, Value: NewMoneyFromDecimal(decimal.NewFromInt(5))},
			{ProductID: 3, Value: NewMoneyFromDecimal(decimal.NewFromInt(15))},
		},
		Status:   "active",
		StartsAt: &start,
		EndsAt:   &end,
	}

	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal promotion failed: %v", err)
	}

	var decoded Promotion
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal promotion failed: %v", err)
	}

	if decoded.Code != original.Code || decoded.Type != original.Type {
		t.Fatalf("identity fields changed: got code=%s type=%s", decoded.Code, decoded.Type)
	}
	if decoded.ApplicationType != original.ApplicationType {
		t.Fatalf("application type changed: %s", decoded.ApplicationType)
	}
	if len(decoded.ProductIDs) != 2 || decoded.ProductIDs[0] != 1 || decoded.ProductIDs[1] != 3 {
		t.Fatalf("product ids changed: %v", decoded.ProductIDs)
	}
	if len(decoded.ProductDiscounts) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(decoded.ProductDiscounts))
	}
	if !decoded.Value.Equal(original.Value.Decimal) {
		t.Fatalf("value changed: got %s expected %s", decoded.Value, original.Value)
	}
	override, ok := decoded.ProductDiscounts.Lookup(1)
	if !ok || !override.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("override for product 1 changed: %v %v", override, ok)
	}
}

func TestProductDiscountListScanValue(t *testing.T) {
	list := ProductDiscountList{
		{ProductID: 42, Value: NewMoneyFromDecimal(decimal.RequireFromString("12.50"))},
	}
	raw, err := list.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var decoded ProductDiscountList
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	value, ok := decoded.Lookup(42)
	if !ok {
		t.Fatalf("expected override for product 42")
	}
	if value.String() != "12.50" {
		t.Fatalf("expected 12.50, got %s", value)
	}
	if _, ok := decoded.Lookup(43); ok {
		t.Fatalf("unexpected override for product 43")
	}
}

func TestUintArrayContains(t *testing.T) {
	arr := UintArray{2, 5, 9}
	if !arr.Contains(5) {
		t.Fatalf("expected array to contain 5")
	}
	if arr.Contains(4) {
		t.Fatalf("did not expect array to contain 4")
	}

	var decoded UintArray
	if err := decoded.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected empty array after nil scan, got %v", decoded)
	}
}
