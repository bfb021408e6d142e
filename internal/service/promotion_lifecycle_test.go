package service

import (
	"testing"
	"time"

	"github.com/voltmart/voltmart-api/internal/constants"
	"github.com/voltmart/voltmart-api/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.PromotionStatusDraft, constants.PromotionStatusActive, true},
		{constants.PromotionStatusDraft, constants.PromotionStatusScheduled, true},
		{constants.PromotionStatusDraft, constants.PromotionStatusEnded, false},
		{constants.PromotionStatusScheduled, constants.PromotionStatusActive, true},
		{constants.PromotionStatusScheduled, constants.PromotionStatusInactive, false},
		{constants.PromotionStatusActive, constants.PromotionStatusInactive, true},
		{constants.PromotionStatusActive, constants.PromotionStatusEnded, true},
		{constants.PromotionStatusActive, constants.PromotionStatusDraft, false},
		{constants.PromotionStatusInactive, constants.PromotionStatusActive, true},
		{constants.PromotionStatusInactive, constants.PromotionStatusEnded, true},
		{constants.PromotionStatusEnded, constants.PromotionStatusActive, false},
		{constants.PromotionStatusEnded, constants.PromotionStatusDraft, false},
		{"bogus", constants.PromotionStatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("transition %s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestWithinWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	unbounded := &models.Promotion{}
	if !WithinWindow(unbounded, now) {
		t.Fatal("promotion without window should always be in window")
	}

	open := &models.Promotion{StartsAt: &before, EndsAt: &after}
	if !WithinWindow(open, now) {
		t.Fatal("now should fall inside the window")
	}

	notStarted := &models.Promotion{StartsAt: &after}
	if WithinWindow(notStarted, now) {
		t.Fatal("promotion should not be in window before start")
	}

	ended := &models.Promotion{EndsAt: &before}
	if WithinWindow(ended, now) {
		t.Fatal("promotion should not be in window after end")
	}

	boundary := &models.Promotion{EndsAt: &now}
	if WithinWindow(boundary, now) {
		t.Fatal("end time is exclusive")
	}
}

func TestUsableGates(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	// 状态为 active 但窗口已过
	expired := &models.Promotion{
		Status: constants.PromotionStatusActive,
		EndsAt: &past,
	}
	if !Usable(expired, now, GateStatusOnly) {
		t.Fatal("status gate should pass for active promotion")
	}
	if Usable(expired, now, GateWindowOnly) {
		t.Fatal("window gate should fail past end time")
	}
	if Usable(expired, now, GateStatusAndWindow) {
		t.Fatal("combined gate should fail past end time")
	}

	// 窗口有效但状态未激活
	scheduledInWindow := &models.Promotion{
		Status: constants.PromotionStatusScheduled,
	}
	if Usable(scheduledInWindow, now, GateStatusOnly) {
		t.Fatal("status gate should fail for scheduled promotion")
	}
	if !Usable(scheduledInWindow, now, GateWindowOnly) {
		t.Fatal("window gate should pass without bounds")
	}
	if Usable(scheduledInWindow, now, GateStatusAndWindow) {
		t.Fatal("combined gate should fail for scheduled promotion")
	}
}
