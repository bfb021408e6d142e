package queue

import (
	"encoding/json"

	"github.com/voltmart/voltmart-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 订单超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskPromotionEndSweep 促销到期扫描任务
	TaskPromotionEndSweep = constants.TaskPromotionEndSweep
)

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// PromotionEndSweepPayload 促销到期扫描任务载荷
type PromotionEndSweepPayload struct {
	RequestedAt int64 `json:"requested_at"`
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewPromotionEndSweepTask 创建促销到期扫描任务
func NewPromotionEndSweepTask(payload PromotionEndSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionEndSweep, body), nil
}
