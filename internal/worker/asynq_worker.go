package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/voltmart/voltmart-api/internal/logger"
	"github.com/voltmart/voltmart-api/internal/provider"
	"github.com/voltmart/voltmart-api/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskPromotionEndSweep, c.handlePromotionEndSweep)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.OrderService.CancelExpired(payload.OrderID); err != nil {
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Infow("worker_order_timeout_cancel_done", "order_id", payload.OrderID)
	return nil
}

func (c *Consumer) handlePromotionEndSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promotion_end_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.PromotionAdminService == nil {
		logger.Warnw("worker_promotion_end_sweep_skip_service_nil")
		return nil
	}
	count, err := c.PromotionAdminService.SweepEnded(time.Now())
	if err != nil {
		logger.Warnw("worker_promotion_end_sweep_failed", "error", err)
		return err
	}
	if count > 0 {
		logger.Infow("worker_promotion_end_sweep_done", "ended", count)
	}
	return nil
}
