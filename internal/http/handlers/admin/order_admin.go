package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/repository"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
)

func respondOrderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderStatusInvalid):
		respondError(c, response.CodeBadRequest, "invalid order status transition", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// GetAdminOrders 获取订单列表 (Admin)
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		Email:       strings.TrimSpace(c.Query("email")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetAdminOrder 获取订单详情 (Admin)
func (h *Handler) GetAdminOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		respondOrderError(c, err, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// MarkOrderPaid 标记订单已支付
func (h *Handler) MarkOrderPaid(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.MarkPaid(uint(orderID))
	if err != nil {
		respondOrderError(c, err, "order update failed")
		return
	}
	response.Success(c, order)
}

// MarkOrderCompleted 标记订单完成
func (h *Handler) MarkOrderCompleted(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.MarkCompleted(uint(orderID))
	if err != nil {
		respondOrderError(c, err, "order update failed")
		return
	}
	response.Success(c, order)
}
