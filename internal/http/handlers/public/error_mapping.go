package public

import (
	"errors"

	handlershared "github.com/voltmart/voltmart-api/internal/http/handlers/shared"
	"github.com/voltmart/voltmart-api/internal/http/response"
	"github.com/voltmart/voltmart-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLogPublic(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrOrderInvalid, code: response.CodeBadRequest, msg: "invalid order"},
	{target: service.ErrOrderItemInvalid, code: response.CodeBadRequest, msg: "invalid order item"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "stock insufficient"},
	{target: service.ErrPromotionNotFound, code: response.CodeBadRequest, msg: "promotion not found"},
	{target: service.ErrPromotionNotUsable, code: response.CodeBadRequest, msg: "promotion not usable"},
	{target: service.ErrPromotionValueInvalid, code: response.CodeBadRequest, msg: "promotion invalid"},
	{target: service.ErrPromotionInvalid, code: response.CodeBadRequest, msg: "promotion invalid"},
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "order create failed")
}
