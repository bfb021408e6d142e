package admin

import (
	handlershared "github.com/voltmart/voltmart-api/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getAdminID 从上下文读取当前管理员 ID
func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}
