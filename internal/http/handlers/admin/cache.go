package admin

import (
	"github.com/voltmart/voltmart-api/internal/cache"
	"github.com/voltmart/voltmart-api/internal/constants"

	"github.com/gin-gonic/gin"
)

// invalidateCatalogCache 商品/分类/促销写操作后清理前台目录缓存
func invalidateCatalogCache(c *gin.Context) {
	ctx := c.Request.Context()
	_ = cache.DelByPrefix(ctx, constants.CacheKeyCatalog)
	_ = cache.Del(ctx, constants.CacheKeyCategories)
}
