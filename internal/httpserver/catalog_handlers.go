package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func variantStockHandler(catalog CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID := c.Param("variantID")
		stock, err := catalog.CurrentStock(c.Request.Context(), variantID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"variantId": variantID,
			"stock":     stock,
			"inStock":   stock > 0,
		})
	}
}
