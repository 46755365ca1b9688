package httpserver

import (
	"errors"
	"net/http"

	"footware-store/internal/domain"
	ordersvc "footware-store/internal/service/order"

	"github.com/gin-gonic/gin"
)

type shortfallResponse struct {
	VariantID string `json:"variantId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// writeError maps domain errors to HTTP responses. Stock and coupon failures
// are actionable 400s; unknown entities are 404s; illegal transitions 409.
func writeError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		shortfalls := make([]shortfallResponse, 0, len(stockErr.Shortfalls))
		for _, s := range stockErr.Shortfalls {
			shortfalls = append(shortfalls, shortfallResponse(s))
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    stockErr.Error(),
			"shortfalls": shortfalls,
		})
		return
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{"message": transitionErr.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrCouponInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "coupon is not valid"})
	case errors.Is(err, domain.ErrCouponBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"message": "cart total is below the coupon minimum"})
	case errors.Is(err, ordersvc.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"message": "cart is empty"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

type cartResponse struct {
	Cart   domain.Cart       `json:"cart"`
	Totals domain.CartTotals `json:"totals"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{Cart: *cart, Totals: cart.Totals()}
}
