package httpserver

import (
	"errors"
	"net/http"

	"footware-store/internal/domain"
	cartsvc "footware-store/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	VariantID string `json:"variantId"`
	ShoeID    string `json:"shoeId"`
	ColorID   string `json:"colorId"`
	SizeID    string `json:"sizeId"`
	Quantity  int    `json:"quantity"`
}

func addItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)

		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		cart, err := carts.AddItem(c.Request.Context(), owner, cartsvc.VariantRef{
			VariantID: req.VariantID,
			ShoeID:    req.ShoeID,
			ColorID:   req.ColorID,
			SizeID:    req.SizeID,
		}, req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func updateItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		cart, err := carts.Get(c.Request.Context(), owner)
		if err != nil {
			writeError(c, err)
			return
		}

		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		removed, updated, err := carts.UpdateItem(c.Request.Context(), cart.ID, c.Param("lineID"), req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		resp := toCartResponse(updated)
		c.JSON(http.StatusOK, gin.H{"cart": resp.Cart, "totals": resp.Totals, "removed": removed})
	}
}

func removeItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		cart, err := carts.Get(c.Request.Context(), owner)
		if err != nil {
			writeError(c, err)
			return
		}

		updated, err := carts.RemoveItem(c.Request.Context(), cart.ID, c.Param("lineID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(updated))
	}
}

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		cart, err := carts.Get(c.Request.Context(), owner)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// No cart yet is an empty cart, not an error.
				c.JSON(http.StatusOK, cartResponse{Totals: domain.Cart{}.Totals()})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		cart, err := carts.Get(c.Request.Context(), owner)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.Status(http.StatusNoContent)
				return
			}
			writeError(c, err)
			return
		}
		if err := carts.Clear(c.Request.Context(), cart.ID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
