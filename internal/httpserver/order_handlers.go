package httpserver

import (
	"log"
	"net/http"

	"footware-store/internal/domain"
	ordersvc "footware-store/internal/service/order"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	CouponCode     string `json:"couponCode"`
	DeliveryAreaID string `json:"deliveryAreaId"`
}

func quoteHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)

		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		totals, err := orders.Quote(c.Request.Context(), *owner.CustomerID, req.CouponCode, req.DeliveryAreaID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, totals)
	}
}

type checkoutRequest struct {
	CouponCode      string `json:"couponCode"`
	DeliveryAreaID  string `json:"deliveryAreaId"`
	ShippingAddress string `json:"shippingAddress"`
	BillingAddress  string `json:"billingAddress"`
	PhoneNumber     string `json:"phoneNumber"`
}

func checkoutHandler(orders OrderService, payments PaymentService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		if req.ShippingAddress == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "shippingAddress required"})
			return
		}

		paymentMethod := ""
		if req.PhoneNumber != "" {
			paymentMethod = "mpesa"
		}

		order, err := orders.Checkout(c.Request.Context(), ordersvc.CheckoutInput{
			CustomerID:      *owner.CustomerID,
			CouponCode:      req.CouponCode,
			DeliveryAreaID:  req.DeliveryAreaID,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethod:   paymentMethod,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		resp := gin.H{"order": order}
		if req.PhoneNumber != "" {
			payment, err := payments.Initiate(c.Request.Context(), order, req.PhoneNumber)
			if err != nil {
				// The order exists; the shopper can retry payment separately.
				logger.Printf("checkout: payment initiation failed order=%s error=%v", order.Number, err)
				resp["paymentError"] = "payment could not be initiated, please retry"
			} else {
				resp["payment"] = payment
			}
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		result, err := orders.ListForCustomer(c.Request.Context(), *owner.CustomerID)
		if err != nil {
			writeError(c, err)
			return
		}
		if result == nil {
			result = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": result})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := ownerFrom(c)
		order, err := orders.Get(c.Request.Context(), c.Param("number"))
		if err != nil {
			writeError(c, err)
			return
		}
		if order.CustomerID != *owner.CustomerID {
			// Another customer's order looks like a missing one.
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func transitionOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "status required"})
			return
		}

		order, err := orders.Transition(c.Request.Context(), c.Param("number"), domain.OrderStatus(req.Status))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
