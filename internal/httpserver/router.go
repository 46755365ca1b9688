package httpserver

import (
	"context"
	"log"

	"footware-store/internal/domain"
	cartsvc "footware-store/internal/service/cart"
	ordersvc "footware-store/internal/service/order"
	paymentsvc "footware-store/internal/service/payment"
	"footware-store/internal/service/pricing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogService interface {
	CurrentStock(ctx context.Context, variantID string) (int, error)
}

type CartService interface {
	AddItem(ctx context.Context, owner domain.CartOwner, ref cartsvc.VariantRef, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (removed bool, cart *domain.Cart, err error)
	RemoveItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error)
	Get(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type OrderService interface {
	Checkout(ctx context.Context, in ordersvc.CheckoutInput) (*domain.Order, error)
	Quote(ctx context.Context, customerID, couponCode, deliveryAreaID string) (pricing.Totals, error)
	Get(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Transition(ctx context.Context, orderNumber string, newStatus domain.OrderStatus) (*domain.Order, error)
}

type PaymentService interface {
	Initiate(ctx context.Context, order *domain.Order, phoneNumber string) (*domain.Payment, error)
	ApplyCallback(ctx context.Context, in paymentsvc.CallbackInput) (*domain.Payment, error)
}

type SessionService interface {
	Issue() string
	Validate(key string) bool
	TTLSeconds() int
}

// Deps carries everything the routes need.
type Deps struct {
	CatalogSvc CatalogService
	CartSvc    CartService
	OrderSvc   OrderService
	PaymentSvc PaymentService
	SessionSvc SessionService
	JWTSecret  []byte
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/session", sessionHandler(deps.SessionSvc))

	// Availability is public; shoppers poll it before adding to cart.
	router.GET("/catalog/variants/:variantID/stock", variantStockHandler(deps.CatalogSvc))

	identity := identityMiddleware(deps.SessionSvc, deps.JWTSecret)

	cart := router.Group("/cart", identity, requireOwner())
	{
		cart.GET("", getCartHandler(deps.CartSvc))
		cart.DELETE("", clearCartHandler(deps.CartSvc))
		cart.POST("/items", addItemHandler(deps.CartSvc))
		cart.PATCH("/items/:lineID", updateItemHandler(deps.CartSvc))
		cart.DELETE("/items/:lineID", removeItemHandler(deps.CartSvc))
	}

	checkout := router.Group("/checkout", identity, requireCustomer())
	{
		checkout.POST("/quote", quoteHandler(deps.OrderSvc))
		checkout.POST("", checkoutHandler(deps.OrderSvc, deps.PaymentSvc, logger))
	}

	orders := router.Group("/orders", identity, requireCustomer())
	{
		orders.GET("", listOrdersHandler(deps.OrderSvc))
		orders.GET("/:number", getOrderHandler(deps.OrderSvc))
	}

	// The gateway posts here; callers are not shoppers, so no identity.
	router.POST("/payments/mpesa/callback", mpesaCallbackHandler(deps.PaymentSvc, logger))

	admin := router.Group("/admin", identity, requireAdmin())
	{
		admin.PATCH("/orders/:number/status", transitionOrderHandler(deps.OrderSvc))
	}

	return router, nil
}
