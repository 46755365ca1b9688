package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"footware-store/internal/config"
	"footware-store/internal/db"
	"footware-store/internal/httpserver"
	"footware-store/internal/mpesa"
	cartrepo "footware-store/internal/repository/cart"
	catalogrepo "footware-store/internal/repository/catalog"
	couponrepo "footware-store/internal/repository/coupon"
	orderrepo "footware-store/internal/repository/order"
	paymentrepo "footware-store/internal/repository/payment"
	shippingrepo "footware-store/internal/repository/shipping"
	cartsvc "footware-store/internal/service/cart"
	ordersvc "footware-store/internal/service/order"
	paymentsvc "footware-store/internal/service/payment"
	"footware-store/internal/service/pricing"
	sessionsvc "footware-store/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	catalogRepo := catalogrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool)
	shippingRepo := shippingrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool, logger)

	tax := pricing.ZeroTax
	if !cfg.TaxRate.IsZero() {
		tax = pricing.FlatRateTax(cfg.TaxRate)
	}
	pricer := pricing.New(couponRepo, shippingRepo, tax)

	cartService := cartsvc.New(cartRepo, catalogRepo)
	orderService := ordersvc.New(cartRepo, orderRepo, pricer, logger)

	if !cfg.Mpesa.Configured() {
		logger.Printf("mpesa credentials not set, STK push will fail until configured")
	}
	gateway := mpesa.New(mpesa.Config{
		BaseURL:        cfg.Mpesa.BaseURL,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		Shortcode:      cfg.Mpesa.Shortcode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	})
	paymentService := paymentsvc.New(paymentRepo, gateway, logger)

	sessionService := sessionsvc.New()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc: catalogRepo,
		CartSvc:    cartService,
		OrderSvc:   orderService,
		PaymentSvc: paymentService,
		SessionSvc: sessionService,
		JWTSecret:  []byte(cfg.JWTSecret),
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
