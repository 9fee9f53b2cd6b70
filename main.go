package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"fastkart/internal/cache"
	"fastkart/internal/checkout"
	"fastkart/internal/config"
	"fastkart/internal/database"
	"fastkart/internal/handlers"
	"fastkart/internal/middleware"
	"fastkart/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("⚠️ cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	redisOpts, err := redis.ParseURL(config.AppEnv.RedisURI)
	if err != nil {
		log.Fatal(err)
	}
	rdb := redis.NewClient(redisOpts)

	gateway := payment.NewRazorpayGateway(
		config.AppEnv.RazorpayKeyID,
		config.AppEnv.RazorpayKeySecret,
	)
	orders := database.NewMongoOrderStore(db)

	svc := &checkout.Service{
		Catalog:        database.NewMongoCatalog(db),
		Carts:          database.NewMongoCartStore(db),
		Orders:         orders,
		Gateway:        gateway,
		Locks:          cache.NewRedisCheckoutStore(rdb, config.AppEnv.CheckoutLockTTL),
		Idem:           cache.NewRedisCheckoutStore(rdb, config.AppEnv.IdempotencyTTL),
		Tokens:         checkout.NewTokenCodec(config.AppEnv.CheckoutCookieSecret),
		Currency:       config.AppEnv.Currency,
		GatewayTimeout: config.AppEnv.GatewayTimeout,
	}

	reconciler := &checkout.Reconciler{
		Orders:   orders,
		Gateway:  gateway,
		After:    config.AppEnv.ReconcileAfter,
		Interval: config.AppEnv.ReconcileInterval,
	}
	go reconciler.Run(context.Background())

	r := gin.Default()

	r.GET("/healthz", handlers.Health(db))
	r.GET("/api/products", handlers.GetProducts(db))

	r.POST("/api/payment",
		middleware.UserSession(config.AppEnv.JWTSecret),
		handlers.CreatePayment(db, svc),
	)
	r.GET("/api/orders",
		middleware.UserAuth(config.AppEnv.JWTSecret),
		handlers.GetMyOrders(db),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
