package main

import (
	"context"                             // context package is needed for Redis operations
	"log"                                 // log package is needed for logging
	"transaction_system/internal/api"     // Custom package for API handlers
	"transaction_system/internal/config"  // Custom package for configuration
	"transaction_system/internal/middleware" // Custom package for middleware
	"transaction_system/internal/service" // Transaction service core
	"transaction_system/internal/store"   // Persistence layer
	"transaction_system/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the stores and the transaction service core
	userStore := store.NewGormUserStore(gormDB)
	txStore := store.NewGormTransactionStore(gormDB)
	gate := service.NewRoleGate(userStore) // Admin-only write gate
	balances := service.NewBalanceSynchronizer(txStore, userStore, eligibility(cfg))
	svc := service.NewTransactionService(txStore, userStore, gate, balances)
	cache := utils.NewCache(redisClient)

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(userStore))          // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(userStore, cfg.JWTSecret)) // Login endpoint

	// Transaction routes (protected by JWT)
	txGroup := r.Group("/transactions")
	txGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	txGroup.GET("", api.ListTransactionsHandler(svc, cache))                        // List all transactions
	txGroup.GET("/user/:userId", api.ListUserTransactionsHandler(svc, cache))       // List one user's transactions
	txGroup.GET("/user/:userId/balance", api.GetUserBalanceHandler(svc, cache))     // User balance endpoint
	txGroup.GET("/:id", api.GetTransactionHandler(svc))                             // Point lookup endpoint
	txGroup.POST("", api.CreateTransactionHandler(svc, cache))                      // Create endpoint
	txGroup.PATCH("/:id", api.UpdateTransactionHandler(svc, cache))                 // Partial update endpoint
	txGroup.DELETE("/:id", api.DeleteTransactionHandler(svc, cache))                // Delete endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}

// eligibility maps the configured predicate name to its implementation
func eligibility(cfg *config.Config) service.EligibilityPredicate {
	if cfg.BalanceEligibility == "completed" {
		return service.CompletedOnly
	}
	return service.AllTransactions
}
