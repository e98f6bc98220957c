package api

import (
	"errors"
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations
	"transaction_system/internal/domain"  // Importing domain models
	"transaction_system/internal/service" // Transaction service
	"transaction_system/internal/store"   // Store filters
	"transaction_system/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

const cacheTTL = 60 * time.Second

// CreateTransactionRequest represents a create request body
type CreateTransactionRequest struct {
	Name   string  `json:"name" binding:"required"`        // Transaction name
	Type   string  `json:"type" binding:"required"`        // Transaction type
	Amount float64 `json:"amount" binding:"required,gt=0"` // Amount, must be positive
	UserID string  `json:"userId" binding:"required"`      // Owning user
}

// UpdateTransactionRequest represents a partial update body. Absent fields
// are left unchanged.
type UpdateTransactionRequest struct {
	Name   *string  `json:"name"`
	Type   *string  `json:"type"`
	Amount *float64 `json:"amount"`
	Status *string  `json:"status"`
}

// CreateTransactionHandler creates a transaction for the user named in the body
func CreateTransactionHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		tx, err := svc.Create(c.Request.Context(), service.CreateTransactionInput{
			Name:   req.Name,
			Type:   domain.TransactionType(req.Type),
			Amount: req.Amount,
			UserID: req.UserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,     // New transaction ID
			"user_id":        tx.UserID, // Owning user
			"amount":         tx.Amount, // Transaction amount
			"type":           tx.Type,   // Transaction type
		}).Info("Transaction created")
		invalidateTransactionCaches(c, cache, tx.UserID)
		c.JSON(http.StatusCreated, tx)
	}
}

// GetTransactionHandler returns a single transaction by id
func GetTransactionHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tx)
	}
}

// ListTransactionsHandler returns a page of all transactions
func ListTransactionsHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return listHandler(svc, cache, func(c *gin.Context) store.TransactionFilter {
		return store.TransactionFilter{}
	}, "txs:all")
}

// ListUserTransactionsHandler returns a page of one user's transactions
func ListUserTransactionsHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return listHandler(svc, cache, func(c *gin.Context) store.TransactionFilter {
		return store.TransactionFilter{UserID: c.Param("userId")}
	}, "")
}

// listHandler serves a paginated transaction listing with a read-through
// cache. keyPrefix of "" derives the prefix from the userId route param.
func listHandler(svc *service.TransactionService, cache *utils.Cache, filterOf func(*gin.Context) store.TransactionFilter, keyPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)
		filter := filterOf(c)
		prefix := keyPrefix
		if prefix == "" {
			prefix = "txs:user:" + filter.UserID
		}
		cacheKey := prefix + ":page:" + strconv.Itoa(page) + ":limit:" + strconv.Itoa(limit)
		ctx := c.Request.Context()
		var cached service.TransactionPage
		// Try to get cached response
		found, err := cache.Get(ctx, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"data":       cached.Data,       // List of transactions
				"pagination": cached.Pagination, // Pagination metadata
				"cached":     true,              // Indicate response is from cache
			})
			return
		}
		result, err := svc.List(ctx, filter, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		// Cache the page for future requests
		_ = cache.Set(ctx, cacheKey, result, cacheTTL)
		c.JSON(http.StatusOK, gin.H{
			"data":       result.Data,       // List of transactions
			"pagination": result.Pagination, // Pagination metadata
			"cached":     false,             // Indicate response is not from cache
		})
	}
}

// UpdateTransactionHandler applies a partial update to a transaction
func UpdateTransactionHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.UpdateTransactionInput{
			Name:   req.Name,
			Amount: req.Amount,
		}
		if req.Type != nil {
			t := domain.TransactionType(*req.Type)
			in.Type = &t
		}
		if req.Status != nil {
			s := domain.TransactionStatus(*req.Status)
			in.Status = &s
		}
		tx, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,     // Updated transaction ID
			"user_id":        tx.UserID, // Owning user
		}).Info("Transaction updated")
		invalidateTransactionCaches(c, cache, tx.UserID)
		c.JSON(http.StatusOK, tx)
	}
}

// DeleteTransactionHandler removes a transaction
func DeleteTransactionHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		// Load first so the cache invalidation knows the former owner
		tx, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"transaction_id": id,        // Deleted transaction ID
			"user_id":        tx.UserID, // Former owner
		}).Info("Transaction deleted")
		invalidateTransactionCaches(c, cache, tx.UserID)
		c.Status(http.StatusNoContent)
	}
}

// GetUserBalanceHandler returns a user's cached balance
func GetUserBalanceHandler(svc *service.TransactionService, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		ctx := c.Request.Context()
		cacheKey := "balance:user:" + userID
		var cached float64
		// Try to get cached balance
		found, err := cache.Get(ctx, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"userId": userID, "balance": cached, "cached": true})
			return
		}
		balance, err := svc.GetUserBalance(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = cache.Set(ctx, cacheKey, balance, cacheTTL) // Cache the balance
		c.JSON(http.StatusOK, gin.H{"userId": userID, "balance": balance, "cached": false})
	}
}

// pageParams reads page and limit query parameters, defaulting to 1 and 10
func pageParams(c *gin.Context) (int, int) {
	page := 1   // Default page number
	limit := 10 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v // Set limit if valid
		}
	}
	return page, limit
}

// invalidateTransactionCaches drops the owner's balance cache and the first
// paginated list pages after a write (simple version: delete first 5 pages)
func invalidateTransactionCaches(c *gin.Context, cache *utils.Cache, userID string) {
	ctx := c.Request.Context()
	_ = cache.Delete(ctx, "balance:user:"+userID) // Invalidate balance cache
	for page := 1; page <= 5; page++ {
		// Delete cache entries for the global and per-user listings
		_ = cache.Delete(ctx, "txs:all:page:"+strconv.Itoa(page)+":limit:10")
		_ = cache.Delete(ctx, "txs:user:"+userID+":page:"+strconv.Itoa(page)+":limit:10")
	}
}

// respondError maps service errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "User does not have write permissions"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
