package api

import (
	"context"  // Context for store calls
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"wallet_api/internal/apperr"     // Typed errors
	"wallet_api/internal/domain"     // Importing domain models
	"wallet_api/internal/middleware" // Request context accessors
	"wallet_api/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// TransactionStore is the persistence the transaction handlers need
type TransactionStore interface {
	middleware.TransactionFinder
	List(ctx context.Context, userID uint, page, size int) ([]domain.Transaction, int64, error)
	Create(ctx context.Context, tx *domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id uint) error
}

// TransactionRequest is the body of POST and PATCH on transactions
type TransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`              // Number or numeric string
	Description string           `json:"description" binding:"required,max=255"` // Free text
	UserID      uint             `json:"userId" binding:"required"`              // Owner
	CategoryID  uint             `json:"categoryId" binding:"required"`          // Category reference
	Date        string           `json:"date" binding:"required,flexdate"`       // RFC3339 or YYYY-MM-DD
}

// OwnerID names the user the transaction is written for
func (r *TransactionRequest) OwnerID() uint { return r.UserID }

// applyTo copies the request onto tx; Date has already passed flexdate
func (r *TransactionRequest) applyTo(tx *domain.Transaction) {
	date, _ := domain.ParseDate(r.Date)
	tx.Amount = *r.Amount
	tx.Description = r.Description
	tx.UserID = r.UserID
	tx.CategoryID = r.CategoryID
	tx.Date = date
}

// transactionPage is the cached result of one list page
type transactionPage struct {
	Rows  []domain.Transaction `json:"rows"`  // Transactions on the page
	Total int64                `json:"total"` // Total number of the owner's transactions
}

// transactionsCachePrefix scopes cached pages to their owner
func transactionsCachePrefix(userID uint) string {
	return "txs:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// ListTransactionsHandler returns one page of a user's transactions, newest first
func ListTransactionsHandler(txs TransactionStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		identity, _ := middleware.IdentityFrom(c)
		userID := identity.UserID // Default to the caller
		if raw := c.Query("userId"); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, strconv.IntSize) // Checked by Ownership
			userID = uint(id)
		}
		page := pageParam(c)
		cacheKey := transactionsCachePrefix(userID) + "page:" + strconv.Itoa(page)

		var data transactionPage
		found, err := cache.Get(ctx, cacheKey, &data)
		if err != nil {
			logrus.WithError(err).WithField("key", cacheKey).Warn("Cache read failed")
		}
		if !found {
			rows, total, err := txs.List(ctx, userID, page, PageSize)
			if err != nil {
				_ = c.Error(apperr.Persistence("transaction - GET", err))
				return
			}
			data = transactionPage{Rows: rows, Total: total}
			if err := cache.Set(ctx, cacheKey, data); err != nil {
				logrus.WithError(err).WithField("key", cacheKey).Warn("Cache write failed")
			}
		}

		if data.Rows == nil {
			data.Rows = []domain.Transaction{} // Render an empty page as [] rather than null
		}
		code := http.StatusOK
		if len(data.Rows) == 0 {
			code = http.StatusNotFound
		}
		EndpointResponse(c, Response{
			Code:    code,
			Message: "Transaction retrieved successfully",
			Body:    data.Rows,
			Options: pageOptions(c, page, data.Total),
		})
	}
}

// GetTransactionHandler returns the transaction loaded by OwnershipTransaction
func GetTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, _ := middleware.TransactionFrom(c)
		EndpointResponse(c, Response{Message: "Transaction retrieved successfully", Body: tx})
	}
}

// CreateTransactionHandler records a transaction for the user named in the body
func CreateTransactionHandler(txs TransactionStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, _ := middleware.Payload[TransactionRequest](c)
		var tx domain.Transaction
		req.applyTo(&tx)
		if err := txs.Create(c.Request.Context(), &tx); err != nil {
			_ = c.Error(apperr.Persistence("transaction - POST", err))
			return
		}
		invalidate(c.Request.Context(), cache, transactionsCachePrefix(tx.UserID))
		// Log transaction details
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
			"amount":         tx.Amount.String(),
			"category_id":    tx.CategoryID,
		}).Info("Transaction created")
		EndpointResponse(c, Response{Code: http.StatusCreated, Message: "Transaction created", Body: tx})
	}
}

// UpdateTransactionHandler overwrites the editable fields of an owned transaction
func UpdateTransactionHandler(txs TransactionStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, _ := middleware.TransactionFrom(c)
		req, _ := middleware.Payload[TransactionRequest](c)
		// The owner is fixed once the transaction exists
		if req.UserID != tx.UserID {
			_ = c.Error(apperr.Ownership("transaction"))
			return
		}
		req.applyTo(tx)
		if err := txs.Update(c.Request.Context(), tx); err != nil {
			_ = c.Error(apperr.Persistence("transaction - PATCH", err))
			return
		}
		invalidate(c.Request.Context(), cache, transactionsCachePrefix(tx.UserID))
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
		}).Info("Transaction edited")
		EndpointResponse(c, Response{Message: "Transaction edited", Body: tx})
	}
}

// DeleteTransactionHandler removes an owned transaction
func DeleteTransactionHandler(txs TransactionStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, _ := middleware.TransactionFrom(c)
		if err := txs.Delete(c.Request.Context(), tx.ID); err != nil {
			_ = c.Error(apperr.Persistence("transaction - DELETE", err))
			return
		}
		invalidate(c.Request.Context(), cache, transactionsCachePrefix(tx.UserID))
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
		}).Info("Transaction eliminated")
		EndpointResponse(c, Response{Message: "Transaction eliminated", Body: gin.H{"id": tx.ID}})
	}
}
