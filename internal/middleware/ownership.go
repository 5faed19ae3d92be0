package middleware

import (
	"context" // Context for store lookups
	"errors"  // Programming errors in the chain

	"wallet_api/internal/apperr" // Typed errors
	"wallet_api/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// OwnerSource tells Ownership where the target user id lives in the request
type OwnerSource string

const (
	FromParams OwnerSource = "params" // :id path parameter
	FromQuery  OwnerSource = "query"  // ?userId= query parameter
	FromBody   OwnerSource = "body"   // userId of the validated payload
)

// Owned is implemented by payloads that name the user they belong to
type Owned interface {
	OwnerID() uint
}

// TransactionFinder loads a transaction by id
type TransactionFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.Transaction, error)
}

// Ownership checks that the caller is the user named by source.
// Callers holding adminRole pass regardless of the target.
func Ownership(source OwnerSource, adminRole uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := IdentityFrom(c) // Get identity from context
		// Check if identity exists in context
		if !exists {
			Abort(c, apperr.Unauthorized("User not logged in"))
			return
		}

		var ownerID uint
		switch source {
		case FromParams:
			id, err := ParamID(c)
			if err != nil {
				Abort(c, err)
				return
			}
			ownerID = id
		case FromQuery:
			raw := c.Query("userId")
			// Listing without a userId falls back to the caller
			if raw == "" {
				c.Next()
				return
			}
			id, err := parseID(raw, "userId")
			if err != nil {
				Abort(c, err)
				return
			}
			ownerID = id
		case FromBody:
			v, ok := c.Get(payloadKey)
			owned, isOwned := v.(Owned)
			if !ok || !isOwned {
				Abort(c, errors.New("ownership: body payload missing or not owned"))
				return
			}
			ownerID = owned.OwnerID()
		default:
			Abort(c, errors.New("ownership: unknown source "+string(source)))
			return
		}

		// Check if the caller owns the record
		if !identity.Owns(ownerID, adminRole) {
			Abort(c, apperr.Ownership("record"))
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// OwnershipTransaction loads the :id transaction and checks the caller owns it.
// The loaded record is available to handlers through TransactionFrom.
func OwnershipTransaction(finder TransactionFinder, adminRole uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := IdentityFrom(c)
		if !exists {
			Abort(c, apperr.Unauthorized("User not logged in"))
			return
		}
		id, err := ParamID(c)
		if err != nil {
			Abort(c, err)
			return
		}
		tx, err := finder.FindByID(c.Request.Context(), id) // Fetch transaction from database
		if err != nil {
			Abort(c, apperr.Persistence("transaction - GET", err))
			return
		}
		// Check if the transaction belongs to the caller
		if !identity.Owns(tx.UserID, adminRole) {
			Abort(c, apperr.Ownership("transaction"))
			return
		}
		c.Set(transactionKey, tx)
		c.Next()
	}
}
