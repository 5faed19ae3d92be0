package middleware

import (
	"strconv"

	"wallet_api/internal/apperr"
	"wallet_api/internal/domain"

	"github.com/gin-gonic/gin"
)

// Context keys written by the middleware in this package
const (
	identityKey    = "identity"
	payloadKey     = "payload"
	transactionKey = "transaction"
	uploadKey      = "upload"
)

// Identity is the authenticated caller decoded from the access token
type Identity struct {
	UserID uint
	RoleID uint
}

// Owns reports whether the caller may act on a resource owned by ownerID.
// adminRole of zero disables the admin bypass.
func (i Identity) Owns(ownerID, adminRole uint) bool {
	return i.UserID == ownerID || (adminRole != 0 && i.RoleID == adminRole)
}

// IdentityFrom returns the identity stored by Auth
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// Payload returns the body bound by Validate[T]
func Payload[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(payloadKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}

// TransactionFrom returns the transaction loaded by OwnershipTransaction
func TransactionFrom(c *gin.Context) (*domain.Transaction, bool) {
	v, ok := c.Get(transactionKey)
	if !ok {
		return nil, false
	}
	tx, ok := v.(*domain.Transaction)
	return tx, ok
}

// ParamID parses the :id path parameter as a positive integer
func ParamID(c *gin.Context) (uint, error) {
	return parseID(c.Param("id"), "id")
}

func parseID(raw, field string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid "+field, apperr.FieldError{Field: field, Rule: "numeric"})
	}
	return uint(id), nil
}

// Abort records err for ErrorHandler and stops the chain
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
