package api

import (
	"context"  // Context for store and cache calls
	"net/http" // HTTP status codes
	"os"       // Upload cleanup
	"strconv"  // String conversion

	"wallet_api/internal/apperr"     // Typed errors
	"wallet_api/internal/domain"     // Importing domain models
	"wallet_api/internal/middleware" // Request context accessors
	"wallet_api/internal/store"      // Persistence layer
	"wallet_api/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserStore is the persistence the user handlers need
type UserStore interface {
	List(ctx context.Context, page, size int) ([]domain.User, int64, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindOrCreate(ctx context.Context, candidate *domain.User) (*domain.User, bool, error)
	Update(ctx context.Context, id uint, patch store.UserPatch) (*domain.User, error)
	SetAvatar(ctx context.Context, id uint, path string) error
	Delete(ctx context.Context, id uint) error
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`        // First name must be provided
	LastName  string `json:"lastName" binding:"required,max=100"`         // Last name must be provided
	Email     string `json:"email" binding:"required,email,max=191"`      // Email is the identity key
	Password  string `json:"password" binding:"required,min=8,bcryptmax"` // At most 72 bytes
}

// UpdateUserRequest is the body of PATCH /users/:id; absent fields stay untouched
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"` // New first name
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`  // New last name
	Email     *string `json:"email" binding:"omitempty,email,max=191"`     // New email
}

// userPage is the cached result of one list page
type userPage struct {
	Rows  []domain.User `json:"rows"`  // Users on the page
	Total int64         `json:"total"` // Total number of users
}

const usersCachePrefix = "users:" // Every cached user list key starts with this

// ListUsersHandler returns one page of users with links to its neighbours
func ListUsersHandler(users UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := pageParam(c)                                        // 0-based page number
		cacheKey := usersCachePrefix + "page:" + strconv.Itoa(page) // Cache key for this page

		var data userPage
		found, err := cache.Get(ctx, cacheKey, &data)
		if err != nil {
			logrus.WithError(err).WithField("key", cacheKey).Warn("Cache read failed")
		}
		if !found {
			rows, total, err := users.List(ctx, page, PageSize) // Fetch paginated users
			if err != nil {
				_ = c.Error(apperr.Persistence("user - GET", err))
				return
			}
			data = userPage{Rows: rows, Total: total}
			// Cache the page for future requests
			if err := cache.Set(ctx, cacheKey, data); err != nil {
				logrus.WithError(err).WithField("key", cacheKey).Warn("Cache write failed")
			}
		}

		if data.Rows == nil {
			data.Rows = []domain.User{} // Render an empty page as [] rather than null
		}
		code := http.StatusOK
		if len(data.Rows) == 0 {
			code = http.StatusNotFound // Page past the end
		}
		EndpointResponse(c, Response{
			Code:    code,
			Message: "User retrieved successfully",
			Body:    data.Rows,
			Options: pageOptions(c, page, data.Total),
		})
	}
}

// GetUserHandler returns a single user by id
func GetUserHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.ParamID(c) // Checked by CheckID
		user, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(apperr.Persistence("user - GET", err))
			return
		}
		EndpointResponse(c, Response{Message: "User retrieved successfully", Body: user})
	}
}

// CreateUserHandler encrypts the password and finds or creates the user by email
func CreateUserHandler(users UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, _ := middleware.Payload[CreateUserRequest](c)
		hash, err := utils.EncryptPassword(req.Password) // Hash the password
		if err != nil {
			_ = c.Error(apperr.Security("user - POST", err))
			return
		}
		candidate := &domain.User{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  hash,
		}
		user, created, err := users.FindOrCreate(c.Request.Context(), candidate)
		if err != nil {
			_ = c.Error(apperr.Persistence("user - POST", err))
			return
		}
		// Existing email, nothing was written
		if !created {
			EndpointResponse(c, Response{Message: "Email provided already existing", Body: user})
			return
		}
		invalidate(c.Request.Context(), cache, usersCachePrefix)
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // New user ID
			"email":   user.Email,
		}).Info("User created")
		EndpointResponse(c, Response{Code: http.StatusCreated, Message: "User created", Body: user})
	}
}

// UpdateUserHandler applies a partial update and returns the edited fields
func UpdateUserHandler(users UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.ParamID(c)
		req, _ := middleware.Payload[UpdateUserRequest](c)
		patch := store.UserPatch{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
		user, err := users.Update(c.Request.Context(), id, patch)
		if err != nil {
			_ = c.Error(apperr.Persistence("user - PATCH", err))
			return
		}
		invalidate(c.Request.Context(), cache, usersCachePrefix)
		logrus.WithField("user_id", id).Info("User edited")
		EndpointResponse(c, Response{Message: "User edited", Body: user})
	}
}

// DeleteUserHandler removes a user by id
func DeleteUserHandler(users UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.ParamID(c)
		if err := users.Delete(c.Request.Context(), id); err != nil {
			_ = c.Error(apperr.Persistence("user - DELETE", err))
			return
		}
		invalidate(c.Request.Context(), cache, usersCachePrefix)
		logrus.WithField("user_id", id).Info("User eliminated")
		EndpointResponse(c, Response{Message: "User eliminated", Body: gin.H{"id": id}})
	}
}

// UploadAvatarHandler points the user's avatar at the file stored by SingleImage
func UploadAvatarHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := middleware.ParamID(c)
		file, _ := middleware.UploadFrom(c)
		if err := users.SetAvatar(c.Request.Context(), id, file.URL); err != nil {
			_ = os.Remove(file.Path) // Drop the orphaned upload
			_ = c.Error(apperr.Persistence("user - AVATAR", err))
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": id,
			"file":    file.Name,
			"mime":    file.MIME,
		}).Info("Avatar updated")
		EndpointResponse(c, Response{Message: "Avatar updated", Body: gin.H{"id": id, "avatar": file.URL}})
	}
}

// invalidate drops every cached page under prefix, logging rather than failing the request
func invalidate(ctx context.Context, cache *utils.Cache, prefix string) {
	if err := cache.DeletePrefix(ctx, prefix); err != nil {
		logrus.WithError(err).WithField("prefix", prefix).Warn("Cache invalidation failed")
	}
}
