package api

import (
	"strings" // Path trimming

	"wallet_api/internal/config"     // Application configuration
	"wallet_api/internal/middleware" // Auth, ownership, validation

	"wallet_api/internal/utils" // Page cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Deps is everything the router wires into its handlers
type Deps struct {
	Users        UserStore
	Transactions TransactionStore
	Cache        *utils.Cache // nil disables caching
	Config       *config.Config
	Logger       *logrus.Logger
}

// NewRouter builds the engine with every route and its middleware chain
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Logger),           // One log line per request
		middleware.ErrorHandler(cfg.IsDevelopment()), // Render c.Errors as JSON
		middleware.Recovery(d.Logger),                // Panics become 500s
	)
	r.NoRoute(middleware.NoRoute())
	r.Static(strings.TrimSuffix(middleware.UploadURLPrefix, "/"), cfg.UploadDir) // Uploaded avatars

	auth := middleware.Auth(cfg.JWTSecret)                                    // Token check
	ownParams := middleware.Ownership(middleware.FromParams, cfg.AdminRoleID) // :id must be the caller
	ownTransaction := middleware.OwnershipTransaction(d.Transactions, cfg.AdminRoleID)

	r.POST("/auth/login", middleware.Validate[LoginRequest](), LoginHandler(d.Users, cfg.JWTSecret, cfg.JWTTTL))

	users := r.Group("/users")
	{
		users.GET("", auth, ListUsersHandler(d.Users, d.Cache))
		users.GET("/:id", middleware.CheckID(), auth, ownParams, GetUserHandler(d.Users))
		users.POST("", middleware.Validate[CreateUserRequest](), CreateUserHandler(d.Users, d.Cache))
		users.PATCH("/:id", middleware.CheckID(), middleware.Validate[UpdateUserRequest](), auth, ownParams, UpdateUserHandler(d.Users, d.Cache))
		users.DELETE("/:id", middleware.CheckID(), auth, ownParams, DeleteUserHandler(d.Users, d.Cache))
		users.POST("/:id/avatar", middleware.CheckID(), auth, ownParams,
			middleware.SingleImage("image", cfg.UploadDir, cfg.MaxUploadSize), UploadAvatarHandler(d.Users))
	}

	// Both spellings are served
	for _, base := range []string{"/Transactions", "/transactions"} {
		txs := r.Group(base)
		txs.GET("", auth, middleware.Ownership(middleware.FromQuery, cfg.AdminRoleID), ListTransactionsHandler(d.Transactions, d.Cache))
		txs.GET("/:id", auth, ownTransaction, GetTransactionHandler())
		txs.POST("", auth, middleware.Validate[TransactionRequest](), middleware.Ownership(middleware.FromBody, cfg.AdminRoleID),
			CreateTransactionHandler(d.Transactions, d.Cache))
		txs.PATCH("/:id", middleware.Validate[TransactionRequest](), auth, ownTransaction, UpdateTransactionHandler(d.Transactions, d.Cache))
		txs.DELETE("/:id", auth, ownTransaction, DeleteTransactionHandler(d.Transactions, d.Cache))
	}
	return r
}
