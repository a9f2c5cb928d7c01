// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/eltech/store-backend/internal/domain/cart"
	"github.com/eltech/store-backend/internal/domain/checkout"
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/domain/favorite"
	"github.com/eltech/store-backend/internal/domain/offering"
	"github.com/eltech/store-backend/internal/domain/order"
	"github.com/eltech/store-backend/internal/domain/post"
	"github.com/eltech/store-backend/internal/domain/product"
	"github.com/eltech/store-backend/internal/domain/restock"
	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/interfaces/http/handlers"
	"github.com/eltech/store-backend/internal/interfaces/http/middleware"
	"github.com/eltech/store-backend/internal/interfaces/http/ws"
	"github.com/eltech/store-backend/internal/pkg/auth"
	"github.com/eltech/store-backend/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

// Services is everything the route tree needs to build its handlers
type Services struct {
	Users     *user.Service
	UserAdmin *user.AdminService
	Products  *product.Service
	Restock   *restock.Service
	Coupons   *coupon.Service
	Carts     *cart.Service
	Checkout  *checkout.Service
	Orders    *order.Service
	Posts     *post.Service
	Favorites *favorite.Service
	Offerings *offering.Catalog
	Invoices  handlers.InvoiceGenerator
	Files     *storage.Local
	JWT       *auth.JWTManager
	Hub       *ws.Hub
}

// SetupRoutes registers every API route on the /api/v1 group
func SetupRoutes(rg *gin.RouterGroup, s *Services) {
	authRequired := middleware.AuthMiddleware(s.JWT)

	SetupAccountRoutes(rg, s, authRequired)
	SetupCatalogRoutes(rg, s, authRequired)
	SetupCartRoutes(rg, s, authRequired)
	SetupOrderRoutes(rg, s, authRequired)
	SetupPostRoutes(rg, s, authRequired)
	SetupFavoriteRoutes(rg, s, authRequired)
	SetupServiceRoutes(rg, s)
	SetupAdminRoutes(rg, s, authRequired)
}

// SetupAccountRoutes sets up registration, login, profile and newsletter routes
func SetupAccountRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(s.Users)
	profileHandler := handlers.NewUserProfileHandler(s.Users, s.Restock, s.Files)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/register", authHandler.Register)
		accounts.POST("/login", authHandler.Login)
		accounts.POST("/refresh", authHandler.RefreshToken)
		accounts.GET("/verify-email", authHandler.VerifyEmail)
		accounts.POST("/password-reset", authHandler.RequestPasswordReset)
		accounts.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
		accounts.POST("/subscribe", authHandler.Subscribe)
		accounts.POST("/unsubscribe", authHandler.Unsubscribe)

		protected := accounts.Group("")
		protected.Use(authRequired)
		{
			protected.POST("/verify-email/resend", profileHandler.ResendVerification)
			protected.GET("/me", profileHandler.GetProfile)
			protected.PUT("/me", profileHandler.UpdateProfile)
			protected.POST("/me/password", profileHandler.ChangePassword)
			protected.POST("/me/picture", profileHandler.UploadProfilePicture)
			protected.GET("/me/notifications", profileHandler.ListRestockNotifications)
		}
	}
}

// SetupCatalogRoutes sets up public product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	productHandler := handlers.NewProductHandler(s.Products, s.Restock, s.Files)
	reviewHandler := handlers.NewReviewHandler(s.Products)
	categoryHandler := handlers.NewCategoryHandler(s.Products, s.Files)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/weekly-deal", productHandler.GetWeeklyDeal)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.GetReviews)

		protected := products.Group("")
		protected.Use(authRequired)
		{
			protected.POST("/:id/rating", reviewHandler.RateProduct)
			protected.POST("/:id/reviews", reviewHandler.CreateReview)
			protected.PUT("/:id/reviews/:reviewId", reviewHandler.UpdateReview)
			protected.DELETE("/:id/reviews/:reviewId", reviewHandler.DeleteReview)
			protected.POST("/:id/notify", productHandler.NotifyWhenRestocked)
			protected.DELETE("/:id/notify", productHandler.CancelRestockNotification)
		}
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
	}
}

// SetupCartRoutes sets up cart, coupon and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	cartHandler := handlers.NewCartHandler(s.Carts)
	checkoutHandler := handlers.NewCheckoutHandler(s.Checkout)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(authRequired)
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cartGroup.POST("/coupon", cartHandler.ApplyCoupon)
		cartGroup.DELETE("/coupon", cartHandler.RemoveCoupon)
		cartGroup.GET("/checkout", checkoutHandler.GetSummary)
		cartGroup.POST("/checkout", checkoutHandler.PlaceOrder)
	}
}

// SetupOrderRoutes sets up the customer's order routes
func SetupOrderRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	orderHandler := handlers.NewOrderHandler(s.Orders)
	invoiceHandler := handlers.NewInvoiceHandler(s.Orders, s.Invoices)

	orders := rg.Group("/orders")
	orders.Use(authRequired)
	{
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetMyOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
	}
}

// SetupPostRoutes sets up blog post and comment routes
func SetupPostRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	postHandler := handlers.NewPostHandler(s.Posts, s.Files)

	posts := rg.Group("/posts")
	{
		posts.GET("", postHandler.GetPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.GET("/:id/comments", postHandler.GetComments)
		posts.GET("/:id/comments/:commentId", postHandler.GetComment)

		protected := posts.Group("")
		protected.Use(authRequired)
		{
			protected.POST("", postHandler.CreatePost)
			protected.PUT("/:id", postHandler.UpdatePost)
			protected.DELETE("/:id", postHandler.DeletePost)
			protected.POST("/:id/image", postHandler.UploadPostImage)
			protected.POST("/:id/comments", postHandler.CreateComment)
			protected.PATCH("/:id/comments/:commentId", postHandler.UpdateComment)
			protected.DELETE("/:id/comments/:commentId", postHandler.DeleteComment)
		}
	}
}

// SetupFavoriteRoutes sets up favorite product routes
func SetupFavoriteRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	favoriteHandler := handlers.NewFavoriteHandler(s.Favorites)

	favorites := rg.Group("/favorites")
	favorites.Use(authRequired)
	{
		favorites.GET("", favoriteHandler.GetFavorites)
		favorites.POST("", favoriteHandler.AddFavorite)
		favorites.GET("/:id", favoriteHandler.GetFavorite)
		favorites.DELETE("/:id", favoriteHandler.RemoveFavorite)
		favorites.POST("/:id/move-to-cart", favoriteHandler.MoveToCart)
	}
}

// SetupServiceRoutes sets up the public service offering routes
func SetupServiceRoutes(rg *gin.RouterGroup, s *Services) {
	serviceHandler := handlers.NewServiceHandler(s.Offerings, s.Files)

	services := rg.Group("/services")
	{
		services.GET("", serviceHandler.GetServices)
		services.GET("/:id", serviceHandler.GetService)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, s *Services, authRequired gin.HandlerFunc) {
	productHandler := handlers.NewProductHandler(s.Products, s.Restock, s.Files)
	categoryHandler := handlers.NewCategoryHandler(s.Products, s.Files)
	couponHandler := handlers.NewCouponHandler(s.Coupons)
	orderHandler := handlers.NewOrderHandler(s.Orders)
	userAdminHandler := handlers.NewUserAdminHandler(s.UserAdmin, s.Users)
	serviceHandler := handlers.NewServiceHandler(s.Offerings, s.Files)

	admin := rg.Group("/admin")
	admin.Use(authRequired, middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.GET("/export", productHandler.ExportProducts)
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
			adminProducts.DELETE("/:id", productHandler.DeleteProduct)
			adminProducts.PUT("/:id/stock", productHandler.UpdateStock)
			adminProducts.POST("/:id/images", productHandler.AddImage)
			adminProducts.DELETE("/:id/images/:imageId", productHandler.DeleteImage)
			adminProducts.POST("/:id/features", productHandler.AddFeature)
			adminProducts.DELETE("/:id/features/:featureId", productHandler.DeleteFeature)
		}

		admin.POST("/weekly-deals", productHandler.CreateWeeklyDeal)

		adminCategories := admin.Group("/categories")
		{
			adminCategories.POST("", categoryHandler.CreateCategory)
			adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
			adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
			adminCategories.POST("/:id/image", categoryHandler.UploadCategoryImage)
		}

		adminCoupons := admin.Group("/coupons")
		{
			adminCoupons.GET("", couponHandler.GetCoupons)
			adminCoupons.POST("", couponHandler.CreateCoupon)
			adminCoupons.GET("/:id", couponHandler.GetCoupon)
			adminCoupons.PUT("/:id", couponHandler.UpdateCoupon)
			adminCoupons.DELETE("/:id", couponHandler.DeleteCoupon)
		}

		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.GetOrders)
			adminOrders.GET("/feed", s.Hub.ServeWS)
			adminOrders.GET("/:id", orderHandler.GetOrder)
			adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", userAdminHandler.GetUsers)
			adminUsers.GET("/:id", userAdminHandler.GetUser)
			adminUsers.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
		}

		adminServices := admin.Group("/services")
		{
			adminServices.POST("", serviceHandler.CreateService)
			adminServices.PUT("/:id", serviceHandler.UpdateService)
			adminServices.DELETE("/:id", serviceHandler.DeleteService)
			adminServices.POST("/:id/logo", serviceHandler.UploadLogo)
		}
	}
}
