package api

import (
	"net/http"

	"billmailer/internal/auth/delivery"
	authUsecase "billmailer/internal/auth/usecase"
	batchDelivery "billmailer/internal/batch/delivery"
	contactDelivery "billmailer/internal/contact/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, batchHandler *batchDelivery.BatchHandler, contactHandler *contactDelivery.ContactHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Contact directory (admin only)
		contacts := api.Group("/contacts")
		contacts.Use(delivery.AuthMiddleware(authUsecase), delivery.AdminRequired(authUsecase))
		{
			contacts.GET("", contactHandler.List)
			contacts.POST("", contactHandler.Create)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
		}

		// Archive session and sends (admin only)
		batches := api.Group("/batches")
		batches.Use(delivery.AuthMiddleware(authUsecase), delivery.AdminRequired(authUsecase))
		{
			batches.POST("/upload", batchHandler.Upload)
			batches.GET("/current", batchHandler.Rows)
			batches.PUT("/selection", batchHandler.SetSelection)
			batches.PUT("/filter", batchHandler.SetFilter)
			batches.POST("/refresh-contacts", batchHandler.RefreshContacts)
			batches.POST("/send", batchHandler.SendRow)
			batches.POST("/send-all", batchHandler.SendAllPending)
			batches.POST("/send-selected", batchHandler.SendSelected)
			batches.POST("/retry-failed", batchHandler.RetryFailed)
			batches.GET("/rows/pdf", batchHandler.RowPDF)
		}

		// Audit trail (admin only)
		api.GET("/sendlog", delivery.AuthMiddleware(authUsecase), delivery.AdminRequired(authUsecase), batchHandler.SendLog)
	}
}
