package api

import (
	authUsecase "billmailer/internal/auth/usecase"
	batchDelivery "billmailer/internal/batch/delivery"
	batchUsecasePkg "billmailer/internal/batch/usecase"
	contactDelivery "billmailer/internal/contact/delivery"
	contactUsecasePkg "billmailer/internal/contact/usecase"
	"billmailer/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	config         *config.Config
	batchHandler   *batchDelivery.BatchHandler
	contactHandler *contactDelivery.ContactHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, contactUc contactUsecasePkg.ContactUsecase, batchUc batchUsecasePkg.BatchUsecase, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:    authUc,
		config:         cfg,
		batchHandler:   batchDelivery.NewBatchHandler(batchUc, authUc),
		contactHandler: contactDelivery.NewContactHandler(contactUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.batchHandler, h.contactHandler)

	return r.Run(addr)
}
