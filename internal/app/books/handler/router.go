package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Book Review API
// Чтение каталога и поиск публичные, мутации требуют JWT
func SetupRoutes(
	bookHandler *BookHandler,
	reviewHandler *ReviewHandler,
	searchHandler *SearchHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("book-review-api"))

	router.Use(cors.Default())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Book Review API"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "book-review-api",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		books := api.Group("/books")
		{
			books.GET("", bookHandler.GetBooks)
			books.GET("/genres", bookHandler.GetGenreStats)
			books.GET("/:id", bookHandler.GetBook)

			books.POST("", authMiddleware.Authenticate(), bookHandler.CreateBook)
			books.POST("/:id/reviews", authMiddleware.Authenticate(), reviewHandler.CreateReview)
		}

		reviews := api.Group("/reviews")
		reviews.Use(authMiddleware.Authenticate())
		{
			reviews.GET("", reviewHandler.GetMyReviews)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		api.GET("/search", searchHandler.SearchBooks)
	}

	return router
}
