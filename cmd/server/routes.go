package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"randevu.backend/internal/interfaces/http/handlers"
	"randevu.backend/internal/interfaces/http/middleware"
	"randevu.backend/pkg/jwt"
)

type routeDeps struct {
	verificationHandler *handlers.VerificationHandler
	jwtService          *jwt.JWTService
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Public verification endpoints
		verifications := v1.Group("/verifications")
		{
			verifications.POST("/request", middleware.IdempotencyMiddleware(), d.verificationHandler.RequestCode)
			verifications.POST("/verify", d.verificationHandler.VerifyCode)
		}

		// Staff/maintenance endpoints
		admin := v1.Group("")
		admin.Use(middleware.AuthMiddleware(d.jwtService), middleware.RequireAdmin())
		{
			admin.GET("/verifications/stats", d.verificationHandler.GetStats)
			admin.POST("/verifications/cleanup", d.verificationHandler.Cleanup)
			admin.POST("/users/:id/verifications/invalidate", d.verificationHandler.InvalidateUserVerifications)
		}
	}
}
