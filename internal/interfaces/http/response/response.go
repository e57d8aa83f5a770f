package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "randevu.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response derived from an AppError. Anything else
// is treated as an internal error.
func Error(c *gin.Context, err error) {
	appErr, ok := err.(*domainerrors.AppError)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithFields sends an error response with extra payload fields
func ErrorWithFields(c *gin.Context, appErr *domainerrors.AppError, fields gin.H) {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(appErr.Status, body)
}
