package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/logger"
)

// ErrorHandler renders the last error attached to the context as
// {"error":{"code","message"}}. Only an AppError's stable message reaches
// the client; its Internal cause and any non-AppError are logged with the
// request id and the acting user.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Get().With(
			"request_id", c.GetString(requestIDKey),
			"user_id", c.GetString(UserIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error())
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("request failed", "code", appErr.Code, "internal", appErr.Internal.Error())
		}

		c.JSON(appErr.StatusCode, errorBody(appErr))
	}
}

// abortWith stops the chain with appErr rendered the same way ErrorHandler does.
func abortWith(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, errorBody(appErr))
}

func errorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	}
}
