package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sportevents/backend/internal/model"
	"github.com/sportevents/backend/internal/service"
	"go.uber.org/zap"
)

const (
	errorStatusKey     = "error_status"
	internalErrMessage = "Internal server error"
)

// statusOverride renders errors of kind with status instead of the kind's
// default, for endpoints whose contract differs from the taxonomy.
type statusOverride struct {
	kind   service.ErrorKind
	status int
}

// fail records err for ErrorHandler and stops the handler chain.
func fail(c *gin.Context, err error, overrides ...statusOverride) {
	if kind, ok := service.KindOf(err); ok {
		for _, o := range overrides {
			if o.kind == kind {
				c.Set(errorStatusKey, o.status)
				break
			}
		}
	}
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error recorded with fail. AppErrors are
// shown to the client; anything else becomes a 500 whose detail is hidden
// in production.
func ErrorHandler(logger *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *service.AppError
		if errors.As(err, &appErr) {
			status := appErr.Status()
			if v, ok := c.Get(errorStatusKey); ok {
				if override, ok := v.(int); ok {
					status = override
				}
			}
			logger.Info("request rejected",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("kind", appErr.Kind.String()),
				zap.String("message", appErr.Message),
			)
			c.JSON(status, model.NewErrorResponse(appErr.Message))
			return
		}

		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message := internalErrMessage
		if !production {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(message))
	}
}

// Recovery turns panics into the same 500 body ErrorHandler uses.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.NewErrorResponse(internalErrMessage))
	})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, service.TranslateValidation(err))
		return false
	}
	return true
}
