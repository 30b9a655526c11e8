package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, централизованно.
// Доменные ошибки отдаются как есть, прочие маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		fields := logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"code":   apperror.CodeOf(err),
		}
		if apperror.CodeOf(err) == apperror.ErrCodeInternal || apperror.CodeOf(err) == apperror.ErrCodeDatabaseError {
			logger.WithFields(fields).WithError(err).Error("http: ошибка запроса")
		} else {
			logger.WithFields(fields).WithError(err).Debug("http: запрос отклонён")
		}

		response.Error(c, err)
	}
}

// Recovery перехватывает panic в обработчиках и отвечает 500 в общем формате.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"panic":  recovered,
		}).Error("http: panic в обработчике")
		response.Error(c, apperror.New(apperror.ErrCodeInternal, "Internal server error"))
		c.Abort()
	})
}

// RequestLogger пишет в logrus строку на каждый запрос.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.WithFields(logrus.Fields{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"client_ip": c.ClientIP(),
			"user_id":   UserID(c),
		}).Info("http: запрос")
	}
}
