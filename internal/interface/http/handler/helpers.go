package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/http/middleware"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/validation"
)

// actorID ID аутентифицированного пользователя; при отсутствии сразу отвечает 401.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		response.Error(c, apperror.ErrUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

// pathID разбирает UUID из параметра пути.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Parameter "+name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// bindError отвечает ошибкой валидации с понятным сообщением.
func bindError(c *gin.Context, err error) {
	response.Error(c, apperror.New(apperror.ErrCodeValidation, validation.MessageFor(err)))
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
