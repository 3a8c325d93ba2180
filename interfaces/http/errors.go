package http

import (
	"errors"
	"net/http"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

const (
	ErrorUnmarshal    = "Error while unmarshal"
	ErrorUnauthorized = "unauthorized: missing user_id"
)

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var ve *model.ValidationError
	var se *model.InvalidStateError
	var ue *model.UploadError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ve.Error()})
	case errors.Is(err, model.ErrMediaNotFound):
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: err.Error()})
	case errors.Is(err, model.ErrEditLocked):
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: err.Error()})
	case errors.As(err, &se):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state", "reason": se.Reason})
	case errors.As(err, &ue):
		c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: ue.Error()})
	default:
		logger.GetLogger().WithField("path", c.FullPath()).WithField("error", err).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "internal error"})
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrorUnauthorized})
		return "", false
	}
	return userID, true
}
