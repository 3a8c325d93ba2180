package http

import (
	"net/http"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/logger"
	"video-publisher/usecase"

	"github.com/gin-gonic/gin"
)

type IDailymotionAuthHandler interface {
	Login(c *gin.Context)
	Callback(c *gin.Context)
}

type DailymotionAuthHandler struct {
	authUsecase  usecase.IAuthorizationUsecase
	mediaUsecase usecase.IMediaUsecase
}

func NewDailymotionAuthHandler(authUsecase usecase.IAuthorizationUsecase, mediaUsecase usecase.IMediaUsecase) IDailymotionAuthHandler {
	return &DailymotionAuthHandler{authUsecase: authUsecase, mediaUsecase: mediaUsecase}
}

// Login handles GET /api/dailymotion/login/:mediaId and redirects to the Dailymotion consent page.
func (h *DailymotionAuthHandler) Login(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	mediaID := c.Param("mediaId")
	if _, err := h.mediaUsecase.Get(c.Request.Context(), userID, mediaID); err != nil {
		writeError(c, err)
		return
	}
	authURL, err := h.authUsecase.Begin(c.Request.Context(), userID, mediaID, model.PlatformDailymotion)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback handles GET /auth/dailymotion/callback. The state token alone identifies the suspended upload.
func (h *DailymotionAuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	if errorParam := c.Query("error"); errorParam != "" {
		if err := h.authUsecase.Cancel(c.Request.Context(), state); err != nil {
			logger.GetLogger().WithField("error", err).Info("Denied authorization carried no live state")
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       errorParam,
			"description": c.Query("error_description"),
		})
		return
	}

	outcome, err := h.authUsecase.Complete(c.Request.Context(), c.Query("code"), state)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Dailymotion callback rejected")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Authorization completed", Data: outcome})
}
