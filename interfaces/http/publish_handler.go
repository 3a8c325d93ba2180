package http

import (
	"errors"
	"io"
	"net/http"

	"video-publisher/domain/dto"
	"video-publisher/infrastructure/logger"
	"video-publisher/usecase"

	"github.com/gin-gonic/gin"
)

type IPublishHandler interface {
	PublishOne(c *gin.Context)
	PublishBatch(c *gin.Context)
	PublishPending(c *gin.Context)
	Platforms(c *gin.Context)
}

type PublishHandler struct {
	publishUsecase usecase.IPublishUsecase
	mediaUsecase   usecase.IMediaUsecase
	registry       *usecase.AdapterRegistry
}

func NewPublishHandler(publishUsecase usecase.IPublishUsecase, mediaUsecase usecase.IMediaUsecase, registry *usecase.AdapterRegistry) IPublishHandler {
	return &PublishHandler{publishUsecase: publishUsecase, mediaUsecase: mediaUsecase, registry: registry}
}

// bindOptionalJSON treats an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// PublishOne handles POST /api/media/:id/publish.
func (h *PublishHandler) PublishOne(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.PublishOneRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + ": " + err.Error()})
		return
	}

	id := c.Param("id")
	item, err := h.mediaUsecase.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !item.HasSource() {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "no video file"})
		return
	}

	res, err := h.publishUsecase.Run(c.Request.Context(), userID, []string{id}, req.Platforms)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Publish finished", Data: res.Items[0]})
}

// PublishBatch handles POST /api/media/publish. Per-pair failures are reported in the body, never as a status code.
func (h *PublishHandler) PublishBatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + ": " + err.Error()})
		return
	}
	res, err := h.publishUsecase.Run(c.Request.Context(), userID, req.IDs, req.Platforms)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Publish finished", Data: res})
}

func (h *PublishHandler) PublishPending(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.PublishPendingRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + ": " + err.Error()})
		return
	}
	res, err := h.publishUsecase.RunPending(c.Request.Context(), userID, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Publish finished", Data: res})
}

func (h *PublishHandler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": h.registry.Platforms()})
}
