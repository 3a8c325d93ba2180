package http

import (
	"net/http"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/infrastructure/logger"
	"video-publisher/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type IMediaHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
}

type MediaHandler struct {
	mediaUsecase usecase.IMediaUsecase
}

func NewMediaHandler(mediaUsecase usecase.IMediaUsecase) IMediaHandler {
	return &MediaHandler{mediaUsecase: mediaUsecase}
}

// Create handles POST /api/media, either a multipart upload or a JSON body with source_ref.
func (h *MediaHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateMediaRequest
	multipartForm := strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
	var err error
	if multipartForm {
		err = c.ShouldBindWith(&req, binding.FormMultipart)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + ": " + err.Error()})
		return
	}

	in := &usecase.CreateMediaInput{
		Title:       req.Title,
		Description: req.Description,
		Platforms:   splitPlatforms(req.Platforms),
		Privacy:     formPrivacy(&req),
		SourceRef:   req.SourceRef,
	}
	if req.File != nil {
		f, err := req.File.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "unreadable file"})
			return
		}
		defer func() { _ = f.Close() }()
		in.File = f
		in.FileName = req.File.Filename
	}

	item, err := h.mediaUsecase.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Res{
		ResponseCode:    "201",
		ResponseMessage: "Media created",
		Data:            dto.CreateMediaResponse{ID: item.ID, Message: "Media created"},
	})
}

func (h *MediaHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.mediaUsecase.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success", Data: items})
}

func (h *MediaHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	item, err := h.mediaUsecase.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success", Data: item})
}

// Update handles PATCH /api/media/:id. Published items answer 409.
func (h *MediaHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + ": " + err.Error()})
		return
	}
	item, err := h.mediaUsecase.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Media updated", Data: item})
}

// splitPlatforms accepts repeated form values as well as "YT,VM".
func splitPlatforms(in []string) []string {
	var out []string
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func formPrivacy(req *dto.CreateMediaRequest) map[string]string {
	privacy := map[string]string{}
	for k, v := range req.Privacy {
		privacy[k] = v
	}
	for code, v := range map[string]string{"YT": req.YouTubePrivacy, "VM": req.VimeoPrivacy, "DM": req.DailymotionPrivacy} {
		if v != "" {
			privacy[code] = v
		}
	}
	return privacy
}
