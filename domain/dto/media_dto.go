package dto

import "mime/multipart"

// CreateMediaRequest accepts either a multipart upload (File) or a JSON body pointing at an existing source.
type CreateMediaRequest struct {
	Title       string                `json:"title"       form:"title" binding:"required"`
	Description string                `json:"description" form:"description"`
	Platforms   []string              `json:"platforms"   form:"platforms" binding:"required"`
	Privacy     map[string]string     `json:"privacy"     form:"-"`
	SourceRef   string                `json:"source_ref"  form:"source_ref"`
	File        *multipart.FileHeader `json:"-"           form:"file"`
	// Per-platform privacy for multipart forms: youtube_privacy, vimeo_privacy, dailymotion_privacy
	YouTubePrivacy     string `json:"-" form:"youtube_privacy"`
	VimeoPrivacy       string `json:"-" form:"vimeo_privacy"`
	DailymotionPrivacy string `json:"-" form:"dailymotion_privacy"`
}

// UpdateMediaRequest holds the user-editable fields; nil means unchanged.
type UpdateMediaRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Platforms   []string          `json:"platforms"`
	Privacy     map[string]string `json:"privacy"`
}

type CreateMediaResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
