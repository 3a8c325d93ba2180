package dto

// PublishRequest selects media items and, optionally, a subset of their target platforms.
type PublishRequest struct {
	IDs       []string `json:"ids"`
	Platforms []string `json:"platforms"`
}

// PublishOneRequest is the body of the single-item publish endpoint.
type PublishOneRequest struct {
	Platforms []string `json:"platforms"`
}

type PublishPendingRequest struct {
	Limit int `json:"limit"`
}
