package models

// OutboundMessageRequest is a manual message pushed through POST /send-message.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required,max=4096"`
	PreviewURL bool   `json:"preview_url"`
}
