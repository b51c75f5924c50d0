package model

// StartChatResponse is returned when a conversation was created
type StartChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Source         string `json:"source,omitempty"`
}

// ContinueChatResponse is returned for an appended exchange
type ContinueChatResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source,omitempty"`
}

// ErrorResponse is the error envelope shared by all endpoints
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
