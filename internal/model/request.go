package model

// StartChatRequest starts a new conversation. Message may be empty when an
// attachment is uploaded alongside the form.
type StartChatRequest struct {
	Message string `json:"message" form:"message"`
	UserID  string `json:"user_id" form:"user_id"`
}

// ContinueChatRequest appends a message to an existing conversation
type ContinueChatRequest struct {
	Message string `json:"message" form:"message"`
	UserID  string `json:"user_id" form:"user_id"`
}
