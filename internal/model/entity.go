package model

import (
	"time"
)

// Message roles. The vision provider speaks user/model; the fast text
// provider expects model turns remapped to assistant.
const (
	RoleUser      = "user"
	RoleModel     = "model"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is a titled message thread owned by one user
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn in a conversation
type Message struct {
	ID             int64     `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// KnowledgeEntry is a pre-authored FAQ record consulted before any
// generative provider call. Maintained by the content-management surface;
// read-only here.
type KnowledgeEntry struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Attachment is the binary part of one request. It lives in memory for the
// duration of the request and is never persisted as a row; when the user
// sent no text, a "[File: <name>]" placeholder is stored instead.
type Attachment struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Placeholder returns the persisted stand-in for an attachment-only message
func (a *Attachment) Placeholder() string {
	return "[File: " + a.Filename + "]"
}

// DailySummary is one AI-generated agronomy report per calendar day
type DailySummary struct {
	SummaryDate       string    `json:"summary_date"`
	AvgTemperature    float64   `json:"avg_temperature"`
	AvgHumidity       float64   `json:"avg_humidity"`
	AvgPH             float64   `json:"avg_ph"`
	AvgLightIntensity int       `json:"avg_light_intensity"`
	PlantStatus       string    `json:"plant_status"`
	Diagnosis         string    `json:"diagnosis"`
	Recommendation    string    `json:"recommendation"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}
