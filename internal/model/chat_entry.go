package model

import (
	"encoding/json"
	"time"
)

// ChatEntry is one question/answer exchange. Sources is stored as a JSON
// array of source labels for portability.
type ChatEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Sources   string    `gorm:"type:text" json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceList returns the parsed source labels; empty on parse error.
func (e *ChatEntry) SourceList() []string {
	if e.Sources == "" {
		return nil
	}
	var v []string
	_ = json.Unmarshal([]byte(e.Sources), &v)
	return v
}

// SetSources stores the source labels as JSON.
func (e *ChatEntry) SetSources(sources []string) {
	if len(sources) == 0 {
		e.Sources = "[]"
		return
	}
	b, _ := json.Marshal(sources)
	e.Sources = string(b)
}
