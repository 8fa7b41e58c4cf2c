package model

import "time"

// Keys under which the session survives reloads.
const (
	SessionKeyToken  = "token"
	SessionKeyUserID = "userId"
)

type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// SessionEntry is one persisted key of the client-local session state.
type SessionEntry struct {
	Key       string    `gorm:"column:state_key;type:varchar(64);primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionEntry) TableName() string {
	return "session_entries"
}
