package types

import (
	"time"

	"github.com/google/uuid"
)

// Question is one generated quiz question and, once answered, the user's
// answer with the evaluation outcome.
type Question struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopologyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"topology_id"`
	NodeID     string     `gorm:"column:node_id;not null" json:"node_id"`
	SessionID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	Question   string     `gorm:"column:question;not null" json:"question"`
	Answer     string     `gorm:"column:answer" json:"answer"`
	Feedback   string     `gorm:"column:feedback" json:"feedback"`
	Correct    bool       `gorm:"column:correct;not null;default:false" json:"correct"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	AnsweredAt *time.Time `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (Question) TableName() string { return "question" }
