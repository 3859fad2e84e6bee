package types

import (
	"time"

	"github.com/google/uuid"
)

// QuizSession tracks one user's question streak against a single node.
type QuizSession struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopologyID         uuid.UUID `gorm:"type:uuid;not null;index" json:"topology_id"`
	NodeID             string    `gorm:"column:node_id;not null" json:"node_id"`
	ConsecutiveCorrect int       `gorm:"column:consecutive_correct;not null;default:0" json:"consecutive_correct"`
	Mastered           bool      `gorm:"column:mastered;not null;default:false" json:"mastered"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizSession) TableName() string { return "quiz_session" }
