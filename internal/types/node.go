package types

import "github.com/google/uuid"

// Node is a concept with mastery tracking. ID is the raw concept label; the
// composite key with TopologyID keeps labels from colliding across graphs.
type Node struct {
	TopologyID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"topology_id"`
	ID                 string    `gorm:"primaryKey" json:"id"`
	Label              string    `gorm:"column:label;not null" json:"label"`
	Level              int       `gorm:"column:level;not null;default:0" json:"level"`
	Value              int       `gorm:"column:value;not null;default:1" json:"value"`
	Mastered           bool      `gorm:"column:mastered;not null;default:false" json:"mastered"`
	MasteryScore       float64   `gorm:"column:mastery_score;not null;default:0" json:"mastery_score"`
	ConsecutiveCorrect int       `gorm:"column:consecutive_correct;not null;default:0" json:"consecutive_correct"`
	ContentSnippet     string    `gorm:"column:content_snippet" json:"content_snippet"`
}

func (Node) TableName() string { return "node" }
