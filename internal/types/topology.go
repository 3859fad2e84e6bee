package types

import (
	"time"

	"github.com/google/uuid"
)

// Topology is one user-submitted document's knowledge graph. Content holds
// the full extracted source text so regeneration and quiz context never need
// the original file.
type Topology struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content   string    `gorm:"column:content;not null" json:"content"`
	MaxNodes  int       `gorm:"column:max_nodes;not null;default:0" json:"max_nodes"`
	UserID    string    `gorm:"column:user_id;not null;default:'anonymous';index" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Topology) TableName() string { return "topology" }
