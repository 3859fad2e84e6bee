package types

import "github.com/google/uuid"

// Edge is a directed labeled relation between two nodes of one topology.
// Re-insertion of the same (topology, from, to) replaces the label.
type Edge struct {
	TopologyID uuid.UUID `gorm:"type:uuid;primaryKey" json:"topology_id"`
	FromNode   string    `gorm:"column:from_node;primaryKey" json:"from"`
	ToNode     string    `gorm:"column:to_node;primaryKey" json:"to"`
	Label      string    `gorm:"column:label" json:"label"`
}

func (Edge) TableName() string { return "edge" }
