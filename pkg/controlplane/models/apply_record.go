package models

import "time"

// stateFailed is reconcile.StateFailed as stored.
const stateFailed = "failed"

// ApplyRecord is the audit entry of one apply against a section. The delta
// halves are stored as JSON text.
type ApplyRecord struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	Section    string            `gorm:"index;not null;size:255" json:"section"`
	Scope      string            `gorm:"size:16" json:"scope"`
	Operation  string            `gorm:"size:32" json:"operation"`
	Actor      string            `gorm:"size:255" json:"actor"`
	ToSet      map[string]string `gorm:"type:text;serializer:json" json:"to_set"`
	ToDelete   []string          `gorm:"type:text;serializer:json" json:"to_delete"`
	State      string            `gorm:"size:16;not null" json:"state"`
	Error      string            `gorm:"type:text" json:"error,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	CreatedAt  time.Time         `gorm:"index;autoCreateTime" json:"created_at"`
}

func (ApplyRecord) TableName() string { return "apply_records" }

// SetDelta stores both halves, never as null.
func (r *ApplyRecord) SetDelta(toSet map[string]string, toDelete []string) {
	if toSet == nil {
		toSet = map[string]string{}
	}
	if toDelete == nil {
		toDelete = []string{}
	}
	r.ToSet, r.ToDelete = toSet, toDelete
}

func (r *ApplyRecord) Failed() bool {
	return r.State == stateFailed
}
