package models

import "time"

// TimeGridPeriod maps a slotIndex ordinal to wall-clock boundaries and
// display metadata. Conflict detection never consults clock times; it is
// index based, this table exists for display and export only.
type TimeGridPeriod struct {
	ID         string    `db:"id" json:"id"`
	SlotIndex  int       `db:"slot_index" json:"slot_index"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Label      *string   `db:"label" json:"label,omitempty"`
	IsBreak    bool      `db:"is_break" json:"is_break"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
