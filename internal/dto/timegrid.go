package dto

// TimeGridPeriodRequest defines one period of the daily grid.
type TimeGridPeriodRequest struct {
	SlotIndex int     `json:"slotIndex" validate:"min=0"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   string  `json:"endTime" validate:"required"`
	Label     *string `json:"label,omitempty"`
	IsBreak   bool    `json:"isBreak"`
}

// ReplaceTimeGridRequest swaps the whole daily grid in one operation.
// Partial edits are not supported; the grid is small and always replaced
// wholesale.
type ReplaceTimeGridRequest struct {
	Periods []TimeGridPeriodRequest `json:"periods" validate:"required,min=1,dive"`
}
