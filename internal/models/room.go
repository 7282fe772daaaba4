package models

import "time"

// RoomType classifies rooms for practical vs lecture placement.
type RoomType string

const (
	RoomTypeLectureHall RoomType = "LECTURE_HALL"
	RoomTypeLaboratory  RoomType = "LABORATORY"
	RoomTypeSeminar     RoomType = "SEMINAR"
)

// Room represents a bookable room on campus.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Type      RoomType  `db:"type" json:"type"`
	Capacity  *int      `db:"capacity" json:"capacity,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type      RoomType
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
