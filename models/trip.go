// File: /models/trip.go
package models

import (
	"time"
)

type Trip struct {
	ID                string    `json:"id" gorm:"primaryKey;size:191"`
	Title             string    `json:"title" gorm:"not null;size:255"`
	Description       string    `json:"description" gorm:"not null;type:text"`
	StartDate         time.Time `json:"start_date" gorm:"not null"`
	EndDate           time.Time `json:"end_date" gorm:"not null"`
	LocationName      string    `json:"location_name" gorm:"not null;size:255"`
	LocationLatitude  float64   `json:"location_latitude" gorm:"not null"`
	LocationLongitude float64   `json:"location_longitude" gorm:"not null"`
	OrganizerID       string    `json:"organizer_id" gorm:"not null;size:191"`
	MaxParticipants   int       `json:"max_participants" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Organizer    User              `json:"organizer" gorm:"foreignKey:OrganizerID"`
	Waypoints    []TripWaypoint    `json:"waypoints" gorm:"foreignKey:TripID"`
	Participants []TripParticipant `json:"participants,omitempty" gorm:"foreignKey:TripID"`
}

// TripWaypoint is an ordered stop on a trip's route. Sequence values for a
// trip always form a contiguous ascending run starting at 1.
type TripWaypoint struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	TripID    string  `json:"trip_id" gorm:"not null;size:191;index"`
	Name      string  `json:"name" gorm:"not null;size:255"`
	Latitude  float64 `json:"latitude" gorm:"not null"`
	Longitude float64 `json:"longitude" gorm:"not null"`
	Sequence  int     `json:"sequence" gorm:"not null"`

	Trip Trip `json:"-" gorm:"foreignKey:TripID"`
}

// TripParticipant links a user to a trip. Created unapproved when the user
// requests to join; flipped to approved exactly once by the organizer.
type TripParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TripID    string    `json:"trip_id" gorm:"not null;size:191;index:idx_trip_participants_trip_user,unique"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index:idx_trip_participants_trip_user,unique"`
	Approved  bool      `json:"approved" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	Trip Trip `json:"-" gorm:"foreignKey:TripID"`
	User User `json:"user" gorm:"foreignKey:UserID"`
}

// MembershipState is the viewer's relation to a trip. Exactly one state
// applies per (trip, user) pair.
type MembershipState string

const (
	MembershipOrganizer MembershipState = "organizer"
	MembershipApproved  MembershipState = "approved"
	MembershipPending   MembershipState = "pending"
	MembershipNone      MembershipState = "none"
)

// TripWithCount is a directory listing entry carrying the approved
// participant count alongside the trip.
type TripWithCount struct {
	Trip
	ApprovedCount int64 `json:"approved_count"`
}
