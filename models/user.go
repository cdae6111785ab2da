// File: /models/user.go
package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	FirstName     string    `json:"first_name" gorm:"not null;size:255"`
	LastName      string    `json:"last_name" gorm:"not null;size:255"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string    `json:"-" gorm:"not null;size:255"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	Age           *int      `json:"age"`
	Bio           *string   `json:"bio" gorm:"type:text"`
	Avatar        *string   `json:"avatar" gorm:"size:500"`
	Rating        *float64  `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	OrganizedTrips []Trip            `json:"organized_trips,omitempty" gorm:"foreignKey:OrganizerID"`
	Participations []TripParticipant `json:"participations,omitempty" gorm:"foreignKey:UserID"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserSummary is the public subset of a user attached to trips and messages.
type UserSummary struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Avatar    *string `json:"avatar"`
	Rating    *float64 `json:"rating,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Rating:    u.Rating,
	}
}
