// File: /services/trip_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tripcrew-api/models"
	"tripcrew-api/utils"
)

var (
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrInvalidCapacity    = errors.New("max participants must be at least 2")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrWaypointNotFound   = errors.New("waypoint not found")
)

type WaypointInput struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

type CreateTripInput struct {
	Title             string          `json:"title" binding:"required"`
	Description       string          `json:"description" binding:"required"`
	StartDate         time.Time       `json:"start_date" binding:"required"`
	EndDate           time.Time       `json:"end_date" binding:"required"`
	LocationName      string          `json:"location_name" binding:"required"`
	LocationLatitude  float64         `json:"location_latitude"`
	LocationLongitude float64         `json:"location_longitude"`
	MaxParticipants   int             `json:"max_participants" binding:"required"`
	Waypoints         []WaypointInput `json:"waypoints"`
}

type TripService struct {
	db *gorm.DB
}

func NewTripService(db *gorm.DB) *TripService {
	return &TripService{db: db}
}

// Create validates and persists a trip, then its waypoints in the supplied
// order with ascending sequence numbers starting at 1. Waypoint insertion is
// best-effort: a failure after the trip row is committed leaves the trip
// without that part of its route rather than rolling the trip back.
func (s *TripService) Create(organizerID string, input CreateTripInput) (*models.Trip, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if input.MaxParticipants < 2 {
		return nil, ErrInvalidCapacity
	}
	if !utils.IsValidLatitude(input.LocationLatitude) || !utils.IsValidLongitude(input.LocationLongitude) {
		return nil, ErrInvalidCoordinates
	}

	trip := models.Trip{
		ID:                uuid.New().String(),
		Title:             input.Title,
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		LocationName:      input.LocationName,
		LocationLatitude:  input.LocationLatitude,
		LocationLongitude: input.LocationLongitude,
		OrganizerID:       organizerID,
		MaxParticipants:   input.MaxParticipants,
	}

	if err := s.db.Create(&trip).Error; err != nil {
		return nil, err
	}

	for i, wp := range input.Waypoints {
		waypoint := models.TripWaypoint{
			TripID:    trip.ID,
			Name:      wp.Name,
			Latitude:  wp.Latitude,
			Longitude: wp.Longitude,
			Sequence:  i + 1,
		}
		if err := s.db.Create(&waypoint).Error; err != nil {
			fmt.Printf("Warning: Could not create waypoint %d for trip %s: %v\n", i+1, trip.ID, err)
		}
	}

	if err := s.db.Preload("Waypoints", waypointOrder).Preload("Organizer").First(&trip, "id = ?", trip.ID).Error; err != nil {
		return nil, err
	}

	return &trip, nil
}

func waypointOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

// Get loads a trip with organizer and ordered waypoints.
func (s *TripService) Get(tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.Preload("Organizer").Preload("Waypoints", waypointOrder).
		First(&trip, "id = ?", tripID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// List returns a page of trips, each with its approved participant count.
// The counts come from one grouped query rather than a query per trip; the
// per-trip count is the observable contract.
func (s *TripService) List(page, limit int, search string) ([]models.TripWithCount, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	offset := (page - 1) * limit

	var trips []models.Trip
	query := s.db.Preload("Organizer").Preload("Waypoints", waypointOrder)

	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ? OR location_name LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Order("start_date ASC").Offset(offset).Limit(limit).Find(&trips).Error; err != nil {
		return nil, err
	}

	counts, err := s.approvedCounts(trips)
	if err != nil {
		return nil, err
	}

	result := make([]models.TripWithCount, 0, len(trips))
	for _, trip := range trips {
		trip.Organizer.Password = ""
		result = append(result, models.TripWithCount{
			Trip:          trip,
			ApprovedCount: counts[trip.ID],
		})
	}
	return result, nil
}

func (s *TripService) approvedCounts(trips []models.Trip) (map[string]int64, error) {
	counts := make(map[string]int64, len(trips))
	if len(trips) == 0 {
		return counts, nil
	}

	ids := make([]string, 0, len(trips))
	for _, trip := range trips {
		ids = append(ids, trip.ID)
	}

	type row struct {
		TripID string
		Count  int64
	}
	var rows []row
	err := s.db.Model(&models.TripParticipant{}).
		Select("trip_id, COUNT(*) as count").
		Where("trip_id IN ? AND approved = ?", ids, true).
		Group("trip_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.TripID] = r.Count
	}
	return counts, nil
}

// ListJoined returns trips the user has requested or joined, newest first.
func (s *TripService) ListJoined(userID string) ([]models.TripParticipant, error) {
	var participations []models.TripParticipant
	err := s.db.Preload("Trip").Preload("Trip.Organizer").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&participations).Error
	if err != nil {
		return nil, err
	}
	return participations, nil
}

// ListCreated returns trips organized by the user.
func (s *TripService) ListCreated(userID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := s.db.Preload("Waypoints", waypointOrder).
		Where("organizer_id = ?", userID).
		Order("start_date ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// AddWaypoint appends a stop at the end of the trip's route, organizer-only.
func (s *TripService) AddWaypoint(tripID, organizerID string, input WaypointInput) (*models.TripWaypoint, error) {
	trip, err := s.Get(tripID)
	if err != nil {
		return nil, err
	}
	if trip.OrganizerID != organizerID {
		return nil, ErrNotOrganizer
	}
	if !utils.IsValidLatitude(input.Latitude) || !utils.IsValidLongitude(input.Longitude) {
		return nil, ErrInvalidCoordinates
	}

	var maxSequence int
	err = s.db.Model(&models.TripWaypoint{}).
		Where("trip_id = ?", tripID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSequence).Error
	if err != nil {
		return nil, err
	}

	waypoint := models.TripWaypoint{
		TripID:    tripID,
		Name:      input.Name,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Sequence:  maxSequence + 1,
	}
	if err := s.db.Create(&waypoint).Error; err != nil {
		return nil, err
	}
	return &waypoint, nil
}

// RemoveWaypoint deletes a stop and renumbers the remainder so sequences
// stay a contiguous 1..N run.
func (s *TripService) RemoveWaypoint(tripID, organizerID string, waypointID uint) error {
	trip, err := s.Get(tripID)
	if err != nil {
		return err
	}
	if trip.OrganizerID != organizerID {
		return ErrNotOrganizer
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var waypoint models.TripWaypoint
		if err := tx.Where("id = ? AND trip_id = ?", waypointID, tripID).First(&waypoint).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWaypointNotFound
			}
			return err
		}

		if err := tx.Delete(&waypoint).Error; err != nil {
			return err
		}

		var remaining []models.TripWaypoint
		if err := tx.Where("trip_id = ?", tripID).Order("sequence ASC").Find(&remaining).Error; err != nil {
			return err
		}

		for i := range remaining {
			if remaining[i].Sequence != i+1 {
				if err := tx.Model(&remaining[i]).Update("sequence", i+1).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
