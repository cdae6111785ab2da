// File: /services/participant_service.go
package services

import (
	"errors"

	"gorm.io/gorm"
	"tripcrew-api/models"
	"tripcrew-api/repositories"
)

var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrTripFull            = errors.New("trip has reached its maximum number of participants")
	ErrAlreadyMember       = errors.New("a join request for this trip already exists")
	ErrNotOrganizer        = errors.New("only the trip organizer can approve participants")
	ErrParticipantNotFound = errors.New("no join request found for this user")
	ErrAlreadyApproved     = errors.New("participant is already approved")
	ErrOrganizerJoin       = errors.New("the organizer is already part of their own trip")
)

type ParticipantService struct {
	db *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{db: db}
}

// RequestToJoin files a pending join request. Capacity is measured against
// approved participants only, so a full trip can still accumulate pending
// requests it will never be able to grant.
func (s *ParticipantService) RequestToJoin(tripID, userID string) (*models.TripParticipant, error) {
	var trip models.Trip
	if err := s.db.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if trip.OrganizerID == userID {
		return nil, ErrOrganizerJoin
	}

	var existing models.TripParticipant
	if err := s.db.Where("trip_id = ? AND user_id = ?", tripID, userID).First(&existing).Error; err == nil {
		return nil, ErrAlreadyMember
	}

	approved, err := s.ApprovedCount(tripID)
	if err != nil {
		return nil, err
	}
	if approved >= int64(trip.MaxParticipants) {
		return nil, ErrTripFull
	}

	participant := models.TripParticipant{
		TripID:   tripID,
		UserID:   userID,
		Approved: false,
	}
	if err := s.db.Create(&participant).Error; err != nil {
		return nil, err
	}

	return &participant, nil
}

// Approve flips a pending request to approved and grants the user chat
// access in the same transaction: the capacity re-check, the approval flip,
// the room find-or-create and the membership grant either all commit or all
// roll back, so an approved-but-chatless participant cannot exist.
func (s *ParticipantService) Approve(tripID, organizerID, userID string) error {
	var trip models.Trip
	if err := s.db.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTripNotFound
		}
		return err
	}

	if trip.OrganizerID != organizerID {
		return ErrNotOrganizer
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var participant models.TripParticipant
		if err := tx.Where("trip_id = ? AND user_id = ?", tripID, userID).First(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParticipantNotFound
			}
			return err
		}

		if participant.Approved {
			return ErrAlreadyApproved
		}

		var approved int64
		if err := tx.Model(&models.TripParticipant{}).
			Where("trip_id = ? AND approved = ?", tripID, true).
			Count(&approved).Error; err != nil {
			return err
		}
		if approved >= int64(trip.MaxParticipants) {
			return ErrTripFull
		}

		if err := tx.Model(&participant).Update("approved", true).Error; err != nil {
			return err
		}

		room, err := repositories.FindOrCreateRoomTx(tx, tripID)
		if err != nil {
			return err
		}

		return repositories.AddMemberTx(tx, room.ID, userID)
	})
}

// MembershipState reports the viewer's relation to a trip. The four states
// are mutually exclusive and drive which action the client exposes.
func (s *ParticipantService) MembershipState(tripID, userID string) (models.MembershipState, error) {
	var trip models.Trip
	if err := s.db.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTripNotFound
		}
		return "", err
	}

	if trip.OrganizerID == userID {
		return models.MembershipOrganizer, nil
	}

	var participant models.TripParticipant
	err := s.db.Where("trip_id = ? AND user_id = ?", tripID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MembershipNone, nil
		}
		return "", err
	}

	if participant.Approved {
		return models.MembershipApproved, nil
	}
	return models.MembershipPending, nil
}

// ApprovedCount returns how many approved participants a trip has.
func (s *ParticipantService) ApprovedCount(tripID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.TripParticipant{}).
		Where("trip_id = ? AND approved = ?", tripID, true).
		Count(&count).Error
	return count, err
}

// PendingApplicants lists unapproved join requests, organizer-only.
func (s *ParticipantService) PendingApplicants(tripID, viewerID string) ([]models.TripParticipant, error) {
	var trip models.Trip
	if err := s.db.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if trip.OrganizerID != viewerID {
		return nil, ErrNotOrganizer
	}

	var pending []models.TripParticipant
	err := s.db.Preload("User").
		Where("trip_id = ? AND approved = ?", tripID, false).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// ApprovedParticipants lists a trip's approved participants with users.
func (s *ParticipantService) ApprovedParticipants(tripID string) ([]models.TripParticipant, error) {
	var participants []models.TripParticipant
	err := s.db.Preload("User").
		Where("trip_id = ? AND approved = ?", tripID, true).
		Order("created_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}
