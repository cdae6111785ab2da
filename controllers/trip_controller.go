// File: /controllers/trip_controller.go
package controllers

import (
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
	"strconv"
	"tripcrew-api/models"
	"tripcrew-api/services"
)

type TripController struct {
	db            *gorm.DB
	trips         *services.TripService
	participants  *services.ParticipantService
	notifications *services.NotificationService
}

func NewTripController(db *gorm.DB, trips *services.TripService, participants *services.ParticipantService, notifications *services.NotificationService) *TripController {
	return &TripController{
		db:            db,
		trips:         trips,
		participants:  participants,
		notifications: notifications,
	}
}

func (tc *TripController) GetTrips(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	trips, err := tc.trips.List(page, limit, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trips": trips,
		"page":  page,
		"limit": limit,
	})
}

func (tc *TripController) CreateTrip(c *gin.Context) {
	userID := c.GetString("user_id")

	var req services.CreateTripInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := tc.trips.Create(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange),
			errors.Is(err, services.ErrInvalidCapacity),
			errors.Is(err, services.ErrInvalidCoordinates):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		}
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// GetTrip returns the trip together with the viewer's membership state, the
// approved participant count, and, for the organizer, the pending list.
func (tc *TripController) GetTrip(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	trip, err := tc.trips.Get(tripID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}
	trip.Organizer.Password = ""

	state, err := tc.participants.MembershipState(tripID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve membership"})
		return
	}

	approvedCount, err := tc.participants.ApprovedCount(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count participants"})
		return
	}

	response := gin.H{
		"trip":             trip,
		"membership_state": state,
		"approved_count":   approvedCount,
	}

	if state == models.MembershipOrganizer {
		pending, err := tc.participants.PendingApplicants(tripID, userID)
		if err == nil {
			response["pending_applicants"] = pending
		}
	}

	c.JSON(http.StatusOK, response)
}

func (tc *TripController) JoinTrip(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	_, err := tc.participants.RequestToJoin(tripID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		case errors.Is(err, services.ErrTripFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Trip is full"})
		case errors.Is(err, services.ErrAlreadyMember), errors.Is(err, services.ErrOrganizerJoin):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join trip"})
		}
		return
	}

	// Notify the organizer; a failed notification doesn't undo the request
	if trip, terr := tc.trips.Get(tripID); terr == nil {
		if nerr := tc.notifications.NotifyJoinRequest(trip, userID); nerr != nil {
			fmt.Printf("Warning: Could not create join notification: %v\n", nerr)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Join request submitted. The organizer will review your request."})
}

func (tc *TripController) ApproveParticipant(c *gin.Context) {
	organizerID := c.GetString("user_id")
	tripID := c.Param("id")
	userID := c.Param("userId")

	err := tc.participants.Approve(tripID, organizerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		case errors.Is(err, services.ErrNotOrganizer):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrParticipantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyApproved), errors.Is(err, services.ErrTripFull):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve participant"})
		}
		return
	}

	if trip, terr := tc.trips.Get(tripID); terr == nil {
		if nerr := tc.notifications.NotifyApproval(trip, userID); nerr != nil {
			fmt.Printf("Warning: Could not create approval notification: %v\n", nerr)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant approved"})
}

func (tc *TripController) GetParticipants(c *gin.Context) {
	tripID := c.Param("id")

	participants, err := tc.participants.ApprovedParticipants(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}

	for i := range participants {
		participants[i].User.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (tc *TripController) GetJoinedTrips(c *gin.Context) {
	userID := c.GetString("user_id")

	participations, err := tc.trips.ListJoined(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch joined trips"})
		return
	}

	type joinedTrip struct {
		Trip     models.Trip `json:"trip"`
		Approved bool        `json:"approved"`
	}
	result := make([]joinedTrip, 0, len(participations))
	for _, p := range participations {
		p.Trip.Organizer.Password = ""
		result = append(result, joinedTrip{Trip: p.Trip, Approved: p.Approved})
	}

	c.JSON(http.StatusOK, result)
}

func (tc *TripController) GetCreatedTrips(c *gin.Context) {
	userID := c.GetString("user_id")

	trips, err := tc.trips.ListCreated(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch created trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

func (tc *TripController) AddWaypoint(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	var req services.WaypointInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	waypoint, err := tc.trips.AddWaypoint(tripID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		case errors.Is(err, services.ErrNotOrganizer):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the organizer can edit the route"})
		case errors.Is(err, services.ErrInvalidCoordinates):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add waypoint"})
		}
		return
	}

	c.JSON(http.StatusCreated, waypoint)
}

func (tc *TripController) RemoveWaypoint(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")
	waypointID, err := strconv.ParseUint(c.Param("waypointId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid waypoint id"})
		return
	}

	if err := tc.trips.RemoveWaypoint(tripID, userID, uint(waypointID)); err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound), errors.Is(err, services.ErrWaypointNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotOrganizer):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the organizer can edit the route"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove waypoint"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Waypoint removed"})
}
