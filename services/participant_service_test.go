// File: /services/participant_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripcrew-api/models"
	"tripcrew-api/realtime"
)

func TestRequestToJoinCreatesPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	participant, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.False(t, participant.Approved)

	state, err := svc.MembershipState(trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPending, state)

	// Pending requests don't count against capacity
	count, err := svc.ApprovedCount(trip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestRequestToJoinTwiceKeepsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)

	_, err = svc.RequestToJoin(trip.ID, applicant.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	var rows int64
	require.NoError(t, db.Model(&models.TripParticipant{}).
		Where("trip_id = ? AND user_id = ?", trip.ID, applicant.ID).
		Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestOrganizerCannotRequestOwnTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, organizer.ID)
	assert.ErrorIs(t, err, ErrOrganizerJoin)
}

func TestApproveRequiresOrganizer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	impostor := createTestUser(t, db, "Ivan")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)

	err = svc.Approve(trip.ID, impostor.ID, applicant.ID)
	assert.ErrorIs(t, err, ErrNotOrganizer)

	state, err := svc.MembershipState(trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipPending, state)
}

func TestApproveGrantsChatAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)

	// Pending applicants are denied
	session, err := chat.Resolve(trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.True(t, session.Denied)

	require.NoError(t, svc.Approve(trip.ID, organizer.ID, applicant.ID))

	// Approved participants resolve to a ready session
	session, err = chat.Resolve(trip.ID, applicant.ID)
	require.NoError(t, err)
	assert.False(t, session.Denied)
	require.NotNil(t, session.Room)
	assert.Equal(t, trip.ID, session.Room.TripID)
}

func TestCapacityScenario(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	userA := createTestUser(t, db, "Alice")
	userB := createTestUser(t, db, "Bob")
	userC := createTestUser(t, db, "Carol")
	trip := createTestTrip(t, db, organizer.ID, 2)

	// A requests and is approved
	_, err := svc.RequestToJoin(trip.ID, userA.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Approve(trip.ID, organizer.ID, userA.ID))

	count, err := svc.ApprovedCount(trip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	session, err := chat.Resolve(trip.ID, userA.ID)
	require.NoError(t, err)
	assert.False(t, session.Denied)

	// B requests and is approved, reaching capacity
	_, err = svc.RequestToJoin(trip.ID, userB.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Approve(trip.ID, organizer.ID, userB.ID))

	count, err = svc.ApprovedCount(trip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// C is rejected outright
	_, err = svc.RequestToJoin(trip.ID, userC.ID)
	assert.ErrorIs(t, err, ErrTripFull)
}

func TestApproveRefusedAtCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	userA := createTestUser(t, db, "Alice")
	userB := createTestUser(t, db, "Bob")
	userC := createTestUser(t, db, "Carol")
	trip := createTestTrip(t, db, organizer.ID, 2)

	// All three request while there is still room to ask
	for _, u := range []*models.User{userA, userB, userC} {
		_, err := svc.RequestToJoin(trip.ID, u.ID)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Approve(trip.ID, organizer.ID, userA.ID))
	require.NoError(t, svc.Approve(trip.ID, organizer.ID, userB.ID))

	// Third approval would exceed max_participants
	err := svc.Approve(trip.ID, organizer.ID, userC.ID)
	assert.ErrorIs(t, err, ErrTripFull)

	count, err := svc.ApprovedCount(trip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// The refused approval must not have leaked chat access either
	var memberships int64
	require.NoError(t, db.Model(&models.ChatRoomParticipant{}).
		Where("user_id = ?", userC.ID).
		Count(&memberships).Error)
	assert.EqualValues(t, 0, memberships)
}

func TestApproveTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Approve(trip.ID, organizer.ID, applicant.ID))

	err = svc.Approve(trip.ID, organizer.ID, applicant.ID)
	assert.ErrorIs(t, err, ErrAlreadyApproved)
}

func TestMembershipStatesAreExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	approved := createTestUser(t, db, "Alice")
	pending := createTestUser(t, db, "Paula")
	stranger := createTestUser(t, db, "Sam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, approved.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Approve(trip.ID, organizer.ID, approved.ID))
	_, err = svc.RequestToJoin(trip.ID, pending.ID)
	require.NoError(t, err)

	cases := map[string]models.MembershipState{
		organizer.ID: models.MembershipOrganizer,
		approved.ID:  models.MembershipApproved,
		pending.ID:   models.MembershipPending,
		stranger.ID:  models.MembershipNone,
	}
	for userID, expected := range cases {
		state, err := svc.MembershipState(trip.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, expected, state)
	}
}

func TestPendingApplicantsOrganizerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	_, err := svc.RequestToJoin(trip.ID, applicant.ID)
	require.NoError(t, err)

	pending, err := svc.PendingApplicants(trip.ID, organizer.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, applicant.ID, pending[0].UserID)

	_, err = svc.PendingApplicants(trip.ID, applicant.ID)
	assert.ErrorIs(t, err, ErrNotOrganizer)
}
