// File: /services/testing_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tripcrew-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test so parallel tests stay isolated
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripWaypoint{},
		&models.TripParticipant{},
		&models.ChatRoom{},
		&models.ChatRoomParticipant{},
		&models.ChatMessage{},
		&models.Notification{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, firstName string) *models.User {
	t.Helper()

	user := models.User{
		ID:            uuid.New().String(),
		FirstName:     firstName,
		LastName:      "Tester",
		Email:         fmt.Sprintf("%s-%s@example.com", strings.ToLower(firstName), uuid.New().String()[:8]),
		Password:      "$2a$10$dummy",
		EmailVerified: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestTrip(t *testing.T, db *gorm.DB, organizerID string, maxParticipants int) *models.Trip {
	t.Helper()

	start := time.Now().Add(48 * time.Hour)
	trip := models.Trip{
		ID:                uuid.New().String(),
		Title:             "Coastal weekend",
		Description:       "Two days along the coast",
		StartDate:         start,
		EndDate:           start.Add(48 * time.Hour),
		LocationName:      "Harbor square",
		LocationLatitude:  43.3,
		LocationLongitude: 5.4,
		OrganizerID:       organizerID,
		MaxParticipants:   maxParticipants,
	}
	require.NoError(t, db.Create(&trip).Error)
	return &trip
}
