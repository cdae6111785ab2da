// File: /database/database.go
package database

import (
	"fmt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tripcrew-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripWaypoint{},
		&models.TripParticipant{},
		&models.ChatRoom{},
		&models.ChatRoomParticipant{},
		&models.ChatMessage{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Add custom indexes for better performance
	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	// Add triggers or constraints if needed
	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Directory listing orders trips by start date
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_trips_start_date ON trips(start_date ASC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for trips: %v\n", err)
	}

	// Chat history is always fetched per room in creation order
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_room_created ON chat_messages(room_id, created_at ASC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for chat_messages: %v\n", err)
	}

	// Notification feed per user, newest first
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_created ON notifications(target_user_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notifications: %v\n", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// At most one participant row per (trip, user) pair
	if err := db.Exec("ALTER TABLE trip_participants ADD CONSTRAINT uk_trip_participants_trip_user UNIQUE (trip_id, user_id)").Error; err != nil {
		// Ignore error if constraint already exists
		fmt.Printf("Warning: Could not add unique constraint for trip_participants: %v\n", err)
	}

	// At most one chat membership per (room, user) pair
	if err := db.Exec("ALTER TABLE chat_room_participants ADD CONSTRAINT uk_chat_room_participants_room_user UNIQUE (room_id, user_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for chat_room_participants: %v\n", err)
	}

	// Exactly one chat room per trip
	if err := db.Exec("ALTER TABLE chat_rooms ADD CONSTRAINT uk_chat_rooms_trip UNIQUE (trip_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for chat_rooms: %v\n", err)
	}

	// Trips must allow at least the organizer plus one participant
	if err := db.Exec("ALTER TABLE trips ADD CONSTRAINT ck_trips_min_participants CHECK (max_participants >= 2)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for trips: %v\n", err)
	}

	return nil
}
