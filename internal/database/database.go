package database

import (
	"log"
	"os"
	"shelfpick/backend/internal/logging"
	"shelfpick/backend/internal/models"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		logging.Log.Fatalf("Failed to connect to database: %v", err)
	}

	logging.Log.Info("Database connection established.")

	if err := Migrate(DB); err != nil {
		logging.Log.Fatalf("Failed to migrate database: %v", err)
	}

	logging.Log.Info("Database migrated successfully.")
}

// Migrate runs the schema migrations on the given connection. Split out so
// tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Category{},
		&models.GameList{},
		&models.GameListEntry{},
		&models.RegisteredPlayer{},
		&models.Play{},
		&models.PlayParticipant{},
		&models.Setting{},
		&models.PickSession{},
		&models.SessionPlayer{},
		&models.SessionVote{},
	)
}
