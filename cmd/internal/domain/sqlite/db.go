package sqlite

import (
	"time"

	"eclinic/cmd/internal/domain/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// confirmedSlotIndex keeps at most one CONFIRMED appointment per doctor and instant.
const confirmedSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_confirmed_slot
ON appointments (doctor_id, starts_at) WHERE status = 'CONFIRMED'`

// Init opens the database at path and brings the schema up to date.
func Init(path string) (*gorm.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&entity.Doctor{}, &entity.Patient{}, &entity.Appointment{})
	if err != nil {
		return err
	}
	return db.Exec(confirmedSlotIndex).Error
}
