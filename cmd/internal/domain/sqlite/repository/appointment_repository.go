package repository

import (
	"context"
	"errors"

	"eclinic/cmd/internal/domain/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// CreateConfirmed checks and inserts inside one transaction. The partial
// unique index on (doctor_id, starts_at) backs the check up if another
// connection wins the race.
func (a *DefaultAppointmentRepository) CreateConfirmed(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	appointment.Status = entity.StatusConfirmed

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entity.Appointment{}).
			Where("doctor_id = ?", appointment.DoctorID).
			Where("starts_at = ?", appointment.StartsAt).
			Where("status = ?", entity.StatusConfirmed).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return entity.ErrSlotTaken
		}
		return tx.Create(appointment).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrSlotTaken
	}
	return err
}

// FindConfirmedByDoctor returns the doctor's CONFIRMED appointments starting
// at or after fromMillis, earliest first.
func (a *DefaultAppointmentRepository) FindConfirmedByDoctor(ctx context.Context, doctorID string, fromMillis int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("status = ?", entity.StatusConfirmed).
		Where("starts_at >= ?", fromMillis).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (a *DefaultAppointmentRepository) FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("doctor_id = ? OR patient_id = ?", userID, userID).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	return a.db.WithContext(ctx).Save(appointment).Error
}

func (a *DefaultAppointmentRepository) Cancel(ctx context.Context, appointment *entity.Appointment) error {
	appointment.Status = entity.StatusCancelled
	return a.db.WithContext(ctx).Save(appointment).Error
}
