package repository

import (
	"context"
	"errors"
	"fmt"

	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils"
	"gorm.io/gorm"
)

type DefaultProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *DefaultProfileRepository {
	return &DefaultProfileRepository{db: db}
}

func (p *DefaultProfileRepository) FindDoctor(ctx context.Context, id string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := p.db.WithContext(ctx).First(&doctor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (p *DefaultProfileRepository) FindPatient(ctx context.Context, id string) (*entity.Patient, error) {
	var patient entity.Patient
	err := p.db.WithContext(ctx).First(&patient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (p *DefaultProfileRepository) ListDoctors(ctx context.Context) ([]*entity.Doctor, error) {
	var doctors []*entity.Doctor
	err := p.db.WithContext(ctx).
		Order("last_name asc").
		Order("first_name asc").
		Find(&doctors).Error
	return doctors, err
}

// SetDoctorSchedule overwrites the schedule and availability flag in one
// statement. Other profile fields are left untouched.
func (p *DefaultProfileRepository) SetDoctorSchedule(ctx context.Context, id string, schedule entity.WeeklySchedule, available bool) error {
	res := p.db.WithContext(ctx).
		Model(&entity.Doctor{ID: id}).
		Select("schedule", "available", "updated_at").
		Updates(&entity.Doctor{Schedule: schedule, Available: available, UpdatedAt: utils.NowUTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("doctor %s does not exist", id)
	}
	return nil
}

// UpdateDoctorDetails writes the name and specialty of an existing doctor.
// Schedule and availability are left to SetDoctorSchedule.
func (p *DefaultProfileRepository) UpdateDoctorDetails(ctx context.Context, doctor *entity.Doctor) error {
	doctor.UpdatedAt = utils.NowUTC()
	res := p.db.WithContext(ctx).
		Model(&entity.Doctor{ID: doctor.ID}).
		Select("first_name", "last_name", "specialty", "updated_at").
		Updates(&entity.Doctor{
			FirstName: doctor.FirstName,
			LastName:  doctor.LastName,
			Specialty: doctor.Specialty,
			UpdatedAt: doctor.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("doctor %s does not exist", doctor.ID)
	}
	return nil
}

func (p *DefaultProfileRepository) SaveDoctor(ctx context.Context, doctor *entity.Doctor) error {
	return p.db.WithContext(ctx).Save(doctor).Error
}

func (p *DefaultProfileRepository) SavePatient(ctx context.Context, patient *entity.Patient) error {
	return p.db.WithContext(ctx).Save(patient).Error
}
