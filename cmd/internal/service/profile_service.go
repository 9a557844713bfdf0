package service

import (
	"context"

	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type ProfileRepository interface {
	FindDoctor(ctx context.Context, id string) (*entity.Doctor, error)
	FindPatient(ctx context.Context, id string) (*entity.Patient, error)
	ListDoctors(ctx context.Context) ([]*entity.Doctor, error)
	SetDoctorSchedule(ctx context.Context, id string, schedule entity.WeeklySchedule, available bool) error
	UpdateDoctorDetails(ctx context.Context, doctor *entity.Doctor) error
	SaveDoctor(ctx context.Context, doctor *entity.Doctor) error
	SavePatient(ctx context.Context, patient *entity.Patient) error
}

type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=80"`
	LastName  string `json:"last_name" validate:"required,min=1,max=80"`
	Specialty string `json:"specialty" validate:"max=120"`
}

type DoctorResponse struct {
	ID             string                `json:"id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Specialty      string                `json:"specialty,omitempty"`
	WeeklySchedule entity.WeeklySchedule `json:"weekly_schedule"`
	Available      bool                  `json:"available"`
	UpdatedAt      string                `json:"updated_at"`
}

type PatientResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ProfileResponse struct {
	Doctor  *DoctorResponse  `json:"doctor,omitempty"`
	Patient *PatientResponse `json:"patient,omitempty"`
}

type DefaultProfileService struct {
	ProfileRepo ProfileRepository
	Validate    *validator.Validate
}

func NewProfileService(profileRepo ProfileRepository, validate *validator.Validate) *DefaultProfileService {
	return &DefaultProfileService{ProfileRepo: profileRepo, Validate: validate}
}

func (p *DefaultProfileService) GetDoctors(ctx context.Context) ([]*DoctorResponse, apierror.ErrorResponse) {
	doctors, err := p.ProfileRepo.ListDoctors(ctx)
	if err != nil {
		log.Errorf("failed to fetch all doctors: %v", err)
		return nil, apierror.StoreUnavailableError
	}

	resp := make([]*DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp[i] = toDoctorResponse(doctor)
	}
	return resp, nil
}

func (p *DefaultProfileService) GetDoctor(ctx context.Context, id string) (*DoctorResponse, apierror.ErrorResponse) {
	doctor, err := p.ProfileRepo.FindDoctor(ctx, id)
	if err != nil {
		log.Errorf("failed to find doctor (%s): %v", id, err)
		return nil, apierror.StoreUnavailableError
	}
	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}
	return toDoctorResponse(doctor), nil
}

// GetPatient resolves "@me" to the caller. Patients may only read their own
// profile; doctors and admins may read any.
func (p *DefaultProfileService) GetPatient(ctx context.Context, rawId string, caller *utils.TokenData) (*PatientResponse, apierror.ErrorResponse) {
	id := rawId
	if rawId == "@me" {
		id = caller.Sub
	}
	if id != caller.Sub && caller.Role != string(entity.RoleDoctor) && caller.Role != string(entity.RoleAdmin) {
		return nil, apierror.NotFoundError
	}

	patient, err := p.ProfileRepo.FindPatient(ctx, id)
	if err != nil {
		log.Errorf("failed to find patient (%s): %v", id, err)
		return nil, apierror.StoreUnavailableError
	}
	if patient == nil {
		return nil, apierror.PatientNotFoundError
	}
	return toPatientResponse(patient), nil
}

// SaveProfile creates or updates the caller's own profile. Callers with the
// doctor role get a doctor profile and keep their current schedule.
func (p *DefaultProfileService) SaveProfile(ctx context.Context, req *ProfileRequest, caller *utils.TokenData) (*ProfileResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := p.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	now := utils.NowUTC()
	if caller.Role == string(entity.RoleDoctor) {
		doctor, err := p.ProfileRepo.FindDoctor(ctx, caller.Sub)
		if err != nil {
			log.Errorf("failed to find doctor (%s): %v", caller.Sub, err)
			return nil, apierror.StoreUnavailableError
		}
		if doctor == nil {
			doctor = &entity.Doctor{
				ID:        caller.Sub,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Specialty: req.Specialty,
				Schedule:  entity.WeeklySchedule{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := p.ProfileRepo.SaveDoctor(ctx, doctor); err != nil {
				log.Errorf("failed to save doctor (%s): %v", caller.Sub, err)
				return nil, apierror.StoreUnavailableError
			}
			return &ProfileResponse{Doctor: toDoctorResponse(doctor)}, nil
		}

		// Schedule and availability belong to the schedule editor.
		doctor.FirstName = req.FirstName
		doctor.LastName = req.LastName
		doctor.Specialty = req.Specialty
		if err := p.ProfileRepo.UpdateDoctorDetails(ctx, doctor); err != nil {
			log.Errorf("failed to update doctor (%s): %v", caller.Sub, err)
			return nil, apierror.StoreUnavailableError
		}
		if fresh, err := p.ProfileRepo.FindDoctor(ctx, caller.Sub); err == nil && fresh != nil {
			doctor = fresh
		}
		return &ProfileResponse{Doctor: toDoctorResponse(doctor)}, nil
	}

	patient, err := p.ProfileRepo.FindPatient(ctx, caller.Sub)
	if err != nil {
		log.Errorf("failed to find patient (%s): %v", caller.Sub, err)
		return nil, apierror.StoreUnavailableError
	}
	if patient == nil {
		patient = &entity.Patient{ID: caller.Sub, CreatedAt: now}
	}
	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.UpdatedAt = now

	if err := p.ProfileRepo.SavePatient(ctx, patient); err != nil {
		log.Errorf("failed to save patient (%s): %v", caller.Sub, err)
		return nil, apierror.StoreUnavailableError
	}
	return &ProfileResponse{Patient: toPatientResponse(patient)}, nil
}

func toDoctorResponse(doctor *entity.Doctor) *DoctorResponse {
	schedule := doctor.Schedule
	if schedule == nil {
		schedule = entity.WeeklySchedule{}
	}
	return &DoctorResponse{
		ID:             doctor.ID,
		FirstName:      doctor.FirstName,
		LastName:       doctor.LastName,
		Specialty:      doctor.Specialty,
		WeeklySchedule: schedule,
		Available:      doctor.Available,
		UpdatedAt:      utils.FormatEpoch(doctor.UpdatedAt),
	}
}

func toPatientResponse(patient *entity.Patient) *PatientResponse {
	return &PatientResponse{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		CreatedAt: utils.FormatEpoch(patient.CreatedAt),
		UpdatedAt: utils.FormatEpoch(patient.UpdatedAt),
	}
}
