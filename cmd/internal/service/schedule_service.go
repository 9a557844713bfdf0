package service

import (
	"context"

	"eclinic/cmd/internal/availability"
	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type DayRange struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// ScheduleRequest replaces a doctor's whole weekly schedule. Weekdays left
// out of Days are not offered. Available defaults to whether any day has
// slots.
type ScheduleRequest struct {
	Days      map[string]DayRange `json:"days" validate:"dive,keys,weekday,endkeys"`
	Available *bool               `json:"available"`
}

type ScheduleResponse struct {
	DoctorID       string                `json:"doctor_id"`
	WeeklySchedule entity.WeeklySchedule `json:"weekly_schedule"`
	Available      bool                  `json:"available"`
	IgnoredDays    []string              `json:"ignored_days,omitempty"`
}

type DefaultScheduleService struct {
	ProfileRepo ProfileRepository
	Validate    *validator.Validate
	Policy      *availability.Policy
}

func NewScheduleService(profileRepo ProfileRepository, validate *validator.Validate, policy *availability.Policy) *DefaultScheduleService {
	return &DefaultScheduleService{ProfileRepo: profileRepo, Validate: validate, Policy: policy}
}

func (s *DefaultScheduleService) UpdateSchedule(ctx context.Context, doctorID string, req *ScheduleRequest, caller *utils.TokenData) (*ScheduleResponse, apierror.ErrorResponse) {
	if caller == nil || caller.Sub == "" {
		return nil, apierror.AuthenticationRequiredError
	}
	if caller.Sub != doctorID && caller.Role != string(entity.RoleAdmin) {
		return nil, apierror.ForbiddenError
	}
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	doctor, err := s.ProfileRepo.FindDoctor(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to find doctor (%s): %v", doctorID, err)
		return nil, apierror.StoreUnavailableError
	}
	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}

	ranges := make(map[string]availability.TimeRange, len(req.Days))
	for weekday, r := range req.Days {
		ranges[weekday] = availability.TimeRange{Start: r.Start, End: r.End}
	}
	schedule, ignored := s.Policy.Discretize(ranges)
	if len(ignored) > 0 {
		log.Warnf("doctor %s submitted empty or inverted ranges for %v", doctorID, ignored)
	}

	available := !schedule.IsEmpty()
	if req.Available != nil {
		available = *req.Available
	}

	if err := s.ProfileRepo.SetDoctorSchedule(ctx, doctorID, schedule, available); err != nil {
		log.Errorf("failed to store schedule of doctor (%s): %v", doctorID, err)
		return nil, apierror.StoreUnavailableError
	}

	return &ScheduleResponse{
		DoctorID:       doctorID,
		WeeklySchedule: schedule,
		Available:      available,
		IgnoredDays:    ignored,
	}, nil
}
