package service

import (
	"context"
	"time"

	"eclinic/cmd/internal/availability"
	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/metrics"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/labstack/gommon/log"
)

type SlotResponse struct {
	StartsAt string `json:"starts_at"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Weekday  string `json:"weekday"`
}

type AvailabilityResponse struct {
	DoctorID string          `json:"doctor_id"`
	Timezone string          `json:"timezone"`
	Slots    []*SlotResponse `json:"slots"`
}

type DefaultAvailabilityService struct {
	ProfileRepo     ProfileRepository
	AppointmentRepo AppointmentRepository
	Policy          *availability.Policy
	Metrics         *metrics.SchedulingMetrics
	Now             func() time.Time
}

func NewAvailabilityService(profileRepo ProfileRepository, apptRepo AppointmentRepository, policy *availability.Policy, m *metrics.SchedulingMetrics) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{
		ProfileRepo:     profileRepo,
		AppointmentRepo: apptRepo,
		Policy:          policy,
		Metrics:         m,
		Now:             time.Now,
	}
}

// GetAvailableSlots loads the doctor's schedule, expands it and drops every
// slot held by a CONFIRMED appointment. If the appointment lookup fails no
// slots are returned at all.
func (a *DefaultAvailabilityService) GetAvailableSlots(ctx context.Context, doctorID string) (*AvailabilityResponse, apierror.ErrorResponse) {
	doctor, err := a.ProfileRepo.FindDoctor(ctx, doctorID)
	if err != nil {
		log.Errorf("failed to load schedule of doctor (%s): %v", doctorID, err)
		return nil, apierror.StoreUnavailableError
	}
	if doctor == nil {
		return nil, apierror.DoctorNotFoundError
	}

	resp := &AvailabilityResponse{
		DoctorID: doctor.ID,
		Timezone: a.Policy.Location.String(),
		Slots:    []*SlotResponse{},
	}
	if !doctor.Available {
		a.Metrics.ObserveSlotsOffered(0)
		return resp, nil
	}

	now := a.Now()
	free, err := a.freeSlots(ctx, doctor, now)
	if err != nil {
		log.Errorf("failed to fetch confirmed appointments of doctor (%s): %v", doctorID, err)
		return nil, apierror.StoreUnavailableError
	}

	for _, slot := range free {
		resp.Slots = append(resp.Slots, toSlotResponse(slot))
	}
	a.Metrics.ObserveSlotsOffered(len(free))
	return resp, nil
}

func (a *DefaultAvailabilityService) freeSlots(ctx context.Context, doctor *entity.Doctor, now time.Time) ([]time.Time, error) {
	expansion := a.Policy.Expand(doctor.Schedule, now)
	for _, skipped := range expansion.Skipped {
		a.Metrics.ObserveMalformedEntry(skipped.Weekday)
	}

	appts, err := a.AppointmentRepo.FindConfirmedByDoctor(ctx, doctor.ID, now.UnixMilli())
	if err != nil {
		return nil, err
	}

	booked := make([]time.Time, len(appts))
	for i, appt := range appts {
		booked[i] = time.UnixMilli(appt.StartsAt)
	}
	return a.Policy.FilterBooked(expansion.Slots, booked), nil
}

func toSlotResponse(slot time.Time) *SlotResponse {
	return &SlotResponse{
		StartsAt: slot.Format(time.RFC3339),
		Date:     slot.Format(time.DateOnly),
		Time:     slot.Format("15:04"),
		Weekday:  slot.Weekday().String(),
	}
}
