package service

import (
	"context"
	"errors"
	"time"

	"eclinic/cmd/internal/availability"
	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/metrics"
	"eclinic/cmd/internal/utils"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type AppointmentRepository interface {
	// CreateConfirmed assigns an ID and stores appointment unless a CONFIRMED
	// appointment already holds the same doctor and instant, in which case
	// it returns entity.ErrSlotTaken.
	CreateConfirmed(ctx context.Context, appointment *entity.Appointment) error
	FindConfirmedByDoctor(ctx context.Context, doctorID string, fromMillis int64) ([]*entity.Appointment, error)
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error)
	Save(ctx context.Context, appointment *entity.Appointment) error
	// Cancel marks appointment CANCELLED and releases its slot.
	Cancel(ctx context.Context, appointment *entity.Appointment) error
}

type AppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,max=128"`
	Slot     string `json:"slot" validate:"required,slottime"`
}

type PreparationRequest struct {
	FastingRequired       *bool   `json:"fasting_required"`
	AdditionalPreparation *string `json:"additional_preparation" validate:"omitempty,max=1024"`
}

type AppointmentResponse struct {
	ID                    string  `json:"id"`
	DoctorID              string  `json:"doctor_id"`
	DoctorName            string  `json:"doctor_name"`
	PatientID             string  `json:"patient_id"`
	PatientName           string  `json:"patient_name"`
	StartsAt              string  `json:"starts_at"`
	Status                string  `json:"status"`
	FastingRequired       bool    `json:"fasting_required"`
	AdditionalPreparation *string `json:"additional_preparation,omitempty"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

type DefaultBookingService struct {
	AppointmentRepo AppointmentRepository
	ProfileRepo     ProfileRepository
	Validate        *validator.Validate
	Policy          *availability.Policy
	Metrics         *metrics.SchedulingMetrics
	Now             func() time.Time
}

func NewBookingService(apptRepo AppointmentRepository, profileRepo ProfileRepository, validate *validator.Validate, policy *availability.Policy, m *metrics.SchedulingMetrics) *DefaultBookingService {
	return &DefaultBookingService{
		AppointmentRepo: apptRepo,
		ProfileRepo:     profileRepo,
		Validate:        validate,
		Policy:          policy,
		Metrics:         m,
		Now:             time.Now,
	}
}

func (a *DefaultBookingService) GetAppointments(ctx context.Context, subId string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	if subId == "" {
		return nil, apierror.AuthenticationRequiredError
	}

	appts, err := a.AppointmentRepo.FindByParticipant(ctx, subId)
	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", subId, err)
		return nil, apierror.StoreUnavailableError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = a.toAppointmentResponse(appt)
	}
	return response, nil
}

// CreateAppointment books req.Slot with req.DoctorID for the patient
// identified by subId.
func (a *DefaultBookingService) CreateAppointment(ctx context.Context, req *AppointmentRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	if subId == "" {
		return nil, apierror.AuthenticationRequiredError
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.FromValidationError(valerr)
	}

	slot, err := utils.ParseSlotTime(req.Slot, a.Policy.Location)
	if err != nil {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.MalformedBodyError
	}

	now := a.Now()
	if !slot.After(now) {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.AppointmentInPastError
	}

	doctor, err := a.ProfileRepo.FindDoctor(ctx, req.DoctorID)
	if err != nil {
		log.Errorf("failed to fetch doctor %s: %v", req.DoctorID, err)
		a.Metrics.ObserveBooking(metrics.OutcomeStoreError)
		return nil, apierror.StoreUnavailableError
	}
	if doctor == nil {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.DoctorNotFoundError
	}

	if !doctor.Available || !a.Policy.Expand(doctor.Schedule, now).Offers(slot) {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.SlotNotOfferedError
	}

	patient, err := a.ProfileRepo.FindPatient(ctx, subId)
	if err != nil {
		log.Errorf("failed to fetch patient %s: %v", subId, err)
		a.Metrics.ObserveBooking(metrics.OutcomeStoreError)
		return nil, apierror.StoreUnavailableError
	}
	if patient == nil {
		a.Metrics.ObserveBooking(metrics.OutcomeRejected)
		return nil, apierror.PatientNotFoundError
	}

	appointment, apierr := a.WriteBooking(ctx, slot, doctor, patient)
	if apierr != nil {
		return nil, apierr
	}
	return a.toAppointmentResponse(appointment), nil
}

// WriteBooking persists a CONFIRMED appointment for slot with the names of
// doctor and patient copied in. The store rejects the write when the slot
// is already held.
func (a *DefaultBookingService) WriteBooking(ctx context.Context, slot time.Time, doctor *entity.Doctor, patient *entity.Patient) (*entity.Appointment, apierror.ErrorResponse) {
	if patient == nil || patient.ID == "" {
		return nil, apierror.AuthenticationRequiredError
	}
	if doctor == nil {
		log.Errorf("booking for patient %s attempted before doctor data was loaded", patient.ID)
		return nil, apierror.IllegalStateError
	}

	now := utils.NowUTC()
	appointment := &entity.Appointment{
		DoctorID:         doctor.ID,
		PatientID:        patient.ID,
		DoctorFirstName:  doctor.FirstName,
		DoctorLastName:   doctor.LastName,
		PatientFirstName: patient.FirstName,
		PatientLastName:  patient.LastName,
		StartsAt:         slot.UnixMilli(),
		Status:           entity.StatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := a.AppointmentRepo.CreateConfirmed(ctx, appointment)
	if errors.Is(err, entity.ErrSlotTaken) {
		a.Metrics.ObserveBooking(metrics.OutcomeConflict)
		return nil, apierror.SlotAlreadyBookedError
	}
	if err != nil {
		log.Errorf("failed to save appointment of patient %s with doctor %s: %v", patient.ID, doctor.ID, err)
		a.Metrics.ObserveBooking(metrics.OutcomeStoreError)
		return nil, apierror.StoreUnavailableError
	}

	a.Metrics.ObserveBooking(metrics.OutcomeBooked)
	return appointment, nil
}

// CancelAppointment moves a confirmed appointment of the caller to CANCELLED.
// Appointments the caller does not take part in are reported as missing.
func (a *DefaultBookingService) CancelAppointment(ctx context.Context, id string, issuerSub string) (*AppointmentResponse, apierror.ErrorResponse) {
	if issuerSub == "" {
		return nil, apierror.AuthenticationRequiredError
	}

	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.StoreUnavailableError
	}

	if appt == nil || !appt.HasParticipant(issuerSub) {
		return nil, apierror.NotFoundError
	}
	if !appt.IsConfirmed() {
		return nil, apierror.AppointmentNotActiveErr
	}

	appt.Status = entity.StatusCancelled
	appt.UpdatedAt = utils.NowUTC()
	if err := a.AppointmentRepo.Cancel(ctx, appt); err != nil {
		log.Errorf("failed to cancel appointment by id %s: %v", id, err)
		return nil, apierror.StoreUnavailableError
	}

	a.Metrics.ObserveCancellation()
	return a.toAppointmentResponse(appt), nil
}

// UpdatePreparation lets the appointment's doctor set visit instructions.
func (a *DefaultBookingService) UpdatePreparation(ctx context.Context, id string, req *PreparationRequest, issuerSub string) (*AppointmentResponse, apierror.ErrorResponse) {
	if issuerSub == "" {
		return nil, apierror.AuthenticationRequiredError
	}
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.StoreUnavailableError
	}
	if appt == nil || !appt.HasParticipant(issuerSub) {
		return nil, apierror.NotFoundError
	}
	if appt.DoctorID != issuerSub {
		return nil, apierror.ForbiddenError
	}

	if req.FastingRequired != nil {
		appt.FastingRequired = *req.FastingRequired
	}
	if req.AdditionalPreparation != nil {
		appt.AdditionalPreparation = req.AdditionalPreparation
	}
	appt.UpdatedAt = utils.NowUTC()

	if err := a.AppointmentRepo.Save(ctx, appt); err != nil {
		log.Errorf("failed to update appointment %s: %v", id, err)
		return nil, apierror.StoreUnavailableError
	}
	return a.toAppointmentResponse(appt), nil
}

func (a *DefaultBookingService) toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                    appt.ID,
		DoctorID:              appt.DoctorID,
		DoctorName:            appt.DoctorFirstName + " " + appt.DoctorLastName,
		PatientID:             appt.PatientID,
		PatientName:           appt.PatientFirstName + " " + appt.PatientLastName,
		StartsAt:              utils.FormatEpochIn(appt.StartsAt, a.Policy.Location),
		Status:                string(appt.Status),
		FastingRequired:       appt.FastingRequired,
		AdditionalPreparation: appt.AdditionalPreparation,
		CreatedAt:             utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:             utils.FormatEpoch(appt.UpdatedAt),
	}
}
