package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/metrics"
	"eclinic/cmd/internal/utils/apierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	profiles *fakeProfileRepo
	appts    *fakeAppointmentRepo
	booking  *DefaultBookingService
	slots    *DefaultAvailabilityService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	policy := newTestPolicy(t)
	now := monday(t, policy, 8, 0)

	profiles := newFakeProfileRepo()
	appts := &fakeAppointmentRepo{}
	seedDoctor(profiles, "doc-1", entity.WeeklySchedule{
		"Monday":  {"09:00", "10:00"},
		"Tuesday": {"09:00"},
	})
	seedPatient(profiles, "pat-1")
	seedPatient(profiles, "pat-2")

	m := metrics.NewSchedulingMetrics(prometheus.NewRegistry())
	booking := NewBookingService(appts, profiles, newTestValidator(), policy, m)
	booking.Now = func() time.Time { return now }
	slots := NewAvailabilityService(profiles, appts, policy, m)
	slots.Now = func() time.Time { return now }

	return &bookingFixture{profiles: profiles, appts: appts, booking: booking, slots: slots}
}

func TestCreateAppointment_Success(t *testing.T) {
	f := newBookingFixture(t)

	resp, apierr := f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-1")

	require.Nil(t, apierr)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "doc-1", resp.DoctorID)
	assert.Equal(t, "Anna Nowak", resp.DoctorName)
	assert.Equal(t, "Jan Kowalski", resp.PatientName)
	assert.Equal(t, "2026-03-02T10:00:00+01:00", resp.StartsAt)
	assert.Equal(t, string(entity.StatusConfirmed), resp.Status)
	assert.False(t, resp.FastingRequired)
}

func TestCreateAppointment_AcceptsRFC3339Slot(t *testing.T) {
	f := newBookingFixture(t)

	resp, apierr := f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T09:00:00Z"}, "pat-1")

	require.Nil(t, apierr)
	assert.Equal(t, "2026-03-02T10:00:00+01:00", resp.StartsAt)
}

func TestCreateAppointment_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		req    *AppointmentRequest
		sub    string
		status int
		kind   string
	}{
		{"anonymous", &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "", http.StatusUnauthorized, "authentication_required"},
		{"missing doctor id", &AppointmentRequest{Slot: "2026-03-02T10:00"}, "pat-1", http.StatusBadRequest, "validation_failed"},
		{"unreadable slot", &AppointmentRequest{DoctorID: "doc-1", Slot: "next monday"}, "pat-1", http.StatusBadRequest, "validation_failed"},
		{"past slot", &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T07:00"}, "pat-1", http.StatusUnprocessableEntity, "appointment_in_past"},
		{"unknown doctor", &AppointmentRequest{DoctorID: "doc-9", Slot: "2026-03-02T10:00"}, "pat-1", http.StatusNotFound, "not_found"},
		{"slot outside schedule", &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T11:00"}, "pat-1", http.StatusUnprocessableEntity, "slot_not_offered"},
		{"slot beyond horizon", &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-09T09:00"}, "pat-1", http.StatusUnprocessableEntity, "slot_not_offered"},
		{"no patient profile", &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-9", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)

			resp, apierr := f.booking.CreateAppointment(context.Background(), tt.req, tt.sub)

			assert.Nil(t, resp)
			require.NotNil(t, apierr)
			assert.Equal(t, tt.status, apierr.Code())
			assert.Equal(t, tt.kind, kindOf(apierr))
			assert.Empty(t, f.appts.appts)
		})
	}
}

func TestCreateAppointment_UnavailableDoctorOffersNothing(t *testing.T) {
	f := newBookingFixture(t)
	f.profiles.doctors["doc-1"].Available = false

	_, apierr := f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-1")

	require.NotNil(t, apierr)
	assert.Equal(t, apierror.SlotNotOfferedError, apierr)
}

func TestCreateAppointment_SecondBookingConflicts(t *testing.T) {
	f := newBookingFixture(t)
	req := &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}

	_, apierr := f.booking.CreateAppointment(context.Background(), req, "pat-1")
	require.Nil(t, apierr)

	_, apierr = f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-2")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusConflict, apierr.Code())
	assert.Len(t, f.appts.appts, 1)
}

func TestCreateAppointment_ConcurrentBookingsOfOneSlot(t *testing.T) {
	f := newBookingFixture(t)
	patients := []string{"pat-a", "pat-b", "pat-c", "pat-d", "pat-e", "pat-f"}
	for _, id := range patients {
		seedPatient(f.profiles, id)
	}

	var wg sync.WaitGroup
	results := make(chan apierror.ErrorResponse, len(patients))
	for _, id := range patients {
		wg.Add(1)
		go func(sub string) {
			defer wg.Done()
			_, apierr := f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-03T09:00"}, sub)
			results <- apierr
		}(id)
	}
	wg.Wait()
	close(results)

	booked, conflicts := 0, 0
	for apierr := range results {
		if apierr == nil {
			booked++
			continue
		}
		assert.Equal(t, http.StatusConflict, apierr.Code())
		conflicts++
	}
	assert.Equal(t, 1, booked)
	assert.Equal(t, len(patients)-1, conflicts)
}

func TestCreateAppointment_StoreFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.appts.err = errStoreDown

	_, apierr := f.booking.CreateAppointment(context.Background(), &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-1")

	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusServiceUnavailable, apierr.Code())
}

func TestWriteBooking_RequiresLoadedDoctor(t *testing.T) {
	f := newBookingFixture(t)
	patient := &entity.Patient{ID: "pat-1"}

	appt, apierr := f.booking.WriteBooking(context.Background(), time.Now().Add(time.Hour), nil, patient)

	assert.Nil(t, appt)
	assert.Equal(t, apierror.IllegalStateError, apierr)
	assert.Empty(t, f.appts.appts)
}

func TestWriteBooking_RequiresPatient(t *testing.T) {
	f := newBookingFixture(t)

	_, apierr := f.booking.WriteBooking(context.Background(), time.Now().Add(time.Hour), &entity.Doctor{ID: "doc-1"}, nil)

	assert.Equal(t, apierror.AuthenticationRequiredError, apierr)
}

func TestWriteBooking_CopiesNames(t *testing.T) {
	f := newBookingFixture(t)
	slot := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)

	appt, apierr := f.booking.WriteBooking(context.Background(), slot,
		&entity.Doctor{ID: "doc-1", FirstName: "Anna", LastName: "Nowak"},
		&entity.Patient{ID: "pat-1", FirstName: "Jan", LastName: "Kowalski"})

	require.Nil(t, apierr)
	assert.Equal(t, "Anna", appt.DoctorFirstName)
	assert.Equal(t, "Nowak", appt.DoctorLastName)
	assert.Equal(t, "Jan", appt.PatientFirstName)
	assert.Equal(t, "Kowalski", appt.PatientLastName)
	assert.Equal(t, slot.UnixMilli(), appt.StartsAt)
	assert.Equal(t, entity.StatusConfirmed, appt.Status)
}

func TestBookingRoundTrip(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	before, apierr := f.slots.GetAvailableSlots(ctx, "doc-1")
	require.Nil(t, apierr)
	require.Len(t, before.Slots, 3)

	booked, apierr := f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: before.Slots[1].StartsAt}, "pat-1")
	require.Nil(t, apierr)

	after, apierr := f.slots.GetAvailableSlots(ctx, "doc-1")
	require.Nil(t, apierr)
	require.Len(t, after.Slots, 2)
	for _, s := range after.Slots {
		assert.NotEqual(t, before.Slots[1].StartsAt, s.StartsAt)
	}

	_, apierr = f.booking.CancelAppointment(ctx, booked.ID, "pat-1")
	require.Nil(t, apierr)

	restored, apierr := f.slots.GetAvailableSlots(ctx, "doc-1")
	require.Nil(t, apierr)
	assert.Equal(t, before.Slots, restored.Slots)
}

func TestCancelAppointment(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	appt, apierr := f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T09:00"}, "pat-1")
	require.Nil(t, apierr)

	_, apierr = f.booking.CancelAppointment(ctx, appt.ID, "pat-2")
	assert.Equal(t, apierror.NotFoundError, apierr)

	_, apierr = f.booking.CancelAppointment(ctx, appt.ID, "")
	assert.Equal(t, apierror.AuthenticationRequiredError, apierr)

	cancelled, apierr := f.booking.CancelAppointment(ctx, appt.ID, "doc-1")
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusCancelled), cancelled.Status)

	_, apierr = f.booking.CancelAppointment(ctx, appt.ID, "pat-1")
	assert.Equal(t, apierror.AppointmentNotActiveErr, apierr)

	_, apierr = f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T09:00"}, "pat-2")
	assert.Nil(t, apierr)
}

func TestGetAppointments(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	_, apierr := f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T09:00"}, "pat-1")
	require.Nil(t, apierr)
	_, apierr = f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T10:00"}, "pat-2")
	require.Nil(t, apierr)

	mine, apierr := f.booking.GetAppointments(ctx, "pat-1")
	require.Nil(t, apierr)
	assert.Len(t, mine, 1)

	doctors, apierr := f.booking.GetAppointments(ctx, "doc-1")
	require.Nil(t, apierr)
	assert.Len(t, doctors, 2)

	_, apierr = f.booking.GetAppointments(ctx, "")
	assert.Equal(t, apierror.AuthenticationRequiredError, apierr)
}

func TestUpdatePreparation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	appt, apierr := f.booking.CreateAppointment(ctx, &AppointmentRequest{DoctorID: "doc-1", Slot: "2026-03-02T09:00"}, "pat-1")
	require.Nil(t, apierr)

	fasting := true
	note := "Bring previous blood test results"
	req := &PreparationRequest{FastingRequired: &fasting, AdditionalPreparation: &note}

	_, apierr = f.booking.UpdatePreparation(ctx, appt.ID, req, "pat-1")
	assert.Equal(t, apierror.ForbiddenError, apierr)

	updated, apierr := f.booking.UpdatePreparation(ctx, appt.ID, req, "doc-1")
	require.Nil(t, apierr)
	assert.True(t, updated.FastingRequired)
	require.NotNil(t, updated.AdditionalPreparation)
	assert.Equal(t, note, *updated.AdditionalPreparation)

	stored, err := f.appts.FindByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.FastingRequired)
}

func kindOf(apierr apierror.ErrorResponse) string {
	switch e := apierr.(type) {
	case *apierror.SimpleError:
		return e.Kind
	case *apierror.ValidationError:
		return e.Kind
	}
	return ""
}
