package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eclinic/cmd/internal/availability"
	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

type fakeProfileRepo struct {
	mu       sync.Mutex
	doctors  map[string]*entity.Doctor
	patients map[string]*entity.Patient
	err      error

	// afterFindDoctor runs once, outside the lock, after the next FindDoctor.
	afterFindDoctor func()
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{doctors: map[string]*entity.Doctor{}, patients: map[string]*entity.Patient{}}
}

func (f *fakeProfileRepo) FindDoctor(_ context.Context, id string) (*entity.Doctor, error) {
	doctor, err := f.findDoctor(id)
	if hook := f.takeAfterFindDoctor(); hook != nil {
		hook()
	}
	return doctor, err
}

func (f *fakeProfileRepo) findDoctor(id string) (*entity.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.doctors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeProfileRepo) takeAfterFindDoctor() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	hook := f.afterFindDoctor
	f.afterFindDoctor = nil
	return hook
}

func (f *fakeProfileRepo) FindPatient(_ context.Context, id string) (*entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) ListDoctors(context.Context) ([]*entity.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*entity.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeProfileRepo) SetDoctorSchedule(_ context.Context, id string, schedule entity.WeeklySchedule, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d, ok := f.doctors[id]
	if !ok {
		return fmt.Errorf("doctor %s missing", id)
	}
	d.Schedule = schedule
	d.Available = available
	return nil
}

func (f *fakeProfileRepo) UpdateDoctorDetails(_ context.Context, doctor *entity.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d, ok := f.doctors[doctor.ID]
	if !ok {
		return fmt.Errorf("doctor %s missing", doctor.ID)
	}
	d.FirstName = doctor.FirstName
	d.LastName = doctor.LastName
	d.Specialty = doctor.Specialty
	return nil
}

func (f *fakeProfileRepo) SaveDoctor(_ context.Context, doctor *entity.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *doctor
	f.doctors[doctor.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) SavePatient(_ context.Context, patient *entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *patient
	f.patients[patient.ID] = &cp
	return nil
}

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	appts  []*entity.Appointment
	nextID int
	err    error
}

func (f *fakeAppointmentRepo) CreateConfirmed(_ context.Context, appt *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, a := range f.appts {
		if a.IsConfirmed() && a.DoctorID == appt.DoctorID && a.StartsAt == appt.StartsAt {
			return entity.ErrSlotTaken
		}
	}
	f.nextID++
	appt.ID = fmt.Sprintf("appt-%d", f.nextID)
	cp := *appt
	f.appts = append(f.appts, &cp)
	return nil
}

func (f *fakeAppointmentRepo) FindConfirmedByDoctor(_ context.Context, doctorID string, fromMillis int64) ([]*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Appointment
	for _, a := range f.appts {
		if a.IsConfirmed() && a.DoctorID == doctorID && a.StartsAt >= fromMillis {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.appts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) FindByParticipant(_ context.Context, userID string) ([]*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Appointment
	for _, a := range f.appts {
		if a.HasParticipant(userID) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Save(_ context.Context, appt *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, a := range f.appts {
		if a.ID == appt.ID {
			cp := *appt
			f.appts[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("appointment %s missing", appt.ID)
}

func (f *fakeAppointmentRepo) Cancel(ctx context.Context, appt *entity.Appointment) error {
	appt.Status = entity.StatusCancelled
	return f.Save(ctx, appt)
}

// 2026-03-02 is a Monday.
func monday(t *testing.T, policy *availability.Policy, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, time.March, 2, hour, minute, 0, 0, policy.Location)
}

func newTestPolicy(t *testing.T) *availability.Policy {
	t.Helper()
	p, err := availability.NewPolicy(availability.DefaultTimezone, availability.DefaultHorizonDays, availability.DefaultStep)
	require.NoError(t, err)
	return p
}

func newTestValidator() *validator.Validate {
	v := validator.New()
	validators.Register(v)
	return v
}

func seedDoctor(repo *fakeProfileRepo, id string, schedule entity.WeeklySchedule) {
	repo.doctors[id] = &entity.Doctor{
		ID:        id,
		FirstName: "Anna",
		LastName:  "Nowak",
		Schedule:  schedule,
		Available: true,
	}
}

func seedPatient(repo *fakeProfileRepo, id string) {
	repo.patients[id] = &entity.Patient{ID: id, FirstName: "Jan", LastName: "Kowalski"}
}
