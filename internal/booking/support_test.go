package booking

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telemedko/booking-engine/internal/events"
)

// ---------- in-memory Repository ----------

type memRepo struct {
	doctors      map[uuid.UUID]Doctor
	patients     map[uuid.UUID]Patient
	appointments map[uuid.UUID]Appointment
	files        map[uuid.UUID]MedicalFile
	engagements  map[uuid.UUID]PrivateEngagement
}

func newMemRepo() *memRepo {
	return &memRepo{
		doctors:      make(map[uuid.UUID]Doctor),
		patients:     make(map[uuid.UUID]Patient),
		appointments: make(map[uuid.UUID]Appointment),
		files:        make(map[uuid.UUID]MedicalFile),
		engagements:  make(map[uuid.UUID]PrivateEngagement),
	}
}

func (m *memRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *memRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *memRepo) ListConfirmedAppointments(_ context.Context, doctorID uuid.UUID, date time.Time) ([]Appointment, error) {
	var result []Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Status == StatusConfirmed && dayOf(a.Date).Equal(dayOf(date)) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SlotTime < result[j].SlotTime })
	return result, nil
}

func (m *memRepo) ListConfirmedAppointmentsBetween(_ context.Context, doctorID uuid.UUID, fromDay, toDay time.Time) ([]Appointment, error) {
	var result []Appointment
	for _, a := range m.appointments {
		day := dayOf(a.Date)
		if a.DoctorID == doctorID && a.Status == StatusConfirmed &&
			!day.Before(dayOf(fromDay)) && !day.After(dayOf(toDay)) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].SlotTime < result[j].SlotTime
	})
	return result, nil
}

func (m *memRepo) ListEngagementsOverlapping(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]PrivateEngagement, error) {
	var result []PrivateEngagement
	for _, e := range m.engagements {
		if e.DoctorID == doctorID && !e.StartAt.After(to) && !e.EndAt.Before(from) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *memRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memRepo) CreateAppointment(_ context.Context, a Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appointments[a.ID] = a
	return &a, nil
}

func (m *memRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	// Mirrors the partial unique index on confirmed (doctor, date, slot).
	if status == StatusConfirmed {
		for _, other := range m.appointments {
			if other.ID != id && other.DoctorID == a.DoctorID && other.Status == StatusConfirmed &&
				dayOf(other.Date).Equal(dayOf(a.Date)) && other.SlotTime == a.SlotTime {
				return nil, ErrSlotUnavailable
			}
		}
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	m.appointments[id] = a
	return &a, nil
}

func (m *memRepo) UpdateAppointmentSlot(_ context.Context, id uuid.UUID, date time.Time, slotTime string) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Date = date
	a.SlotTime = slotTime
	a.UpdatedAt = time.Now()
	m.appointments[id] = a
	return &a, nil
}

func (m *memRepo) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *memRepo) GetMedicalFile(_ context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error) {
	for _, f := range m.files {
		if f.DoctorID == doctorID && f.PatientID == patientID {
			return &f, nil
		}
	}
	return nil, ErrMedicalFileNotFound
}

func (m *memRepo) CreateMedicalFile(_ context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error) {
	f := MedicalFile{ID: uuid.New(), DoctorID: doctorID, PatientID: patientID, CreatedAt: time.Now()}
	m.files[f.ID] = f
	return &f, nil
}

func (m *memRepo) GetEngagementByID(_ context.Context, id uuid.UUID) (*PrivateEngagement, error) {
	e, ok := m.engagements[id]
	if !ok {
		return nil, ErrEngagementNotFound
	}
	return &e, nil
}

func (m *memRepo) ListEngagementsByDoctor(_ context.Context, doctorID uuid.UUID) ([]PrivateEngagement, error) {
	var result []PrivateEngagement
	for _, e := range m.engagements {
		if e.DoctorID == doctorID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (m *memRepo) CreateEngagement(_ context.Context, e PrivateEngagement) (*PrivateEngagement, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.engagements[e.ID] = e
	return &e, nil
}

func (m *memRepo) UpdateEngagement(_ context.Context, e PrivateEngagement) (*PrivateEngagement, error) {
	if _, ok := m.engagements[e.ID]; !ok {
		return nil, ErrEngagementNotFound
	}
	e.UpdatedAt = time.Now()
	m.engagements[e.ID] = e
	return &e, nil
}

func (m *memRepo) DeleteEngagement(_ context.Context, id uuid.UUID) error {
	if _, ok := m.engagements[id]; !ok {
		return ErrEngagementNotFound
	}
	delete(m.engagements, id)
	return nil
}

func (m *memRepo) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

// ---------- lock stub ----------

type passLocker struct{}

func (passLocker) WithDoctorDayLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(context.Context) error) error {
	return fn(ctx)
}

// ---------- fixtures ----------

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	resolver := NewResolver(repo, 20*time.Minute)
	svc := NewService(repo, resolver, passLocker{}, events.Noop{}, zap.NewNop())
	return svc, repo
}

func addDoctor(repo *memRepo, schedule WeeklySchedule) uuid.UUID {
	id := uuid.New()
	repo.doctors[id] = Doctor{ID: id, Name: "Dr. Test", Schedule: schedule}
	return id
}

func addPatient(repo *memRepo) uuid.UUID {
	id := uuid.New()
	repo.patients[id] = Patient{ID: id, Name: "Pat Test"}
	return id
}

func addAppointment(repo *memRepo, doctorID, patientID uuid.UUID, date time.Time, slot string, status AppointmentStatus) uuid.UUID {
	id := uuid.New()
	repo.appointments[id] = Appointment{
		ID:        id,
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      dayOf(date),
		SlotTime:  slot,
		Type:      "consultation",
		Status:    status,
	}
	return id
}

// nextWeekday returns the next occurrence of the weekday strictly after
// today, so dates are always bookable.
func nextWeekday(day time.Weekday) time.Time {
	d := dayOf(time.Now()).AddDate(0, 0, 1)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func mondayMorning() WeeklySchedule {
	return WeeklySchedule{
		{Day: "monday", Periods: []Period{{Start: "09:00", End: "10:00"}}},
	}
}
