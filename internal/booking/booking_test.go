package booking

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBook_PatientBooksDoctor(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)
	monday := nextWeekday(time.Monday)

	result, err := svc.Book(context.Background(), BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       monday,
		SlotTime:   "09:20",
		Type:       "consultation",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	appt := result.Appointment
	if appt.Status != StatusPending {
		t.Errorf("status = %s, want pending", appt.Status)
	}
	if appt.DoctorID != doctorID || appt.PatientID != patientID {
		t.Errorf("parties = (%s, %s), want (%s, %s)", appt.DoctorID, appt.PatientID, doctorID, patientID)
	}
	if appt.SlotTime != "09:20" {
		t.Errorf("slot = %s, want 09:20", appt.SlotTime)
	}
	if !result.MedicalFileCreated {
		t.Error("first booking between a pair must create a medical file")
	}

	if _, err := repo.GetMedicalFile(context.Background(), doctorID, patientID); err != nil {
		t.Fatalf("medical file missing after booking: %v", err)
	}
}

func TestBook_DoctorBooksPatient(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)

	result, err := svc.Book(context.Background(), BookRequest{
		CallerID:   doctorID,
		CallerRole: RoleDoctor,
		PatientID:  patientID,
		Date:       nextWeekday(time.Monday),
		SlotTime:   "09:00",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if result.Appointment.DoctorID != doctorID || result.Appointment.PatientID != patientID {
		t.Errorf("parties swapped: doctor=%s patient=%s", result.Appointment.DoctorID, result.Appointment.PatientID)
	}
}

func TestBook_MedicalFileReused(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)
	monday := nextWeekday(time.Monday)

	req := BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       monday,
		SlotTime:   "09:00",
	}
	if _, err := svc.Book(context.Background(), req); err != nil {
		t.Fatalf("first Book: %v", err)
	}

	req.SlotTime = "09:20"
	result, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("second Book: %v", err)
	}
	if result.MedicalFileCreated {
		t.Error("second booking between the same pair must reuse the medical file")
	}
	if len(repo.files) != 1 {
		t.Errorf("medical files = %d, want 1", len(repo.files))
	}
}

func TestBook_RoleValidation(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)
	monday := nextWeekday(time.Monday)

	tests := []struct {
		name    string
		req     BookRequest
		wantErr error
	}{
		{
			name: "unsupported role",
			req: BookRequest{
				CallerID:   uuid.New(),
				CallerRole: "admin",
				DoctorID:   doctorID,
				Date:       monday,
				SlotTime:   "09:00",
			},
			wantErr: ErrRoleNotAllowed,
		},
		{
			name: "patient without doctor id",
			req: BookRequest{
				CallerID:   patientID,
				CallerRole: RolePatient,
				Date:       monday,
				SlotTime:   "09:00",
			},
			wantErr: ErrMissingCounterpart,
		},
		{
			name: "doctor without patient id",
			req: BookRequest{
				CallerID:   doctorID,
				CallerRole: RoleDoctor,
				Date:       monday,
				SlotTime:   "09:00",
			},
			wantErr: ErrMissingCounterpart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBook_PastDate(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)

	_, err := svc.Book(context.Background(), BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       time.Now().AddDate(0, 0, -1),
		SlotTime:   "09:00",
	})
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("err = %v, want ErrPastDate", err)
	}
	if len(repo.appointments) != 0 || len(repo.files) != 0 {
		t.Fatal("failed booking must leave no writes behind")
	}
}

func TestBook_PatientMissing(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())

	_, err := svc.Book(context.Background(), BookRequest{
		CallerID:   uuid.New(),
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       nextWeekday(time.Monday),
		SlotTime:   "09:00",
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestBook_SlotTaken(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)
	other := addPatient(repo)
	monday := nextWeekday(time.Monday)

	addAppointment(repo, doctorID, other, monday, "09:20", StatusConfirmed)

	_, err := svc.Book(context.Background(), BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       monday,
		SlotTime:   "09:20",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
	if len(repo.files) != 0 {
		t.Fatal("conflicting booking must not create a medical file")
	}
}

func TestBook_SlotOutsideSchedule(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)

	_, err := svc.Book(context.Background(), BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       nextWeekday(time.Monday),
		SlotTime:   "13:00",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}

func TestBook_ConfirmedBookingExcludesSlot(t *testing.T) {
	svc, repo := newTestService()
	doctorID := addDoctor(repo, mondayMorning())
	patientID := addPatient(repo)
	monday := nextWeekday(time.Monday)

	result, err := svc.Book(context.Background(), BookRequest{
		CallerID:   patientID,
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       monday,
		SlotTime:   "09:20",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), result.Appointment.ID, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	slots, err := svc.resolver.AvailableSlots(context.Background(), doctorID, monday)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	want := []string{"09:00", "09:40"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("slots = %v, want %v", slots, want)
	}

	// and a second booking of the same slot now conflicts
	_, err = svc.Book(context.Background(), BookRequest{
		CallerID:   addPatient(repo),
		CallerRole: RolePatient,
		DoctorID:   doctorID,
		Date:       monday,
		SlotTime:   "09:20",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}
