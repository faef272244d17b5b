package api

import (
	"encoding/json"
	"net/http"

	"github.com/telemedko/booking-engine/internal/booking"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func appointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.Date.Format("2006-01-02"),
		Time:      a.SlotTime,
		Type:      a.Type,
		Status:    string(a.Status),
	}
}

func engagementResponse(e *booking.PrivateEngagement) EngagementResponse {
	return EngagementResponse{
		ID:          e.ID,
		DoctorID:    e.DoctorID,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
	}
}
