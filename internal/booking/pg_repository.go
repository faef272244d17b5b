package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code serves pooled and transaction-scoped calls.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db   querier
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool, pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string
	var schedule []byte

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialty,
		&schedule,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Specialty = specialty
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &d.Schedule); err != nil {
			return nil, fmt.Errorf("decode doctor schedule: %w", err)
		}
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&a.SlotTime,
		&a.Type,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanMedicalFile(row pgx.Row) (*MedicalFile, error) {
	var f MedicalFile

	err := row.Scan(
		&f.ID,
		&f.DoctorID,
		&f.PatientID,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicalFileNotFound
		}
		return nil, err
	}

	return &f, nil
}

func scanEngagement(row pgx.Row) (*PrivateEngagement, error) {
	var e PrivateEngagement

	err := row.Scan(
		&e.ID,
		&e.DoctorID,
		&e.Description,
		&e.StartAt,
		&e.EndAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEngagementNotFound
		}
		return nil, err
	}

	return &e, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func collectEngagements(rows pgx.Rows) ([]PrivateEngagement, error) {
	defer rows.Close()

	var result []PrivateEngagement
	for rows.Next() {
		e, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, specialty, schedule, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) ListConfirmedAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status = 'confirmed'
		ORDER BY slot_time
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListConfirmedAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, fromDay, toDay time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND date >= $2 AND date <= $3 AND status = 'confirmed'
		ORDER BY date, slot_time
	`, doctorID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListEngagementsOverlapping(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]PrivateEngagement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doctor_id, description, start_at, end_at, created_at, updated_at
		FROM private_engagements
		WHERE doctor_id = $1 AND start_at <= $3 AND end_at >= $2
		ORDER BY start_at
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	return collectEngagements(rows)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
	`, id, a.DoctorID, a.PatientID, a.Date, a.SlotTime, a.Type, a.Status)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
	`, id, status)

	appt, err := scanAppointment(row)
	if err != nil {
		// Confirming into a slot another confirmed appointment holds
		// trips the partial unique index on (doctor_id, date, slot_time).
		if isUniqueViolation(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	return appt, nil
}

// 23505 is the postgres unique_violation class.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PgRepository) UpdateAppointmentSlot(ctx context.Context, id uuid.UUID, date time.Time, slotTime string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2,
		    slot_time = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, patient_id, date, slot_time, type, status, created_at, updated_at
	`, id, date, slotTime)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) GetMedicalFile(ctx context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, created_at
		FROM medical_files
		WHERE doctor_id = $1 AND patient_id = $2
	`, doctorID, patientID)
	return scanMedicalFile(row)
}

func (r *PgRepository) CreateMedicalFile(ctx context.Context, doctorID, patientID uuid.UUID) (*MedicalFile, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO medical_files (id, doctor_id, patient_id, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, doctor_id, patient_id, created_at
	`, id, doctorID, patientID)

	return scanMedicalFile(row)
}

func (r *PgRepository) GetEngagementByID(ctx context.Context, id uuid.UUID) (*PrivateEngagement, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, doctor_id, description, start_at, end_at, created_at, updated_at
		FROM private_engagements
		WHERE id = $1
	`, id)
	return scanEngagement(row)
}

func (r *PgRepository) ListEngagementsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]PrivateEngagement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doctor_id, description, start_at, end_at, created_at, updated_at
		FROM private_engagements
		WHERE doctor_id = $1
		ORDER BY start_at
	`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectEngagements(rows)
}

func (r *PgRepository) CreateEngagement(ctx context.Context, e PrivateEngagement) (*PrivateEngagement, error) {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO private_engagements (id, doctor_id, description, start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, doctor_id, description, start_at, end_at, created_at, updated_at
	`, id, e.DoctorID, e.Description, e.StartAt, e.EndAt)

	return scanEngagement(row)
}

func (r *PgRepository) UpdateEngagement(ctx context.Context, e PrivateEngagement) (*PrivateEngagement, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE private_engagements
		SET description = $2,
		    start_at = $3,
		    end_at = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, description, start_at, end_at, created_at, updated_at
	`, e.ID, e.Description, e.StartAt, e.EndAt)

	return scanEngagement(row)
}

func (r *PgRepository) DeleteEngagement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM private_engagements WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEngagementNotFound
	}
	return nil
}

// InTx runs fn against a repository bound to one read-committed
// transaction. When called on an already transaction-scoped repository
// fn joins the open transaction instead of starting a nested one.
func (r *PgRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
