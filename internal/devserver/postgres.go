package devserver

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vetclinic-client/internal/domain/appointments"
	"vetclinic-client/internal/domain/pets"
	"vetclinic-client/internal/domain/users"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para un backend de desarrollo
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema crea las tablas si no existen. Suficiente para dev;
// un backend real tendría migraciones versionadas.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS clinic_users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL,
	password_hash BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS clinic_pets (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES clinic_users (id),
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	breed      TEXT NOT NULL DEFAULT '',
	age        TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS clinic_appointments (
	id         TEXT PRIMARY KEY,
	pet_id     TEXT NOT NULL REFERENCES clinic_pets (id),
	owner_id   TEXT NOT NULL REFERENCES clinic_users (id),
	vet_id     TEXT NULL REFERENCES clinic_users (id),
	date       TEXT NOT NULL,
	time       TEXT NOT NULL,
	reason     TEXT NOT NULL,
	status     TEXT NOT NULL,
	diagnosis  TEXT NOT NULL DEFAULT '',
	treatment  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// PostgresStore implementa Store sobre Postgres para un devserver que
// sobrevive reinicios.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, u users.User, passwordHash []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_users (id, name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, strings.ToLower(u.Email), string(u.Role), passwordHash)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrAlreadyExists
	}
	return err
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (users.User, []byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, password_hash
		FROM clinic_users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))

	var u users.User
	var hash []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, nil, ErrNotFound
		}
		return users.User{}, nil, err
	}
	return u, hash, nil
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (users.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role
		FROM clinic_users
		WHERE id = $1
	`, id)

	var u users.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]users.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role
		FROM clinic_users
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetUserRole(ctx context.Context, id string, role users.Role) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clinic_users SET role = $2 WHERE id = $1
	`, id, string(role))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreatePet(ctx context.Context, p pets.Pet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_pets (id, owner_id, name, type, breed, age, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Owner.RefID(), p.Name, p.Type, p.Breed, p.Age, p.CreatedAt)
	return err
}

func (s *PostgresStore) PetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, breed, age, created_at
		FROM clinic_pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (s *PostgresStore) ListPets(ctx context.Context) ([]pets.Pet, error) {
	return s.queryPets(ctx, `
		SELECT id, owner_id, name, type, breed, age, created_at
		FROM clinic_pets
		ORDER BY created_at, id
	`)
}

func (s *PostgresStore) ListPetsByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	return s.queryPets(ctx, `
		SELECT id, owner_id, name, type, breed, age, created_at
		FROM clinic_pets
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
}

func (s *PostgresStore) queryPets(ctx context.Context, query string, args ...any) ([]pets.Pet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var ownerID string
	if err := row.Scan(&p.ID, &ownerID, &p.Name, &p.Type, &p.Breed, &p.Age, &p.CreatedAt); err != nil {
		return pets.Pet{}, err
	}
	p.Owner = users.Ref{ID: ownerID}
	return p, nil
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, a appointments.Appointment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_appointments (
			id, pet_id, owner_id, vet_id,
			date, time, reason,
			status, diagnosis, treatment, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		a.ID,
		a.Pet.RefID(),
		a.Owner.RefID(),
		toNullString(a.Vet.RefID()),
		a.Date,
		a.Time,
		a.Reason,
		string(a.Status),
		a.Diagnosis,
		a.Treatment,
		a.CreatedAt,
	)
	return err
}

func (s *PostgresStore) AppointmentByID(ctx context.Context, id string) (appointments.Appointment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, pet_id, owner_id, vet_id, date, time, reason, status, diagnosis, treatment, created_at
		FROM clinic_appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

func (s *PostgresStore) UpdateAppointment(ctx context.Context, a appointments.Appointment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clinic_appointments
		SET vet_id = $2, status = $3, diagnosis = $4, treatment = $5
		WHERE id = $1
	`,
		a.ID,
		toNullString(a.Vet.RefID()),
		string(a.Status),
		a.Diagnosis,
		a.Treatment,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	return s.queryAppointments(ctx, `
		SELECT id, pet_id, owner_id, vet_id, date, time, reason, status, diagnosis, treatment, created_at
		FROM clinic_appointments
		ORDER BY created_at, id
	`)
}

func (s *PostgresStore) ListAppointmentsByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	return s.queryAppointments(ctx, `
		SELECT id, pet_id, owner_id, vet_id, date, time, reason, status, diagnosis, treatment, created_at
		FROM clinic_appointments
		WHERE vet_id = $1
		ORDER BY created_at, id
	`, vetID)
}

func (s *PostgresStore) queryAppointments(ctx context.Context, query string, args ...any) ([]appointments.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var petID, ownerID string
	var vetID sql.NullString
	var status string

	if err := row.Scan(
		&a.ID,
		&petID,
		&ownerID,
		&vetID,
		&a.Date,
		&a.Time,
		&a.Reason,
		&status,
		&a.Diagnosis,
		&a.Treatment,
		&a.CreatedAt,
	); err != nil {
		return appointments.Appointment{}, err
	}

	a.Pet = pets.Ref{ID: petID}
	a.Owner = users.Ref{ID: ownerID}
	if vetID.Valid && vetID.String != "" {
		a.Vet = users.Ref{ID: vetID.String}
	}
	a.Status = appointments.Status(status)
	return a, nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
