package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// User is an applicant on whose behalf the pipeline runs. ProfileData is a
// free-form JSON blob; Phone, Location and Skills are pulled out of it on
// load when present.
type User struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Location   string   `json:"location,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	ResumePath string   `json:"resume_path"`
}

// Application statuses. Applied covers confirmed and unconfirmed submissions;
// Error marks runs where tailoring succeeded but submission failed.
const (
	StatusApplied = "applied"
	StatusError   = "error"
)

// Application is one pipeline run against one posting. Rows are append-only:
// every run inserts, nothing updates.
type Application struct {
	ID                 int       `json:"id"`
	UserID             int       `json:"user_id"`
	JobLink            string    `json:"job_link"`
	JobDescription     string    `json:"job_description,omitempty"`
	TailoredResumePath string    `json:"tailored_resume_path,omitempty"`
	Status             string    `json:"status"`
	StatusDetail       string    `json:"status_detail,omitempty"`
	MatchPercentage    int       `json:"match_percentage"`
	AppliedAt          time.Time `json:"applied_at"`
}

func (s *Store) GetUser(ctx context.Context, userID int) (*User, error) {
	var (
		u           User
		phone       sql.NullString
		resumePath  sql.NullString
		profileData sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, email, phone, resume_path, COALESCE(profile_data::text, '')
FROM users
WHERE id = $1
`, userID).Scan(&u.ID, &u.Name, &u.Email, &phone, &resumePath, &profileData)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		u.Phone = phone.String
	}
	if resumePath.Valid {
		u.ResumePath = resumePath.String
	}
	if profileData.Valid && profileData.String != "" {
		applyProfileData(&u, profileData.String)
	}
	return &u, nil
}

// applyProfileData fills gaps in the user row from the JSON profile blob.
// Column values win over blob values.
func applyProfileData(u *User, raw string) {
	var profile struct {
		Phone    string   `json:"phone"`
		Location string   `json:"location"`
		Skills   []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return
	}
	if u.Phone == "" {
		u.Phone = profile.Phone
	}
	u.Location = profile.Location
	u.Skills = profile.Skills
}

func (s *Store) SaveApplication(ctx context.Context, app Application) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO job_applications (user_id, job_link, job_description, tailored_resume_path, status, status_detail, match_percentage, applied_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING id
`, app.UserID, app.JobLink, app.JobDescription, app.TailoredResumePath, app.Status, app.StatusDetail, app.MatchPercentage).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving application: %w", err)
	}
	return id, nil
}

func (s *Store) ListApplications(ctx context.Context, userID, limit, offset int) ([]Application, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, job_link, COALESCE(job_description, ''), COALESCE(tailored_resume_path, ''), status, COALESCE(status_detail, ''), match_percentage, applied_at
FROM job_applications
WHERE user_id = $1
ORDER BY applied_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.JobLink,
			&a.JobDescription,
			&a.TailoredResumePath,
			&a.Status,
			&a.StatusDetail,
			&a.MatchPercentage,
			&a.AppliedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// HasApplied reports whether a user already has a successful application for
// the exact job link.
func (s *Store) HasApplied(ctx context.Context, userID int, jobLink string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM job_applications
    WHERE user_id = $1 AND job_link = $2 AND status = $3
)
`, userID, jobLink, StatusApplied).Scan(&exists)
	return exists, err
}
