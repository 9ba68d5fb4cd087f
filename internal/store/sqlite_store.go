package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath and
// applies the embedded schema.
func NewSQLiteStore(dbPath string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		return nil, errors.New("store: nil logger")
	}
	if dbPath == "" {
		return nil, errors.New("store: empty db path")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "store"})
	componentLogger.Info("sqlite store initialized", logging.Field{Key: "path", Value: dbPath})

	return &SQLiteStore{db: db, logger: componentLogger}, nil
}

// Ensure SQLiteStore implements Store at compile time.
var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	if email == "" {
		return nil, errors.New("store: empty email")
	}
	u := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

func (s *SQLiteStore) CreateWebsite(ctx context.Context, userID, url, name string) (*model.Website, error) {
	if url == "" {
		return nil, errors.New("store: empty website url")
	}
	w := &model.Website{
		ID:            uuid.New().String(),
		UserID:        userID,
		URL:           url,
		Name:          name,
		CheckInterval: 60,
		Status:        model.WebsitePending,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO websites (id, user_id, url, name, check_interval, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.UserID, w.URL, w.Name, w.CheckInterval, string(w.Status), w.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert website: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) FindWebsiteByID(ctx context.Context, id string) (*model.Website, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, url, name, check_interval, status, last_checked, created_at
		FROM websites WHERE id = ?
	`, id)
	w, err := scanWebsite(row)
	if err == sql.ErrNoRows {
		return nil, ErrWebsiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query website: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) FindWebsitesByUser(ctx context.Context, userID string) ([]*model.Website, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, url, name, check_interval, status, last_checked, created_at
		FROM websites WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query websites by user: %w", err)
	}
	defer rows.Close()
	return collectWebsites(rows)
}

func (s *SQLiteStore) FindAllWebsites(ctx context.Context) ([]*model.Website, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, url, name, check_interval, status, last_checked, created_at
		FROM websites ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all websites: %w", err)
	}
	defer rows.Close()
	return collectWebsites(rows)
}

func (s *SQLiteStore) UpdateWebsiteStatus(ctx context.Context, id string, status model.WebsiteStatus, checkedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE websites SET status = ?, last_checked = ? WHERE id = ?
	`, string(status), checkedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("update website status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWebsiteNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateScan(ctx context.Context, websiteID string) (string, error) {
	scanID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (id, website_id, status, started_at) VALUES (?, ?, 'running', ?)
	`, scanID, websiteID, time.Now().UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("insert scan: %w", err)
	}
	return scanID, nil
}

func (s *SQLiteStore) CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, summaryJSON, detailsJSON string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE scans SET status = ?, summary = ?, details = ?, completed_at = ? WHERE id = ?
	`, string(status), summaryJSON, detailsJSON, time.Now().UTC().Unix(), scanID)
	if err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScanNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateIssue(ctx context.Context, scanID, websiteID string, issue *model.Issue) error {
	if issue == nil {
		return errors.New("store: nil issue")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (id, scan_id, website_id, type, severity, title, description, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, issue.ID, scanID, websiteID, string(issue.Type), string(issue.Severity),
		issue.Title, issue.Description, issue.URL, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateAlert(ctx context.Context, alert *model.Alert) error {
	if alert == nil {
		return errors.New("store: nil alert")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, website_id, scan_id, status, title, message, email_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, alert.ID, alert.UserID, alert.WebsiteID, alert.ScanID, string(alert.Status),
		alert.Title, alert.Message, alert.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkAlertEmailSent(ctx context.Context, alertID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET email_sent = 1 WHERE id = ?
	`, alertID)
	if err != nil {
		return fmt.Errorf("mark alert email sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite store")
	return s.db.Close()
}

// rowScanner lets scanWebsite work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebsite(row rowScanner) (*model.Website, error) {
	var w model.Website
	var status string
	var lastChecked sql.NullInt64
	var createdAt int64
	if err := row.Scan(&w.ID, &w.UserID, &w.URL, &w.Name, &w.CheckInterval, &status, &lastChecked, &createdAt); err != nil {
		return nil, err
	}
	w.Status = model.WebsiteStatus(status)
	if lastChecked.Valid {
		t := time.Unix(lastChecked.Int64, 0).UTC()
		w.LastCheckedAt = &t
	}
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &w, nil
}

func collectWebsites(rows *sql.Rows) ([]*model.Website, error) {
	var out []*model.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan website row: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate websites: %w", err)
	}
	return out, nil
}
