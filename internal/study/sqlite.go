package study

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/3star333/tradestudyagent/internal/types"
)

// SQLiteStore is the database-backed Store implementation.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, types.WrapError(types.DB_OPEN_FAILED, "failed to open database", err)
	}

	store := &SQLiteStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS trade_studies (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			data TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trade_study_attachments (
			id TEXT PRIMARY KEY,
			trade_study_id TEXT NOT NULL REFERENCES trade_studies(id) ON DELETE CASCADE,
			file_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_attachments_study ON trade_study_attachments(trade_study_id);
		CREATE INDEX IF NOT EXISTS idx_studies_owner ON trade_studies(owner_id);
	`

	if _, err := s.conn.Exec(schema); err != nil {
		return types.WrapError(types.DB_OPEN_FAILED, "failed to create schema", err)
	}
	return nil
}

// GetByID loads a study with its attachments, or (nil, nil) if absent.
func (s *SQLiteStore) GetByID(ctx context.Context, id types.ID) (*TradeStudy, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, owner_id, title, summary, status, data, created_at, updated_at
		FROM trade_studies WHERE id = ?
	`, id.String())

	record, err := scanStudy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to load trade study", err)
	}

	attachments, err := s.loadAttachments(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Attachments = attachments

	return record, nil
}

// Create persists a new study and returns it.
func (s *SQLiteStore) Create(ctx context.Context, params CreateParams) (*TradeStudy, error) {
	status := params.Status
	if status == "" {
		status = types.StudyStatusDraft
	}

	data := params.Data
	if data == nil {
		data = make(map[string]any)
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to marshal study data", err)
	}

	id := types.NewID()
	now := time.Now().UTC()

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO trade_studies (id, owner_id, title, summary, status, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id.String(), params.OwnerID, params.Title, params.Summary, status.String(), string(dataJSON), now, now)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to create trade study", err)
	}

	return s.GetByID(ctx, id)
}

// Update applies a partial update, or returns (nil, nil) for a missing id.
func (s *SQLiteStore) Update(ctx context.Context, id types.ID, params UpdateParams) (*TradeStudy, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	title := existing.Title
	if params.Title != nil {
		title = *params.Title
	}
	summary := existing.Summary
	if params.Summary != nil {
		summary = *params.Summary
	}
	status := existing.Status
	if params.Status != nil {
		status = *params.Status
	}
	data := existing.Data
	if params.Data != nil {
		data = params.Data
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to marshal study data", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		UPDATE trade_studies SET title = ?, summary = ?, status = ?, data = ?, updated_at = ?
		WHERE id = ?
	`, title, summary, status.String(), string(dataJSON), time.Now().UTC(), id.String())
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to update trade study", err)
	}

	return s.GetByID(ctx, id)
}

// AttachFile records an attachment for a study.
func (s *SQLiteStore) AttachFile(ctx context.Context, params AttachParams) (*Attachment, error) {
	existing, err := s.GetByID(ctx, params.TradeStudyID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, types.NewError(types.STUDY_NOT_FOUND,
			fmt.Sprintf("trade study %s not found", params.TradeStudyID))
	}

	attachment := Attachment{
		ID:           types.NewID(),
		TradeStudyID: params.TradeStudyID,
		FileID:       params.FileID,
		Type:         params.Type,
		Title:        params.Title,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO trade_study_attachments (id, trade_study_id, file_id, type, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, attachment.ID.String(), attachment.TradeStudyID.String(), attachment.FileID,
		attachment.Type.String(), attachment.Title, attachment.CreatedAt)
	if err != nil {
		return nil, types.WrapError(types.ATTACHMENT_FAILED, "failed to create attachment", err)
	}

	return &attachment, nil
}

// List returns studies, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, ownerID string) ([]*TradeStudy, error) {
	query := `
		SELECT id, owner_id, title, summary, status, data, created_at, updated_at
		FROM trade_studies
	`
	var args []any
	if ownerID != "" {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list trade studies", err)
	}
	defer rows.Close()

	var result []*TradeStudy
	for rows.Next() {
		record, err := scanStudy(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan trade study", err)
		}

		attachments, err := s.loadAttachments(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		record.Attachments = attachments
		result = append(result, record)
	}

	return result, rows.Err()
}

func (s *SQLiteStore) loadAttachments(ctx context.Context, studyID types.ID) ([]Attachment, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, trade_study_id, file_id, type, title, created_at
		FROM trade_study_attachments WHERE trade_study_id = ?
		ORDER BY created_at ASC
	`, studyID.String())
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to load attachments", err)
	}
	defer rows.Close()

	attachments := []Attachment{}
	for rows.Next() {
		var (
			attachment           Attachment
			id, studyID, attType string
		)
		if err := rows.Scan(&id, &studyID, &attachment.FileID, &attType, &attachment.Title, &attachment.CreatedAt); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan attachment", err)
		}
		attachment.ID = types.ID(id)
		attachment.TradeStudyID = types.ID(studyID)
		attachment.Type = types.AttachmentType(attType)
		attachments = append(attachments, attachment)
	}

	return attachments, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudy(row rowScanner) (*TradeStudy, error) {
	var (
		record               TradeStudy
		id, status, dataJSON string
	)

	err := row.Scan(&id, &record.OwnerID, &record.Title, &record.Summary,
		&status, &dataJSON, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.ID = types.ID(id)
	record.Status = types.StudyStatus(status)

	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &record.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal study data: %w", err)
		}
	}

	return &record, nil
}
