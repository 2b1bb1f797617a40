package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"talentlens/internal/config"
	"talentlens/internal/errors"
	"talentlens/internal/types"
)

const candidateSchema = `
CREATE TABLE IF NOT EXISTS candidate_records (
	id           TEXT PRIMARY KEY,
	external_uid TEXT,
	position     BIGSERIAL,
	document     JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS candidate_records_external_uid_idx
	ON candidate_records (external_uid) WHERE external_uid <> '';
`

// PostgresCollection stores candidate records as JSONB documents. The
// external_uid column mirrors the document field so the secondary lookup
// stays indexed.
type PostgresCollection struct {
	db     *sql.DB
	logger *errors.Logger
}

// NewPostgresCollection opens a connection pool and ensures the schema.
func NewPostgresCollection(cfg config.StoreConfig, logger *errors.Logger) (*PostgresCollection, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to open database", err)
	}

	// Connection pool tuning
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db, logger)
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to reach database", err)
	}

	if _, err := db.ExecContext(pingCtx, candidateSchema); err != nil {
		closeQuietly(db, logger)
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to ensure schema", err)
	}

	if logger != nil {
		logger.Info("Connected to candidate record database",
			"max_open_conns", cfg.MaxOpenConns,
			"max_idle_conns", cfg.MaxIdleConns)
	}

	return &PostgresCollection{db: db, logger: logger}, nil
}

func closeQuietly(db *sql.DB, logger *errors.Logger) {
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("Failed to close database connection", "error", err)
	}
}

func (p *PostgresCollection) Get(ctx context.Context, id string) (*types.CandidateRecord, error) {
	var raw []byte
	query := `SELECT document FROM candidate_records WHERE id = $1`
	err := p.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, notFoundErr(id)
	}
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to read record", err).WithContext("id", id)
	}
	return decodeRecord(raw, id)
}

func (p *PostgresCollection) Put(ctx context.Context, record *types.CandidateRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode record", err).WithContext("id", record.ID)
	}

	query := `INSERT INTO candidate_records (id, external_uid, document)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE
	            SET external_uid = EXCLUDED.external_uid,
	                document = EXCLUDED.document,
	                updated_at = now()`
	if _, err := p.db.ExecContext(ctx, query, record.ID, record.ExternalUID, raw); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to write record", err).WithContext("id", record.ID)
	}
	return nil
}

func (p *PostgresCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode update", err).WithContext("id", id)
	}

	query := `UPDATE candidate_records
	          SET document = document || $2::jsonb, updated_at = now()
	          WHERE id = $1`
	result, err := p.db.ExecContext(ctx, query, id, raw)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to update record", err).WithContext("id", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to confirm update", err).WithContext("id", id)
	}
	if affected == 0 {
		return notFoundErr(id)
	}
	return nil
}

func (p *PostgresCollection) Delete(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM candidate_records WHERE id = $1`, id)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to delete record", err).WithContext("id", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to confirm delete", err).WithContext("id", id)
	}
	if affected == 0 {
		return notFoundErr(id)
	}
	return nil
}

func (p *PostgresCollection) FindByUID(ctx context.Context, externalUID string) (*types.CandidateRecord, error) {
	var raw []byte
	query := `SELECT document FROM candidate_records WHERE external_uid = $1`
	err := p.db.QueryRowContext(ctx, query, externalUID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewStoreError(
			errors.ErrCodeRecordNotFound,
			"no candidate record for external uid",
			nil,
		).WithContext("external_uid", externalUID)
	}
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to read record by uid", err).WithContext("external_uid", externalUID)
	}
	return decodeRecord(raw, "")
}

func (p *PostgresCollection) List(ctx context.Context) ([]*types.CandidateRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT document FROM candidate_records ORDER BY position`)
	if err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to list records", err)
	}
	defer rows.Close()

	var result []*types.CandidateRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to scan record", err)
		}
		record, err := decodeRecord(raw, "")
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to iterate records", err)
	}
	return result, nil
}

func (p *PostgresCollection) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "database unreachable", err)
	}
	return nil
}

func (p *PostgresCollection) Close() error {
	return p.db.Close()
}

func decodeRecord(raw []byte, id string) (*types.CandidateRecord, error) {
	var record types.CandidateRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		appErr := errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to decode record", err)
		if id != "" {
			appErr = appErr.WithContext("id", id)
		}
		return nil, appErr
	}
	return &record, nil
}
