package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/healthinsure-ai/internal/domain/audit"
)

type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (r *InteractionRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS ai_interactions (
  id           VARCHAR(64)  NOT NULL PRIMARY KEY,
  session_id   VARCHAR(128) NOT NULL,
  kind         VARCHAR(32)  NOT NULL,
  prompt_chars INT          NOT NULL DEFAULT 0,
  status       VARCHAR(16)  NOT NULL,
  response     MEDIUMTEXT   NULL,
  error        TEXT         NULL,
  duration_ms  BIGINT       NOT NULL DEFAULT 0,
  created_at   DATETIME(3)  NOT NULL,
  KEY idx_ai_interactions_session (session_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save insert Interaction record
func (r *InteractionRepository) Save(ctx context.Context, i *domain.Interaction) error {
	const q = `
INSERT INTO ai_interactions
(id, session_id, kind, prompt_chars, status, response, error, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?);`

	created := i.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		i.ID, stringOrDash(i.SessionID), stringOrDash(string(i.Kind)), i.PromptChars,
		stringOrDash(string(i.Status)), i.Response, i.Error, i.DurationMS, created.UTC(),
	)
	return err
}

// Latest interactions per session, newest first
func (r *InteractionRepository) Latest(ctx context.Context, sessionID string, limit int) ([]*domain.Interaction, error) {
	const q = `
SELECT id, session_id, kind, prompt_chars, status,
       COALESCE(response, ''), COALESCE(error, ''), duration_ms, created_at
FROM ai_interactions
WHERE session_id=?
ORDER BY created_at DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, sessionID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Interaction
	for rows.Next() {
		var it domain.Interaction
		if err := rows.Scan(
			&it.ID, &it.SessionID, &it.Kind, &it.PromptChars, &it.Status,
			&it.Response, &it.Error, &it.DurationMS, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
