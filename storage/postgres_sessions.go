package storage

import (
	"avito-position-probe/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionStore keeps chat sessions in PostgreSQL so a chat can set its
// listing once and run checks after the process restarts. It stores only the
// setup of a chat, never sweep results.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

func NewPostgresSessionStore(ctx context.Context, dsn string) (*PostgresSessionStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresSessionStore{pool: pool}, nil
}

func (s *PostgresSessionStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSessionStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		chat_id BIGINT PRIMARY KEY,
		target_id TEXT NOT NULL DEFAULT '',
		regions TEXT[] NOT NULL DEFAULT '{}',
		state TEXT NOT NULL DEFAULT 'idle',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Load returns the stored session for chatID, or a fresh idle session.
func (s *PostgresSessionStore) Load(ctx context.Context, chatID int64) (*models.Session, error) {
	var (
		targetID  string
		regions   []string
		state     string
		updatedAt time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT target_id, regions, state, updated_at FROM chat_sessions WHERE chat_id = $1`,
		chatID,
	).Scan(&targetID, &regions, &state, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.Session{ChatID: chatID, State: models.StateIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %d: %w", chatID, err)
	}

	session := &models.Session{
		ChatID:    chatID,
		TargetID:  targetID,
		State:     models.ConversationState(state),
		UpdatedAt: updatedAt,
	}
	for _, r := range regions {
		session.Regions = append(session.Regions, models.RegionCode(r))
	}
	return session, nil
}

func (s *PostgresSessionStore) Save(ctx context.Context, session *models.Session) error {
	regions := make([]string, 0, len(session.Regions))
	for _, r := range session.Regions {
		regions = append(regions, string(r))
	}

	_, err := s.pool.Exec(ctx, `
	INSERT INTO chat_sessions (chat_id, target_id, regions, state, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (chat_id) DO UPDATE SET
		target_id = EXCLUDED.target_id,
		regions = EXCLUDED.regions,
		state = EXCLUDED.state,
		updated_at = NOW();
	`,
		session.ChatID,
		session.TargetID,
		regions,
		string(session.State),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %d: %w", session.ChatID, err)
	}
	return nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, chatID int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", chatID, err)
	}
	return nil
}
