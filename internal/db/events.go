package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sportevents/backend/internal/model"
)

const eventSelect = `
	SELECT
		e.id, e.name, e.sport, e.max_participants, e.start_time, e.end_time,
		e.created_by, e.created_at, e.updated_at,
		u.name, u.email
	FROM sport_events e
	JOIN users u ON u.id = e.created_by
`

func (db *Postgres) CreateSportEvent(ctx context.Context, event *model.SportEvent) error {
	query := `
		INSERT INTO sport_events (id, name, sport, max_participants, start_time, end_time, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := db.Pool.QueryRow(ctx, query,
		event.ID,
		event.Name,
		event.Sport,
		event.MaxParticipants,
		event.StartTime,
		event.EndTime,
		event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sport event: %w", err)
	}
	return nil
}

func (db *Postgres) ListSportEvents(ctx context.Context) ([]model.SportEvent, error) {
	rows, err := db.Pool.Query(ctx, eventSelect+` ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sport events: %w", err)
	}
	defer rows.Close()

	list := []model.SportEvent{}
	for rows.Next() {
		event, err := scanSportEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sport event: %w", err)
		}
		list = append(list, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sport events: %w", err)
	}
	return list, nil
}

func (db *Postgres) GetSportEvent(ctx context.Context, id uuid.UUID) (*model.SportEvent, error) {
	event, err := scanSportEvent(db.Pool.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sport event: %w", err)
	}
	return event, nil
}

func (db *Postgres) UpdateSportEvent(ctx context.Context, event *model.SportEvent) error {
	query := `
		UPDATE sport_events
		SET name = $2, sport = $3, max_participants = $4, start_time = $5, end_time = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := db.Pool.QueryRow(ctx, query,
		event.ID,
		event.Name,
		event.Sport,
		event.MaxParticipants,
		event.StartTime,
		event.EndTime,
	).Scan(&event.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update sport event: %w", err)
	}
	return nil
}

func (db *Postgres) DeleteSportEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sport_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sport event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSportEvent(row pgx.Row) (*model.SportEvent, error) {
	var (
		event   model.SportEvent
		creator model.EventCreator
	)
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Sport,
		&event.MaxParticipants,
		&event.StartTime,
		&event.EndTime,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
		&creator.Name,
		&creator.Email,
	)
	if err != nil {
		return nil, err
	}
	creator.ID = event.CreatedBy
	event.Creator = &creator
	return &event, nil
}
