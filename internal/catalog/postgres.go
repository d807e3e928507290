// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Schema creates the games read model used by the Postgres-backed catalog.
const Schema = `
	CREATE TABLE IF NOT EXISTS games (
		id          TEXT PRIMARY KEY,
		position    SERIAL,
		genre       TEXT NOT NULL,
		image       TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		price       NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		is_new      BOOLEAN NOT NULL DEFAULT FALSE
	)
`

// postgresService implements the Service interface over the games table.
type postgresService struct {
	db       *sql.DB
	pageSize int
}

// NewPostgresService creates a catalog service reading from Postgres.
func NewPostgresService(db *sql.DB, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &postgresService{db: db, pageSize: pageSize}
}

// EnsureSchema creates the games table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create games table: %w", err)
	}
	return nil
}

// Seed inserts games that are not already present, keeping their order.
func Seed(ctx context.Context, db *sql.DB, games []Game) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (id, genre, image, name, description, price, is_new)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range games {
		if _, err := stmt.ExecContext(ctx, g.ID, g.Genre, g.Image, g.Name, g.Description, g.Price, g.IsNew); err != nil {
			return fmt.Errorf("insert game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListGames filters by genre and returns one page of the read model.
func (s *postgresService) ListGames(ctx context.Context, q Query) (*Page, error) {
	page := normalizePage(q.Page)

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM games
		WHERE ($1 = '' OR LOWER(genre) = LOWER($1))
	`, q.Genre).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}
	offset, _ := window(page, s.pageSize, count)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, genre, image, name, description, price, is_new
		FROM games
		WHERE ($1 = '' OR LOWER(genre) = LOWER($1))
		ORDER BY position ASC
		LIMIT $2 OFFSET $3
	`, q.Genre, s.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Genre, &g.Image, &g.Name, &g.Description, &g.Price, &g.IsNew); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	genres, err := s.Genres(ctx)
	if err != nil {
		return nil, err
	}

	return &Page{
		Games:            games,
		AvailableFilters: genres,
		TotalPages:       totalPages(count, s.pageSize),
		CurrentPage:      page,
	}, nil
}

// GetGame retrieves a game from the read model by its id.
func (s *postgresService) GetGame(ctx context.Context, id string) (*Game, error) {
	g := &Game{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, genre, image, name, description, price, is_new
		FROM games
		WHERE id = $1
	`, id).Scan(&g.ID, &g.Genre, &g.Image, &g.Name, &g.Description, &g.Price, &g.IsNew)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("game %q: %w", id, ErrGameNotFound)
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// Genres returns the distinct genres in catalog order.
func (s *postgresService) Genres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT genre
		FROM games
		GROUP BY genre
		ORDER BY MIN(position) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}
