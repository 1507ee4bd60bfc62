package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

// Schema creates the attractions table when it does not exist yet.
const Schema = `
CREATE TABLE IF NOT EXISTS attractions (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	attraction_image TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// columns maps updatable attraction fields to table columns.
var columns = map[string]string{
	attractions.FieldName:            "name",
	attractions.FieldLocation:        "location",
	attractions.FieldAttractionImage: "attraction_image",
}

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements attractions.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the attractions table if needed
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return attractions.ErrDuplicateID
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) ListAttractions(ctx context.Context) ([]*attractions.Attraction, error) {
	query := `
		SELECT id::text, name, location, attraction_image
		FROM attractions ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list attractions", err)
	}
	defer rows.Close()

	result := []*attractions.Attraction{}
	for rows.Next() {
		var a attractions.Attraction
		if err := rows.Scan(&a.ID, &a.Name, &a.Location, &a.AttractionImage); err != nil {
			return nil, r.handlePostgresError("list attractions", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list attractions", err)
	}

	return result, nil
}

func (r *Repository) GetAttraction(ctx context.Context, id string) (*attractions.Attraction, error) {
	query := `
		SELECT id::text, name, location, attraction_image
		FROM attractions WHERE id = $1`

	var a attractions.Attraction
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Location, &a.AttractionImage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attractions.ErrAttractionNotFound
		}
		return nil, r.handlePostgresError("get attraction", err)
	}

	return &a, nil
}

func (r *Repository) CreateAttraction(ctx context.Context, attraction *attractions.Attraction) error {
	query := `
		INSERT INTO attractions (id, name, location, attraction_image)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		attraction.ID, attraction.Name, attraction.Location, attraction.AttractionImage)
	if err != nil {
		return r.handlePostgresError("create attraction", err)
	}

	return nil
}

func (r *Repository) UpdateAttraction(ctx context.Context, id string, patch attractions.AttractionPatch) (bool, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return r.exists(ctx, id)
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := []interface{}{id}
	for _, field := range names {
		args = append(args, fields[field])
		sets = append(sets, fmt.Sprintf("%s = $%d", columns[field], len(args)))
	}

	query := fmt.Sprintf("UPDATE attractions SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, r.handlePostgresError("update attraction", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repository) exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attractions WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, r.handlePostgresError("check attraction", err)
	}
	return found, nil
}

func (r *Repository) DeleteAttraction(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM attractions WHERE id = $1`, id)
	if err != nil {
		return false, r.handlePostgresError("delete attraction", err)
	}
	return tag.RowsAffected() > 0, nil
}
