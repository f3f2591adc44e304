// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists researched people in a SQLite database and serves
// the filtered, sorted, paginated queries the browse surfaces need.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

const dbFile = "people.db"

// defaultPageSize applies when the configuration leaves PageSize unset.
const defaultPageSize = 20

// searchResultLimit caps name-substring search results.
const searchResultLimit = 50

// sortColumns whitelists the sortable fields; anything else falls back to
// name. The keys are the public vocabulary, the values actual columns.
var sortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"view_count": "view_count",
}

// Store manages the people SQLite database.
type Store struct {
	db       *sql.DB
	pageSize int
}

// QueryOptions selects, orders, and pages a people listing. Empty filter
// fields match everything.
type QueryOptions struct {
	Filter   types.FilterMetadata
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}

// Open opens or creates the database under cfg.DataDir, creating the
// schema when missing.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	s := &Store{db: db, pageSize: pageSize}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS people (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birth_date TEXT,
			death_date TEXT,
			summary TEXT,
			events TEXT NOT NULL,
			era TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			impact TEXT NOT NULL DEFAULT '',
			view_count INTEGER NOT NULL DEFAULT 0,
			last_viewed_at TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_people_name ON people(name)`,
		`CREATE INDEX IF NOT EXISTS idx_people_domain ON people(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_people_era ON people(era)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Insert stores a person, assigning an ID and CreatedAt when unset.
func (s *Store) Insert(ctx context.Context, person *types.Person) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now().UTC()
	}

	eventsJSON, err := json.Marshal(person.Events)
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}

	lastViewed := ""
	if !person.LastViewedAt.IsZero() {
		lastViewed = person.LastViewedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO people (id, name, birth_date, death_date, summary, events,
			era, domain, region, impact, view_count, last_viewed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.Name, person.BirthDate, person.DeathDate, person.Summary,
		string(eventsJSON),
		person.FilterMetadata.Era, person.FilterMetadata.Domain,
		person.FilterMetadata.Region, person.FilterMetadata.Impact,
		person.ViewCount, lastViewed,
		person.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting person %s: %w", person.Name, err)
	}
	return nil
}

// Get fetches one person by id.
func (s *Store) Get(ctx context.Context, id string) (*types.Person, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM people WHERE id = ?`, id)
	person, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("person %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching person: %w", err)
	}
	return person, nil
}

// Query returns one page of people matching the filter, plus the total
// match count for pagination.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.Person, int, error) {
	where, args := filterClause(opts.Filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM people`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting people: %w", err)
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf("%s FROM people%s ORDER BY %s %s LIMIT ? OFFSET ?",
		selectColumns, where, column, direction)
	args = append(args, pageSize, (page-1)*pageSize)

	people, err := s.queryPeople(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return people, total, nil
}

// SearchByName returns people whose name contains the substring, case
// insensitively, ordered by name.
func (s *Store) SearchByName(ctx context.Context, substring string) ([]types.Person, error) {
	pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(substring, "%", `\%`), "_", `\_`) + "%"
	return s.queryPeople(ctx,
		selectColumns+` FROM people WHERE name LIKE ? ESCAPE '\' COLLATE NOCASE ORDER BY name LIMIT ?`,
		pattern, searchResultLimit)
}

// PatchMetadata overwrites the categorical tags of one person.
func (s *Store) PatchMetadata(ctx context.Context, id string, metadata types.FilterMetadata) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE people SET era = ?, domain = ?, region = ?, impact = ? WHERE id = ?`,
		metadata.Era, metadata.Domain, metadata.Region, metadata.Impact, id)
	if err != nil {
		return fmt.Errorf("patching metadata: %w", err)
	}
	return requireOneRow(result, id)
}

// Delete removes one person.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	return requireOneRow(result, id)
}

// IncrementViewCount bumps the person's view counter and stamps the view
// time, returning the new count. Read-then-write inside one transaction.
func (s *Store) IncrementViewCount(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `SELECT view_count FROM people WHERE id = ?`, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("person %s not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("reading view count: %w", err)
	}

	count++
	_, err = tx.ExecContext(ctx,
		`UPDATE people SET view_count = ?, last_viewed_at = ? WHERE id = ?`,
		count, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return 0, fmt.Errorf("updating view count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing view count: %w", err)
	}
	return count, nil
}

const selectColumns = `SELECT id, name, birth_date, death_date, summary, events,
	era, domain, region, impact, view_count, last_viewed_at, created_at`

// filterClause builds the WHERE clause for non-empty filter fields.
func filterClause(filter types.FilterMetadata) (string, []any) {
	var clauses []string
	var args []any
	add := func(column, value string) {
		if value != "" {
			clauses = append(clauses, column+" = ?")
			args = append(args, value)
		}
	}
	add("era", filter.Era)
	add("domain", filter.Domain)
	add("region", filter.Region)
	add("impact", filter.Impact)
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) queryPeople(ctx context.Context, query string, args ...any) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying people: %w", err)
	}
	defer rows.Close()

	var people []types.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, *person)
	}
	return people, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*types.Person, error) {
	var (
		person     types.Person
		eventsJSON string
		lastViewed sql.NullString
		createdAt  string
	)
	err := row.Scan(
		&person.ID, &person.Name, &person.BirthDate, &person.DeathDate,
		&person.Summary, &eventsJSON,
		&person.FilterMetadata.Era, &person.FilterMetadata.Domain,
		&person.FilterMetadata.Region, &person.FilterMetadata.Impact,
		&person.ViewCount, &lastViewed, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(eventsJSON), &person.Events); err != nil {
		return nil, fmt.Errorf("decoding events for %s: %w", person.ID, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		person.CreatedAt = t
	}
	if lastViewed.Valid && lastViewed.String != "" {
		if t, err := time.Parse(time.RFC3339Nano, lastViewed.String); err == nil {
			person.LastViewedAt = t
		}
	}
	return &person, nil
}

func requireOneRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("person %s not found", id)
	}
	return nil
}
