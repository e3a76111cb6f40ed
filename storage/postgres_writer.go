package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"turo-scraper/models"
)

// columnTypes maps known record columns to their SQL types; anything else
// falls back to TEXT.
var columnTypes = map[string]string{
	"date_accessed":           "DATE",
	"instant_book":            "BOOLEAN",
	"latitude":                "DOUBLE PRECISION",
	"longitude":               "DOUBLE PRECISION",
	"all_star_host":           "BOOLEAN",
	"average_daily_price":     "NUMERIC(10,2)",
	"rating":                  "NUMERIC(4,2)",
	"review_count":            "INTEGER",
	"renter_trips_taken":      "INTEGER",
	"vehicle_year":            "INTEGER",
	"performance_score":       "INTEGER",
	"performance_trim":        "BOOLEAN",
	"performance_description": "BOOLEAN",
	"weekend":                 "DATE",
}

// PostgresWriter persists enriched batches to PostgreSQL, one schema per
// postal code and one table per weekend window.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL and verifies it with
// bounded ping retries.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return &PostgresWriter{db: db}, nil
}

// WriteBatch creates the dataset schema if absent, then fully replaces the
// window's destination table with the batch rows (drop, create, insert).
// Reruns of the same window are therefore idempotent. Returns the
// fully-qualified "dataset.table" identifier.
func (pw *PostgresWriter) WriteBatch(dataset string, batch *models.Batch) (string, error) {
	if batch.Len() == 0 {
		return "", fmt.Errorf("postgres: refusing to write empty batch for %s", batch.Window.TableName())
	}

	table := batch.Window.TableName()
	qualified := quoteIdent(dataset) + "." + quoteIdent(table)

	if _, err := pw.db.Exec("CREATE SCHEMA IF NOT EXISTS " + quoteIdent(dataset)); err != nil {
		return "", fmt.Errorf("postgres: create schema %s: %w", dataset, err)
	}

	if _, err := pw.db.Exec("DROP TABLE IF EXISTS " + qualified); err != nil {
		return "", fmt.Errorf("postgres: drop table %s: %w", qualified, err)
	}

	defs := make([]string, 0, len(batch.Columns))
	for _, col := range batch.Columns {
		sqlType, ok := columnTypes[col]
		if !ok {
			sqlType = "TEXT"
		}
		defs = append(defs, quoteIdent(col)+" "+sqlType)
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(defs, ", "))
	if _, err := pw.db.Exec(createStmt); err != nil {
		return "", fmt.Errorf("postgres: create table %s: %w", qualified, err)
	}

	const batchSize = 50
	for i := 0; i < batch.Len(); i += batchSize {
		end := i + batchSize
		if end > batch.Len() {
			end = batch.Len()
		}
		if err := pw.insertRows(qualified, batch.Columns, batch.Rows[i:end]); err != nil {
			return "", err
		}
	}

	return dataset + "." + table, nil
}

func (pw *PostgresWriter) insertRows(qualified string, columns []string, rows [][]any) error {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}

	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]any, 0, len(rows)*len(columns))

	for rowIdx, row := range rows {
		placeholders := make([]string, len(columns))
		base := rowIdx * len(columns)
		for colIdx := range columns {
			placeholders[colIdx] = fmt.Sprintf("$%d", base+colIdx+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualified, strings.Join(quoted, ", "), strings.Join(valueStrings, ","))

	if _, err := pw.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert rows: %w", err)
	}
	return nil
}

// CountRows reads back the row count of a loaded table.
func (pw *PostgresWriter) CountRows(dataset, table string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + quoteIdent(dataset) + "." + quoteIdent(table)
	if err := pw.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count rows: %w", err)
	}
	return count, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// quoteIdent quotes an identifier; schema names are postal codes and table
// names start with a digit, so quoting is mandatory.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
