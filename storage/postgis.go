package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/twpayne/go-geos"
)

// PostGIS writes polygons into PostGIS tables, replacing their content.
type PostGIS struct {
	db   *sql.DB
	srid int
}

// OpenPostGIS connects to dsn. Geometries are stored with srid.
func OpenPostGIS(dsn string, srid int) (*PostGIS, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return &PostGIS{db: db, srid: srid}, nil
}

func (p *PostGIS) Close() error {
	return p.db.Close()
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func createTableSQL(table string, srid int) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id serial PRIMARY KEY, geom geometry(Polygon, %d) NOT NULL)",
		quoteTable(table), srid)
}

func truncateSQL(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", quoteTable(table))
}

func insertSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (geom) VALUES (ST_GeomFromWKB($1, $2))", quoteTable(table))
}

// Save replaces the content of table with polygons in one transaction.
func (p *PostGIS) Save(table string, polygons []*geos.Geom) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{createTableSQL(table, p.srid), truncateSQL(table)} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", table, err)
		}
	}

	insert, err := tx.Prepare(insertSQL(table))
	if err != nil {
		return err
	}
	defer insert.Close()

	for i, polygon := range polygons {
		if _, err := insert.Exec(polygon.ToWKB(), p.srid); err != nil {
			return fmt.Errorf("failed to insert polygon %d: %w", i, err)
		}
	}
	return tx.Commit()
}
