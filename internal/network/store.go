package network

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS edges (
	graph     TEXT NOT NULL,
	from_node TEXT NOT NULL,
	to_node   TEXT NOT NULL,
	weight    REAL NOT NULL
)`

// Load reads the per-line graphs from a SQLite network file. A missing file is not
// an error: Load returns a nil Network and route validation is skipped.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Network, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("network graph not found, route validation disabled", "path", path)
		return nil, nil
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open network: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT graph, from_node, to_node, weight FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	byLine := make(map[string][]Edge)
	for rows.Next() {
		var line string
		var e Edge
		if err := rows.Scan(&line, &e.From, &e.To, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		byLine[line] = append(byLine[line], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	graphs := make(map[string]*Graph, len(byLine))
	for line, edges := range byLine {
		graphs[line] = NewGraph(edges)
	}
	logger.Info("network graph loaded", "path", path, "graphs", len(graphs))
	return New(graphs), nil
}

// Save writes every graph of n to a SQLite network file, replacing its edges.
func Save(ctx context.Context, path string, n *Network) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("open network: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("clear edges: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (graph, from_node, to_node, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for line, g := range n.graphs {
		for _, e := range g.Edges() {
			if _, err := stmt.ExecContext(ctx, line, e.From, e.To, e.Weight); err != nil {
				return fmt.Errorf("insert edge %s -> %s: %w", e.From, e.To, err)
			}
		}
	}
	return tx.Commit()
}
