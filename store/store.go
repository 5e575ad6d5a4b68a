// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store archives result tables in a SQL database.
//
// Each saved table is a run. A run's cells keep the kind of their
// Value, so loading a run returns a table equal to the one saved,
// including null cells and the field order of every row.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/rectable"
)

// ErrNotFound is returned by LoadTable for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// An Error reports a failed database operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// A Store is a database of runs. It is safe for concurrent use by
// multiple goroutines.
type Store struct {
	sql *sql.DB
	now func() time.Time

	insertRun *sql.Stmt
}

// Open opens a Store. The parameters are those of sql.Open. The
// sqlite3 and mysql drivers are supported.
func Open(driverName, dataSourceName string) (*Store, error) {
	if driverName != "sqlite3" && driverName != "mysql" {
		return nil, fmt.Errorf("store: unsupported driver %q", driverName)
	}
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, &Error{"open", err}
	}
	if driverName == "sqlite3" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{sql: db, now: time.Now}
	if err := s.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	s.insertRun, err = db.Prepare("INSERT INTO Runs(Name, NumRows, Created) VALUES (?, ?, ?)")
	if err != nil {
		db.Close()
		return nil, &Error{"prepare", err}
	}
	return s, nil
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Name VARCHAR(255),
	NumRows BIGINT,
	Created BIGINT
);
CREATE TABLE IF NOT EXISTS Cells (
	RunID BIGINT UNSIGNED,
	RowNum BIGINT,
	Pos INT,
	Name VARCHAR(255),
	Kind TINYINT,
	IntVal BIGINT,
	FloatVal DOUBLE,
	StrVal VARCHAR(8192),
	PRIMARY KEY (RunID, RowNum, Pos),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID)
);
`))

func (s *Store) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := s.sql.Exec(q); err != nil {
			return &Error{"create table", err}
		}
	}
	return nil
}

// A Run describes a saved table.
type Run struct {
	ID      int64
	Name    string
	Rows    int
	Created time.Time
}

// SaveTable saves t as a new run called name and returns its ID.
func (s *Store) SaveTable(ctx context.Context, name string, t *rectable.Table) (id int64, err error) {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, &Error{"save", err}
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else if cerr := tx.Commit(); cerr != nil {
			err = &Error{"save", cerr}
		}
	}()
	res, err := tx.StmtContext(ctx, s.insertRun).ExecContext(ctx, name, t.Len(), s.now().Unix())
	if err != nil {
		return 0, &Error{"save", err}
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, &Error{"save", err}
	}
	for row := 0; row < t.Len(); row++ {
		rec := t.Row(row)
		var args []interface{}
		for pos, col := range rec.Names() {
			args = append(args, id, row, pos, col)
			args = append(args, cellArgs(rec.Get(col))...)
		}
		if len(args) == 0 {
			continue
		}
		const perCell = 8
		query := "INSERT INTO Cells VALUES " + strings.Repeat("(?, ?, ?, ?, ?, ?, ?, ?), ", len(args)/perCell)
		query = strings.TrimSuffix(query, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, &Error{"save", err}
		}
	}
	return id, nil
}

// cellArgs returns the Kind, IntVal, FloatVal and StrVal columns of v.
func cellArgs(v benchlog.Value) []interface{} {
	args := []interface{}{int(v.Kind()), nil, nil, nil}
	switch v.Kind() {
	case benchlog.Int:
		args[1], _ = v.Int()
	case benchlog.Float:
		f, _ := v.Float()
		if math.IsNaN(f) {
			// SQL has no NaN. A null FloatVal of kind Float reads back as NaN.
			break
		}
		args[2] = f
	case benchlog.String:
		args[3] = v.Str()
	}
	return args
}

// LoadTable returns the table saved as run id.
func (s *Store) LoadTable(ctx context.Context, id int64) (*rectable.Table, error) {
	var numRows int
	err := s.sql.QueryRowContext(ctx, "SELECT NumRows FROM Runs WHERE RunID = ?", id).Scan(&numRows)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	} else if err != nil {
		return nil, &Error{"load", err}
	}

	rows, err := s.sql.QueryContext(ctx, "SELECT RowNum, Name, Kind, IntVal, FloatVal, StrVal FROM Cells WHERE RunID = ? ORDER BY RowNum, Pos", id)
	if err != nil {
		return nil, &Error{"load", err}
	}
	defer rows.Close()

	recs := make([]*benchlog.Record, numRows)
	for rows.Next() {
		var (
			row  int
			name string
			kind int
			i    sql.NullInt64
			f    sql.NullFloat64
			str  sql.NullString
		)
		if err := rows.Scan(&row, &name, &kind, &i, &f, &str); err != nil {
			return nil, &Error{"load", err}
		}
		if row < 0 || row >= numRows {
			return nil, &Error{"load", fmt.Errorf("run %d: cell in row %d of %d", id, row, numRows)}
		}
		if recs[row] == nil {
			recs[row] = benchlog.NewRecord()
		}
		v, err := cellValue(benchlog.Kind(kind), i, f, str)
		if err != nil {
			return nil, &Error{"load", fmt.Errorf("run %d row %d %q: %w", id, row, name, err)}
		}
		recs[row].Set(name, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{"load", err}
	}

	var b rectable.Builder
	for i, rec := range recs {
		if rec == nil {
			return nil, &Error{"load", fmt.Errorf("run %d: row %d has no cells", id, i)}
		}
		if err := b.Add(rec); err != nil {
			return nil, &Error{"load", err}
		}
	}
	return b.Done(), nil
}

func cellValue(kind benchlog.Kind, i sql.NullInt64, f sql.NullFloat64, s sql.NullString) (benchlog.Value, error) {
	switch kind {
	case benchlog.Null:
		return benchlog.Value{}, nil
	case benchlog.Int:
		return benchlog.IntValue(i.Int64), nil
	case benchlog.Float:
		if !f.Valid {
			return benchlog.FloatValue(math.NaN()), nil
		}
		return benchlog.FloatValue(f.Float64), nil
	case benchlog.String:
		return benchlog.StringValue(s.String), nil
	}
	return benchlog.Value{}, fmt.Errorf("unknown kind %d", kind)
}

// ListRuns returns every saved run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.sql.QueryContext(ctx, "SELECT RunID, Name, NumRows, Created FROM Runs ORDER BY RunID")
	if err != nil {
		return nil, &Error{"list", err}
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Rows, &created); err != nil {
			return nil, &Error{"list", err}
		}
		r.Created = time.Unix(created, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{"list", err}
	}
	return runs, nil
}

// Close closes the database connections, releasing any open resources.
func (s *Store) Close() error {
	if err := s.insertRun.Close(); err != nil {
		return err
	}
	return s.sql.Close()
}
