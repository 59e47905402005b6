// Package usql wraps database/sql with per statement timing for the record stores.
package usql

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stat = gocore.NewStat("SQL")

	prometheusSQLDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bountiful",
			Subsystem: "sql",
			Name:      "statement_duration_seconds",
			Help:      "Duration of SQL statements by verb",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"verb"},
	)
)

// DB is a *sql.DB whose Query and Exec calls are timed into gocore stats and a
// prometheus histogram.
type DB struct {
	*sql.DB
	Engine string
}

func Open(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, Engine: driverName}, nil
}

// Wrap instruments an existing connection pool, sqlmock ones included.
func Wrap(db *sql.DB, engine string) *DB {
	return &DB{DB: db, Engine: engine}
}

func track(query string) func() {
	start := gocore.CurrentTime()
	begin := time.Now()

	return func() {
		stat.NewStat(query).AddTime(start)
		prometheusSQLDuration.WithLabelValues(verb(query)).Observe(time.Since(begin).Seconds())
	}
}

// verb is the first keyword of the statement, which keeps the label cardinality low.
func verb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}

	return strings.ToLower(fields[0])
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer track(query)()

	return db.DB.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer track(query)()

	return db.DB.QueryRowContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer track(query)()

	return db.DB.ExecContext(ctx, query, args...)
}

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	defer track(query)()

	return db.DB.Exec(query, args...)
}

// Rebind rewrites ? placeholders to $n for postgres.
func (db *DB) Rebind(query string) string {
	if db.Engine != "postgres" {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
