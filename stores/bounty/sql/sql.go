package sql

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util"
	"github.com/bountiful-platform/bountiful/util/usql"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/jellydator/ttlcache/v3"
)

const defaultRecordCacheTTL = 30 * time.Second

type SQL struct {
	logger ulogger.Logger
	db     *usql.DB
	engine util.SQLEngine
	latest *ttlcache.Cache[chainhash.Hash, *bounty.Entry]
}

func New(logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*SQL, error) {
	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to init sql db", err)
	}

	engine := util.SQLEngine(storeURL.Scheme)

	switch engine {
	case util.Postgres:
		err = createPostgresSchema(db)
	case util.Sqlite, util.SqliteMemory:
		err = createSqliteSchema(db)
	default:
		err = errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ttl := tSettings.Store.RecordCacheTTL
	if ttl <= 0 {
		ttl = defaultRecordCacheTTL
	}

	return newSQL(logger, db, engine, ttl), nil
}

func newSQL(logger ulogger.Logger, db *usql.DB, engine util.SQLEngine, ttl time.Duration) *SQL {
	initPrometheusMetrics()

	return &SQL{
		logger: logger,
		db:     db,
		engine: engine,
		latest: ttlcache.New[chainhash.Hash, *bounty.Entry](
			ttlcache.WithTTL[chainhash.Hash, *bounty.Entry](ttl),
			ttlcache.WithDisableTouchOnHit[chainhash.Hash, *bounty.Entry](),
		),
	}
}

func createPostgresSchema(db *usql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS bounty_boxes (
	    id               BIGSERIAL PRIMARY KEY
	    ,box_id          BYTEA NOT NULL
	    ,token_id        BYTEA NOT NULL
	    ,creation_height BIGINT NOT NULL
	    ,box_json        TEXT NOT NULL
	    ,status          VARCHAR(16) NOT NULL
	    ,spent_by        BYTEA NULL
	    ,inserted_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		return errors.NewStorageError("could not create bounty_boxes table", err)
	}

	return createIndexes(db)
}

func createSqliteSchema(db *usql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS bounty_boxes (
	    id               INTEGER PRIMARY KEY AUTOINCREMENT
	    ,box_id          BLOB NOT NULL
	    ,token_id        BLOB NOT NULL
	    ,creation_height BIGINT NOT NULL
	    ,box_json        TEXT NOT NULL
	    ,status          VARCHAR(16) NOT NULL
	    ,spent_by        BLOB NULL
	    ,inserted_at     TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		return errors.NewStorageError("could not create bounty_boxes table", err)
	}

	return createIndexes(db)
}

func createIndexes(db *usql.DB) error {
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_bounty_boxes_box_id ON bounty_boxes (box_id);`); err != nil {
		return errors.NewStorageError("could not create ux_bounty_boxes_box_id index", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_bounty_boxes_token_id ON bounty_boxes (token_id, id);`); err != nil {
		return errors.NewStorageError("could not create idx_bounty_boxes_token_id index", err)
	}

	return nil
}

func (s *SQL) Health(ctx context.Context, _ bool) (int, string, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return http.StatusServiceUnavailable, "SQL Store unavailable", errors.NewStorageUnavailableError("ping failed", err)
	}

	return http.StatusOK, "SQL Store available", nil
}

func (s *SQL) Put(ctx context.Context, box *model.Box, status model.Status) error {
	defer observe("put")()

	tokenID, err := bounty.TokenID(box)
	if err != nil {
		return err
	}

	data, err := model.MarshalBox(box)
	if err != nil {
		return errors.NewEncodingError("box %s", box.BoxID, err)
	}

	q := s.db.Rebind(`
		INSERT INTO bounty_boxes (box_id, token_id, creation_height, box_json, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (box_id) DO NOTHING
	`)

	if _, err = s.db.ExecContext(ctx, q, box.BoxID[:], tokenID[:], box.CreationHeight, string(data), string(status)); err != nil {
		return errors.NewStorageError("could not insert box %s", box.BoxID, err)
	}

	s.latest.Delete(tokenID)

	return nil
}

func (s *SQL) Latest(ctx context.Context, tokenID chainhash.Hash) (*bounty.Entry, error) {
	defer observe("latest")()

	if item := s.latest.Get(tokenID); item != nil {
		return copyEntry(item.Value()), nil
	}

	q := s.db.Rebind(`
		SELECT box_json, status, spent_by
		FROM bounty_boxes
		WHERE token_id = ?
		ORDER BY id DESC
		LIMIT 1
	`)

	entry, err := scanEntry(s.db.QueryRowContext(ctx, q, tokenID[:]))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewRecordNotFoundError("bounty %s not found", tokenID)
		}

		return nil, errors.NewStorageError("could not read bounty %s", tokenID, err)
	}

	s.latest.Set(tokenID, entry, ttlcache.DefaultTTL)

	return copyEntry(entry), nil
}

func (s *SQL) History(ctx context.Context, tokenID chainhash.Hash) ([]*bounty.Entry, error) {
	defer observe("history")()

	q := s.db.Rebind(`
		SELECT box_json, status, spent_by
		FROM bounty_boxes
		WHERE token_id = ?
		ORDER BY id ASC
	`)

	rows, err := s.db.QueryContext(ctx, q, tokenID[:])
	if err != nil {
		return nil, errors.NewStorageError("could not read history of bounty %s", tokenID, err)
	}

	defer rows.Close()

	var history []*bounty.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewStorageError("could not read history of bounty %s", tokenID, err)
		}

		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewStorageError("could not read history of bounty %s", tokenID, err)
	}

	if len(history) == 0 {
		return nil, errors.NewRecordNotFoundError("bounty %s not found", tokenID)
	}

	return history, nil
}

func (s *SQL) MarkSpent(ctx context.Context, boxID, spentBy chainhash.Hash) error {
	defer observe("mark_spent")()

	q := s.db.Rebind(`
		UPDATE bounty_boxes
		SET spent_by = ?
		WHERE box_id = ? AND spent_by IS NULL
	`)

	res, err := s.db.ExecContext(ctx, q, spentBy[:], boxID[:])
	if err != nil {
		return errors.NewStorageError("could not mark box %s spent", boxID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError("could not mark box %s spent", boxID, err)
	}

	var tokenID []byte

	if err = s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT token_id FROM bounty_boxes WHERE box_id = ?`), boxID[:]).Scan(&tokenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewRecordNotFoundError("box %s not found", boxID)
		}

		return errors.NewStorageError("could not read box %s", boxID, err)
	}

	if id, err := chainhash.NewHash(tokenID); err == nil {
		s.latest.Delete(*id)
	}

	if affected == 0 {
		return errors.NewStaleRecordError("box %s already spent", boxID)
	}

	return nil
}

func (s *SQL) SetStatus(ctx context.Context, tokenID chainhash.Hash, status model.Status) error {
	defer observe("set_status")()

	q := s.db.Rebind(`
		UPDATE bounty_boxes
		SET status = ?
		WHERE id = (SELECT MAX(id) FROM bounty_boxes WHERE token_id = ?)
	`)

	res, err := s.db.ExecContext(ctx, q, string(status), tokenID[:])
	if err != nil {
		return errors.NewStorageError("could not set status of bounty %s", tokenID, err)
	}

	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return errors.NewRecordNotFoundError("bounty %s not found", tokenID)
	}

	s.latest.Delete(tokenID)

	return nil
}

func (s *SQL) Close() error {
	s.latest.DeleteAll()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*bounty.Entry, error) {
	var (
		data    string
		status  string
		spentBy []byte
	)

	if err := row.Scan(&data, &status, &spentBy); err != nil {
		return nil, err
	}

	box, err := model.UnmarshalBox([]byte(data))
	if err != nil {
		return nil, err
	}

	entry := &bounty.Entry{Box: box, Status: model.Status(status)}

	if len(spentBy) > 0 {
		if entry.SpentBy, err = chainhash.NewHash(spentBy); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

func copyEntry(e *bounty.Entry) *bounty.Entry {
	c := *e
	if e.SpentBy != nil {
		spentBy := *e.SpentBy
		c.SpentBy = &spentBy
	}

	return &c
}
