// Package store provides the SQLite-backed persistence gateway: metadata and
// statistic writes from the stats extractor, normalized social records from
// the classifier, and the watermark lookup driving incremental pagination.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"twscraper/pkg/logger"
	"twscraper/pkg/models"
	"twscraper/pkg/scraper"
)

// DB wraps the SQLite connection.
type DB struct {
	conn   *sql.DB
	sq     sq.StatementBuilderType
	logger logger.Logger
}

var _ scraper.Gateway = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string, log logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	db := &DB{
		conn:   conn,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: log,
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		account_code TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (account_code, kind)
	);
	CREATE TABLE IF NOT EXISTS statistics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_code TEXT NOT NULL,
		stat_type TEXT NOT NULL,
		subtype TEXT NOT NULL,
		value INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS social_records (
		account_code TEXT NOT NULL,
		platform TEXT NOT NULL,
		subtype TEXT NOT NULL,
		source_id TEXT NOT NULL,
		external_id TEXT NOT NULL,
		posted_at INTEGER NOT NULL,
		text TEXT,
		image TEXT,
		likes INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (platform, external_id)
	);
	CREATE INDEX IF NOT EXISTS idx_social_cutoff
		ON social_records (account_code, platform, subtype, posted_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// AddMetadata upserts one metadata value for an account.
func (db *DB) AddMetadata(accountCode, kind, value string) error {
	query, args, err := db.sq.
		Insert("metadata").
		Columns("account_code", "kind", "value", "updated_at").
		Values(accountCode, kind, value, time.Now().Unix()).
		Suffix("ON CONFLICT (account_code, kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build metadata upsert: %w", err)
	}

	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

// AddStatistic appends one statistic sample for an account.
func (db *DB) AddStatistic(accountCode, statType, subtype string, value int64) error {
	query, args, err := db.sq.
		Insert("statistics").
		Columns("account_code", "stat_type", "subtype", "value", "recorded_at").
		Values(accountCode, statType, subtype, value, time.Now().Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build statistic insert: %w", err)
	}

	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("insert statistic: %w", err)
	}
	return nil
}

// AddSocial upserts one normalized social record. The upsert key is the
// record's external ID, which makes re-scraping an already recorded window
// idempotent across sessions.
func (db *DB) AddSocial(rec *models.SocialRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query, args, err := db.sq.
		Insert("social_records").
		Columns("account_code", "platform", "subtype", "source_id", "external_id",
			"posted_at", "text", "image", "likes", "payload", "updated_at").
		Values(rec.AccountCode, rec.Platform, rec.Subtype, rec.SourceID, rec.ExternalID,
			rec.PostedAt.Unix(), rec.Text, rec.Image, rec.Likes, string(payload), time.Now().Unix()).
		Suffix(`ON CONFLICT (platform, external_id) DO UPDATE SET
			text = excluded.text,
			image = excluded.image,
			likes = excluded.likes,
			payload = excluded.payload,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build social upsert: %w", err)
	}

	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("upsert social record: %w", err)
	}
	return nil
}

// Cutoff returns the watermark for an account: the instant of the most
// recent record already stored under the given platform and kind. A deep
// pass gets the zero instant, so pagination runs until the page cap. An
// account never scraped before also gets the zero instant.
func (db *DB) Cutoff(accountCode, platform, kind string, deep bool) (time.Time, error) {
	if deep {
		return time.Time{}, nil
	}

	query, args, err := db.sq.
		Select("MAX(posted_at)").
		From("social_records").
		Where(sq.Eq{
			"account_code": accountCode,
			"platform":     platform,
			"subtype":      kind,
		}).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build cutoff query: %w", err)
	}

	var max sql.NullInt64
	if err := db.conn.QueryRow(query, args...).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("query cutoff: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return time.Unix(max.Int64, 0).UTC(), nil
}
