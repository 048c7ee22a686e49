package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"wmgateway/internal/migrations"
	"wmgateway/internal/models"
	"wmgateway/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the durable store for referral signals and keyword rules.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600) // #nosec G304 - path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	enc, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: enc}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveSignal persists a referral signal. The signal's ID is populated from
// the store on success.
func (d *Database) SaveSignal(ctx context.Context, signal *models.Signal) error {
	encryptedConsumer, err := d.encryptor.EncryptIfEnabled(signal.ConsumerPhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to encrypt consumer phone number: %w", err)
	}

	consumerLookup, err := d.encryptor.EncryptForLookupIfEnabled(signal.ConsumerPhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to encrypt consumer lookup: %w", err)
	}

	encryptedPayload, err := d.encryptor.EncryptIfEnabled(signal.RawPayload)
	if err != nil {
		return fmt.Errorf("failed to encrypt raw payload: %w", err)
	}

	result, err := d.db.ExecContext(ctx, InsertSignalQuery,
		signal.BusinessPhoneNumberID,
		encryptedConsumer,
		consumerLookup,
		signal.CtwaClid,
		signal.SourceID,
		encryptedPayload,
		signal.EventTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read signal id: %w", err)
	}
	signal.ID = id

	return nil
}

// ListSignalsByBusinessAndConsumer returns the signals for a business line
// and consumer pair, newest event first.
func (d *Database) ListSignalsByBusinessAndConsumer(ctx context.Context, businessID, consumerID string) ([]models.Signal, error) {
	consumerLookup, err := d.encryptor.EncryptForLookupIfEnabled(consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt consumer lookup: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, SelectSignalsByBusinessAndConsumerQuery, businessID, consumerLookup)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return d.scanSignals(rows)
}

// PageRequest describes a page of the signals listing.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDesc  bool
}

// signalSortColumns whitelists sortable columns; sort input never reaches SQL
// directly.
var signalSortColumns = map[string]string{
	"id":                       "id",
	"business_phone_number_id": "business_phone_number_id",
	"event_timestamp":          "event_timestamp",
	"created_at":               "created_at",
}

// ListSignals returns one page of signals plus the total row count.
func (d *Database) ListSignals(ctx context.Context, req PageRequest) ([]models.Signal, int64, error) {
	column, ok := signalSortColumns[req.SortField]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field: %s", req.SortField)
	}

	direction := "ASC"
	if req.SortDesc {
		direction = "DESC"
	}

	var total int64
	if err := d.db.QueryRowContext(ctx, CountSignalsQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count signals: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, business_phone_number_id, consumer_phone_number,
		       ctwa_clid, source_id, raw_payload, event_timestamp, created_at
		FROM capi_signals
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, column, direction)

	rows, err := d.db.QueryContext(ctx, query, req.Size, req.Page*req.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query signals: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	signals, err := d.scanSignals(rows)
	if err != nil {
		return nil, 0, err
	}

	return signals, total, nil
}

func (d *Database) scanSignals(rows *sql.Rows) ([]models.Signal, error) {
	var signals []models.Signal
	for rows.Next() {
		var signal models.Signal
		var ctwaClid, sourceID, rawPayload sql.NullString

		if err := rows.Scan(
			&signal.ID,
			&signal.BusinessPhoneNumberID,
			&signal.ConsumerPhoneNumber,
			&ctwaClid,
			&sourceID,
			&rawPayload,
			&signal.EventTimestamp,
			&signal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}

		signal.CtwaClid = ctwaClid.String
		signal.SourceID = sourceID.String

		consumer, err := d.encryptor.DecryptIfEnabled(signal.ConsumerPhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt consumer phone number: %w", err)
		}
		signal.ConsumerPhoneNumber = consumer

		payload, err := d.encryptor.DecryptIfEnabled(rawPayload.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt raw payload: %w", err)
		}
		signal.RawPayload = payload

		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signals: %w", err)
	}

	return signals, nil
}

// ListKeywordRules returns every keyword rule in table order.
func (d *Database) ListKeywordRules(ctx context.Context) ([]models.KeywordRule, error) {
	rows, err := d.db.QueryContext(ctx, SelectKeywordRulesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword rules: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var rules []models.KeywordRule
	for rows.Next() {
		rule, err := scanKeywordRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keyword rules: %w", err)
	}

	return rules, nil
}

// GetKeywordRule returns the rule with the given id, or nil when absent.
func (d *Database) GetKeywordRule(ctx context.Context, id int64) (*models.KeywordRule, error) {
	rows, err := d.db.QueryContext(ctx, SelectKeywordRuleByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword rule: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read keyword rule: %w", err)
		}
		return nil, nil
	}

	return scanKeywordRule(rows)
}

// CreateKeywordRule inserts a rule and populates its ID.
func (d *Database) CreateKeywordRule(ctx context.Context, rule *models.KeywordRule) error {
	result, err := d.db.ExecContext(ctx, InsertKeywordRuleQuery,
		rule.Keyword, rule.CapiEvent, rule.CapiEventCustomData)
	if err != nil {
		return fmt.Errorf("failed to create keyword rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read keyword rule id: %w", err)
	}
	rule.ID = id

	return nil
}

// UpdateKeywordRule updates a rule in place. Returns false when no rule with
// that id exists.
func (d *Database) UpdateKeywordRule(ctx context.Context, rule *models.KeywordRule) (bool, error) {
	result, err := d.db.ExecContext(ctx, UpdateKeywordRuleQuery,
		rule.Keyword, rule.CapiEvent, rule.CapiEventCustomData, rule.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update keyword rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// DeleteKeywordRule removes a rule. Returns false when no rule with that id
// exists.
func (d *Database) DeleteKeywordRule(ctx context.Context, id int64) (bool, error) {
	result, err := d.db.ExecContext(ctx, DeleteKeywordRuleQuery, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete keyword rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func scanKeywordRule(rows *sql.Rows) (*models.KeywordRule, error) {
	var rule models.KeywordRule
	var customData sql.NullString

	if err := rows.Scan(
		&rule.ID,
		&rule.Keyword,
		&rule.CapiEvent,
		&customData,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan keyword rule: %w", err)
	}

	if customData.Valid {
		value := customData.String
		rule.CapiEventCustomData = &value
	}

	return &rule, nil
}

// trimSortInput normalizes a user-supplied sort direction token.
func trimSortInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SortDescending reports whether a sort direction token asks for descending
// order. Mirrors the management API convention of "field,desc".
func SortDescending(direction string) bool {
	return strings.Contains(trimSortInput(direction), "desc")
}
