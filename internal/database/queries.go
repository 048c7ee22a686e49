package database

// Signal queries
const (
	InsertSignalQuery = `
		INSERT INTO capi_signals (
			business_phone_number_id, consumer_phone_number, consumer_phone_number_hash,
			ctwa_clid, source_id, raw_payload, event_timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	SelectSignalsByBusinessAndConsumerQuery = `
		SELECT id, business_phone_number_id, consumer_phone_number,
		       ctwa_clid, source_id, raw_payload, event_timestamp, created_at
		FROM capi_signals
		WHERE business_phone_number_id = ? AND consumer_phone_number_hash = ?
		ORDER BY event_timestamp DESC
	`

	CountSignalsQuery = `SELECT COUNT(*) FROM capi_signals`
)

// Keyword rule queries
const (
	SelectKeywordRulesQuery = `
		SELECT id, keyword, capi_event, capi_event_custom_data, created_at, updated_at
		FROM keywords
		ORDER BY id
	`

	SelectKeywordRuleByIDQuery = `
		SELECT id, keyword, capi_event, capi_event_custom_data, created_at, updated_at
		FROM keywords
		WHERE id = ?
	`

	InsertKeywordRuleQuery = `
		INSERT INTO keywords (keyword, capi_event, capi_event_custom_data)
		VALUES (?, ?, ?)
	`

	UpdateKeywordRuleQuery = `
		UPDATE keywords
		SET keyword = ?, capi_event = ?, capi_event_custom_data = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	DeleteKeywordRuleQuery = `DELETE FROM keywords WHERE id = ?`
)
