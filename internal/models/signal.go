package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Signal records that a referral-tagged inbound message arrived from a
// consumer to a business line. Signals are immutable once written; the event
// timestamp is the message's own timestamp, not ingestion time.
type Signal struct {
	ID                    int64     `json:"id" db:"id"`
	BusinessPhoneNumberID string    `json:"businessPhoneNumberId" db:"business_phone_number_id"`
	ConsumerPhoneNumber   string    `json:"consumerPhoneNumber" db:"consumer_phone_number"`
	CtwaClid              string    `json:"ctwaClid,omitempty" db:"ctwa_clid"`
	SourceID              string    `json:"sourceId,omitempty" db:"source_id"`
	RawPayload            string    `json:"rawPayload,omitempty" db:"raw_payload"`
	EventTimestamp        time.Time `json:"eventTimestamp" db:"event_timestamp"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
}

// KeywordRule maps a keyword substring to a CAPI conversion event. Rules are
// managed through the keywords CRUD endpoints; the pipeline only reads them.
type KeywordRule struct {
	ID                  int64     `json:"id" db:"id"`
	Keyword             string    `json:"keyword" db:"keyword"`
	CapiEvent           string    `json:"capiEvent" db:"capi_event"`
	CapiEventCustomData *string   `json:"capiEventCustomData,omitempty" db:"capi_event_custom_data"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomData is the typed form of a rule's optional custom data, decoded once
// at the boundary instead of carrying untyped JSON through the pipeline.
type CustomData struct {
	Value    float64
	Currency string
}

// ParseCustomData decodes a rule's custom data payload, a flat JSON object
// with string values, e.g. {"value":"12.5","currency":"USD"}. Returns nil
// when the rule carries no custom data.
func (k *KeywordRule) ParseCustomData() (*CustomData, error) {
	if k.CapiEventCustomData == nil || *k.CapiEventCustomData == "" {
		return nil, nil
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(*k.CapiEventCustomData), &raw); err != nil {
		return nil, fmt.Errorf("invalid custom data for keyword %q: %w", k.Keyword, err)
	}

	value, err := strconv.ParseFloat(raw["value"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid custom data value for keyword %q: %w", k.Keyword, err)
	}

	return &CustomData{
		Value:    value,
		Currency: raw["currency"],
	}, nil
}
