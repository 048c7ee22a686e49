package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldMessages is the change field WhatsApp uses for inbound message
// notifications. Other change fields (statuses, template updates, ...) are
// ignored by the gateway.
const FieldMessages = "messages"

// MessageTypeText is the only message type the gateway inspects.
const MessageTypeText = "text"

// UnixTime decodes the epoch-seconds timestamps the WhatsApp webhook carries.
// The platform sends them as JSON strings; numbers are accepted too.
type UnixTime struct {
	time.Time
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid epoch timestamp %q: %w", s, err)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`"0"`), nil
	}
	return []byte(`"` + strconv.FormatInt(t.Unix(), 10) + `"`), nil
}

// WebhookEnvelope is the outer payload of a WhatsApp Business Platform
// webhook delivery.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue is the field-specific payload of a change record. For
// "messages" changes it carries the business line metadata and the inbound
// messages themselves.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Messages         []WebhookMessage `json:"messages"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookMessage struct {
	From      string           `json:"from"`
	ID        string           `json:"id"`
	Timestamp UnixTime         `json:"timestamp"`
	Type      string           `json:"type"`
	Text      *WebhookText     `json:"text,omitempty"`
	Referral  *WebhookReferral `json:"referral,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

// WebhookReferral is the click-to-WhatsApp ad context attached to the first
// message of a conversation that started from an ad.
type WebhookReferral struct {
	CtwaClid     string `json:"ctwa_clid,omitempty"`
	SourceID     string `json:"source_id,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Headline     string `json:"headline,omitempty"`
	Body         string `json:"body,omitempty"`
	MediaType    string `json:"media_type,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Stringify serializes the referral for durable storage as the signal's raw
// payload.
func (r *WebhookReferral) Stringify() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to serialize referral: %w", err)
	}
	return string(data), nil
}

// MessageValues returns the payloads of all change records whose field is
// "messages", preserving entry and change order. An envelope without such
// changes yields an empty slice; callers treat that as a successful no-op.
func (e *WebhookEnvelope) MessageValues() []WebhookValue {
	var values []WebhookValue
	for _, entry := range e.Entry {
		for _, change := range entry.Changes {
			if change.Field == FieldMessages {
				values = append(values, change.Value)
			}
		}
	}
	return values
}

// HasMessages reports whether at least one "messages" change carries a
// non-empty message list.
func (e *WebhookEnvelope) HasMessages() bool {
	for _, value := range e.MessageValues() {
		if len(value.Messages) > 0 {
			return true
		}
	}
	return false
}
