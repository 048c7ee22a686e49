package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "string epoch",
			input:    `"1693180800"`,
			expected: time.Unix(1693180800, 0).UTC(),
		},
		{
			name:     "numeric epoch",
			input:    `1693180800`,
			expected: time.Unix(1693180800, 0).UTC(),
		},
		{
			name:  "null",
			input: `null`,
		},
		{
			name:    "garbage",
			input:   `"not-a-timestamp"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts UnixTime
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ts.Time)
		})
	}
}

func TestUnixTimeMarshalRoundTrip(t *testing.T) {
	original := UnixTime{Time: time.Unix(1693180800, 0).UTC()}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"1693180800"`, string(data))

	var decoded UnixTime
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Time, decoded.Time)
}

func messageWithID(id string) WebhookMessage {
	return WebhookMessage{
		From:      "15551230000",
		ID:        id,
		Timestamp: UnixTime{Time: time.Unix(1693180800, 0).UTC()},
		Type:      MessageTypeText,
		Text:      &WebhookText{Body: "hello"},
	}
}

func TestMessageValues(t *testing.T) {
	envelope := WebhookEnvelope{
		Object: "whatsapp_business_account",
		Entry: []WebhookEntry{
			{
				ID: "entry-1",
				Changes: []WebhookChange{
					{
						Field: FieldMessages,
						Value: WebhookValue{
							Metadata: WebhookMetadata{PhoneNumberID: "biz-1"},
							Messages: []WebhookMessage{messageWithID("m1"), messageWithID("m2")},
						},
					},
					{Field: "statuses"},
				},
			},
			{
				ID: "entry-2",
				Changes: []WebhookChange{
					{
						Field: FieldMessages,
						Value: WebhookValue{
							Metadata: WebhookMetadata{PhoneNumberID: "biz-2"},
							Messages: []WebhookMessage{messageWithID("m3")},
						},
					},
				},
			},
		},
	}

	values := envelope.MessageValues()
	require.Len(t, values, 2)
	assert.Equal(t, "biz-1", values[0].Metadata.PhoneNumberID)
	assert.Equal(t, "biz-2", values[1].Metadata.PhoneNumberID)

	// Message order is preserved per entry and per change
	assert.Equal(t, "m1", values[0].Messages[0].ID)
	assert.Equal(t, "m2", values[0].Messages[1].ID)
	assert.Equal(t, "m3", values[1].Messages[0].ID)

	assert.True(t, envelope.HasMessages())
}

func TestMessageValuesNoMessagesField(t *testing.T) {
	envelope := WebhookEnvelope{
		Object: "whatsapp_business_account",
		Entry: []WebhookEntry{
			{
				ID: "entry-1",
				Changes: []WebhookChange{
					{Field: "statuses"},
					{Field: "account_update"},
				},
			},
		},
	}

	assert.Empty(t, envelope.MessageValues())
	assert.False(t, envelope.HasMessages())
}

func TestHasMessagesEmptyMessageList(t *testing.T) {
	envelope := WebhookEnvelope{
		Entry: []WebhookEntry{
			{
				Changes: []WebhookChange{
					{Field: FieldMessages, Value: WebhookValue{}},
				},
			},
		},
	}

	// A "messages" change with an empty list is not a message payload
	assert.Len(t, envelope.MessageValues(), 1)
	assert.False(t, envelope.HasMessages())
}

func TestDecodeEnvelopePreservesOrder(t *testing.T) {
	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "15551110000", "phone_number_id": "biz-1"},
					"messages": [
						{"from": "15551230000", "id": "m1", "timestamp": "1693180800", "type": "text", "text": {"body": "first"}},
						{"from": "15551230000", "id": "m2", "timestamp": "1693180805", "type": "text", "text": {"body": "second"}}
					]
				}
			}]
		}]
	}`

	var envelope WebhookEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &envelope))

	values := envelope.MessageValues()
	require.Len(t, values, 1)
	require.Len(t, values[0].Messages, 2)
	assert.Equal(t, "m1", values[0].Messages[0].ID)
	assert.Equal(t, "m2", values[0].Messages[1].ID)
	assert.Equal(t, "first", values[0].Messages[0].Text.Body)
	assert.Equal(t, time.Unix(1693180805, 0).UTC(), values[0].Messages[1].Timestamp.Time)
}

func TestReferralStringify(t *testing.T) {
	referral := &WebhookReferral{
		CtwaClid:   "clid-123",
		SourceID:   "ad-456",
		SourceType: "ad",
		Headline:   "Big sale",
	}

	raw, err := referral.Stringify()
	require.NoError(t, err)

	var decoded WebhookReferral
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, *referral, decoded)

	// Empty fields stay out of the serialized payload
	assert.NotContains(t, raw, "video_url")
}
