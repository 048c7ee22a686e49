package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestParseCustomData(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected *CustomData
		wantErr  bool
	}{
		{
			name:     "value and currency",
			raw:      strPtr(`{"value":"12.5","currency":"USD"}`),
			expected: &CustomData{Value: 12.5, Currency: "USD"},
		},
		{
			name: "nil custom data",
			raw:  nil,
		},
		{
			name: "empty custom data",
			raw:  strPtr(""),
		},
		{
			name:    "invalid json",
			raw:     strPtr(`{"value":`),
			wantErr: true,
		},
		{
			name:    "non-numeric value",
			raw:     strPtr(`{"value":"abc","currency":"USD"}`),
			wantErr: true,
		},
		{
			name:    "missing value",
			raw:     strPtr(`{"currency":"USD"}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := KeywordRule{Keyword: "sale", CapiEvent: "Purchase", CapiEventCustomData: tt.raw}

			data, err := rule.ParseCustomData()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}
