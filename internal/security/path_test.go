package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative path", path: "config.json"},
		{name: "absolute path", path: "/var/lib/wmgateway/signals.db"},
		{name: "nested relative path", path: "data/signals.db"},
		{name: "empty path", path: "", wantErr: true},
		{name: "traversal", path: "../../../etc/passwd", wantErr: true},
		{name: "embedded traversal", path: "data/../../secret", wantErr: true},
		{name: "nul byte", path: "config.json\x00.txt", wantErr: true},
		{name: "dot segments that clean away", path: "./data/./signals.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilePathWithBase(t *testing.T) {
	assert.NoError(t, ValidateFilePathWithBase("signals.db", "/var/lib/wmgateway"))
	assert.Error(t, ValidateFilePathWithBase("../outside", "/var/lib/wmgateway"))
}
