package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(nil)
}

func TestNewParser_DefaultLogger(t *testing.T) {
	p := NewParser(nil)
	require.NotNil(t, p.logger)
}

func TestWholeNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"2.0", 2, false},
		{"-1.000", -1, false},
		{"0e0", 0, false},
		{"1.5", 0, true},
		{"1e300", 0, true},
		{"NaN", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := wholeNumber(json.Number(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
