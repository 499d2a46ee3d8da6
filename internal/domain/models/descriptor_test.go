package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Descriptor
		wantOK bool
	}{
		{
			name:   "serial and name",
			raw:    "SN-ACU-002 - Army Combat Uniform (OCP) Large-Long",
			want:   Descriptor{Serial: "SN-ACU-002", Name: "Army Combat Uniform (OCP) Large-Long"},
			wantOK: true,
		},
		{
			name:   "surrounding whitespace is trimmed",
			raw:    "  SN-001   -   Helmet  ",
			want:   Descriptor{Serial: "SN-001", Name: "Helmet"},
			wantOK: true,
		},
		{
			name:   "only the first separator splits",
			raw:    "SN-002 - Plate Carrier - Medium",
			want:   Descriptor{Serial: "SN-002", Name: "Plate Carrier - Medium"},
			wantOK: true,
		},
		{
			name:   "no separator uses whole string",
			raw:    "  SN-003 ",
			want:   Descriptor{Serial: "SN-003", Name: "SN-003"},
			wantOK: true,
		},
		{
			name:   "hyphen without spaces is not a separator",
			raw:    "SN-004-Radio",
			want:   Descriptor{Serial: "SN-004-Radio", Name: "SN-004-Radio"},
			wantOK: true,
		},
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   \t"},
		{name: "missing serial before separator", raw: " - Helmet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDescriptor(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
