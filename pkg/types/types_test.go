package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/updateinfo-db/pkg/types"
)

func TestNewSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Severity
		wantErr string
	}{
		{
			name:  "canonical",
			input: "Important",
			want:  types.SeverityImportant,
		},
		{
			name:  "lower case",
			input: "critical",
			want:  types.SeverityCritical,
		},
		{
			name:  "surrounding space",
			input: " Low\n",
			want:  types.SeverityLow,
		},
		{
			name:    "unknown is rejected",
			input:   "Unknown",
			wantErr: "unknown severity",
		},
		{
			name:    "garbage",
			input:   "Severe",
			wantErr: `unknown severity: "Severe"`,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: "unknown severity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.NewSeverity(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverity_Order(t *testing.T) {
	assert.Less(t, int(types.SeverityLow), int(types.SeverityModerate))
	assert.Less(t, int(types.SeverityModerate), int(types.SeverityImportant))
	assert.Less(t, int(types.SeverityImportant), int(types.SeverityCritical))
	assert.Negative(t, types.CompareSeverityString("Critical", "Low"))
	assert.Positive(t, types.CompareSeverityString("Low", "Moderate"))
}

func TestSeverity_Text(t *testing.T) {
	b, err := types.SeverityModerate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Moderate", string(b))

	var s types.Severity
	require.NoError(t, s.UnmarshalText([]byte("Unknown")))
	assert.Equal(t, types.SeverityUnknown, s)

	require.NoError(t, s.UnmarshalText(b))
	assert.Equal(t, types.SeverityModerate, s)

	assert.Error(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "Unknown", types.Severity(42).String())
}
