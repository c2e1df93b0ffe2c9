package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecord_Keyword(t *testing.T) {
	tests := []struct {
		name    string
		record  map[string]any
		wantErr bool
		field   string
	}{
		{
			name: "valid",
			record: map[string]any{
				"keyword": "buy eco-friendly shoes", "search_volume": "Medium",
				"competition": "Low", "intent": "Transactional",
				"suggestions": []any{"Easy to rank", "Great for headlines"},
			},
		},
		{
			name: "suggestions optional",
			record: map[string]any{
				"keyword": "trail shoes", "search_volume": "High",
				"competition": "High", "intent": "Brand-related",
			},
		},
		{
			name: "bad volume",
			record: map[string]any{
				"keyword": "x", "search_volume": "Huge",
				"competition": "Low", "intent": "Transactional",
			},
			wantErr: true,
			field:   "search_volume",
		},
		{
			name: "bad intent",
			record: map[string]any{
				"keyword": "x", "search_volume": "Low",
				"competition": "Low", "intent": "Navigational",
			},
			wantErr: true,
			field:   "intent",
		},
		{
			name:    "missing keyword",
			record:  map[string]any{"search_volume": "Low", "competition": "Low", "intent": "Transactional"},
			wantErr: true,
			field:   "(root)",
		},
		{
			name: "unknown suggestion tag",
			record: map[string]any{
				"keyword": "x", "search_volume": "Low", "competition": "Low",
				"intent": "Transactional", "suggestions": []any{"Viral"},
			},
			wantErr: true,
			field:   "suggestions.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(Keyword, tt.record)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, Keyword, ve.Schema)
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateRecord_Audience(t *testing.T) {
	valid := map[string]any{
		"name": "Young Tech Enthusiasts", "age_range": "18-25", "gender": "Mostly male",
		"interests": "AI tools, gaming", "platforms": "Instagram, TikTok",
	}
	assert.NoError(t, ValidateRecord(Audience, valid))

	valid["purchase_intent"] = nil
	assert.NoError(t, ValidateRecord(Audience, valid))

	valid["purchase_intent"] = "High"
	assert.NoError(t, ValidateRecord(Audience, valid))

	invalid := map[string]any{"name": "Only a name", "gender": ""}
	err := ValidateRecord(Audience, invalid)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "audience validation failed:")
}

func TestValidateRecord_UnknownSchema(t *testing.T) {
	err := ValidateRecord("campaign", map[string]any{})
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "campaign", le.Name)
	assert.Error(t, errors.Unwrap(err))
}
