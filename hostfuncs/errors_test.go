package hostfuncs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/entities"
)

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		resp ErrorResponse
		kind string
		code int
	}{
		{NewValidationError("bad"), "VALIDATION_ERROR", 400},
		{NewNotFoundError("x"), "NOT_FOUND", 404},
		{NewInternalError("oops"), "INTERNAL_ERROR", 500},
		{NewStatusError(entities.StatusItemUnavailable), "STATUS_ERROR", -3},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var decoded ErrorResponse
			require.NoError(t, json.Unmarshal(tt.resp.ToJSON(), &decoded))
			assert.Equal(t, tt.kind, decoded.Error)
			assert.Equal(t, tt.code, decoded.Code)
			assert.NotEmpty(t, decoded.Message)
		})
	}
	assert.Equal(t, "unknown host function: x", NewNotFoundError("x").Message)
	assert.Equal(t, entities.StatusItemUnavailable.String(), NewStatusError(entities.StatusItemUnavailable).Message)
}
