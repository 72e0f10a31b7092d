//go:build !wasip1

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/errors"
)

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type ServerConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}
	type Config struct {
		Server  ServerConfig `json:"server"`
		Timeout int          `json:"timeout"`
	}

	schema, err := GenerateSchema(Config{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))
	assert.Contains(t, string(schema), "server")
	assert.Contains(t, string(schema), "host")
	assert.Contains(t, string(schema), "timeout")
}

func TestDispatchSchema(t *testing.T) {
	schema, err := DispatchSchema()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))

	properties, ok := decoded["properties"].(map[string]interface{})
	require.True(t, ok, "properties should be a map")
	assert.Contains(t, properties, "core")
	assert.Contains(t, properties, "local_runtime")
	assert.Equal(t, false, decoded["additionalProperties"])
	assert.NotContains(t, decoded, "required", "every key is optional")
}

func TestFor(t *testing.T) {
	assert.Equal(t, []string{"dispatch", "load-report"}, Names())

	report, err := For("load-report")
	require.NoError(t, err)
	assert.Contains(t, string(report), "attempts")
	assert.Contains(t, string(report), "root_id")

	_, err = For("manifest")
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "manifest", se.Type)
}
