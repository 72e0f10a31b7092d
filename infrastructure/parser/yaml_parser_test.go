package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/entities"
)

func TestYamlDispatchParser_Parse(t *testing.T) {
	p := NewYamlDispatchParser()

	reg, err := p.Parse([]byte(`
core: /usr/lib/sensecore/core.so
local_runtime:
  amd64: ./sdk
  arm64: /opt/sdk
`))
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/sensecore/core.so", reg.Core)
	path, ok := reg.LocalRuntimeFor("arm64")
	assert.True(t, ok)
	assert.Equal(t, "/opt/sdk", path)
}

func TestYamlDispatchParser_Empty(t *testing.T) {
	reg, err := NewYamlDispatchParser().Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, &entities.DispatchRegistry{}, reg)
}

func TestYamlDispatchParser_RejectsUnknownKeys(t *testing.T) {
	_, err := NewYamlDispatchParser().Parse([]byte("cor: /typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dispatch file")
}

func TestYamlDispatchParser_Marshal(t *testing.T) {
	p := NewYamlDispatchParser()

	out, err := p.Marshal(&entities.DispatchRegistry{Core: "/c.so"})
	require.NoError(t, err)
	assert.Equal(t, "core: /c.so\n", string(out))

	out, err = p.Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}
