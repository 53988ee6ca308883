package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func yamlUnmarshal(data []byte, out *identityFile) error {
	return yaml.Unmarshal(data, out)
}

func mustYAML(t *testing.T, file identityFile) []byte {
	t.Helper()
	data, err := yaml.Marshal(&file)
	require.NoError(t, err)
	return data
}
