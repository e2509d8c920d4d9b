package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFilesSortedAndPaired(t *testing.T) {
	names, err := upFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	assert.IsIncreasing(t, names)
	for _, n := range names {
		down := n[:len(n)-len(".up.sql")] + ".down.sql"
		_, err := files.Open(down)
		assert.NoError(t, err, "missing %s", down)
	}
}
