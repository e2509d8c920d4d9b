package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/auth"
)

const testSecret = "test-secret-at-least-32-bytes-long"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	out, err := execute(t, "token", "--operator", "bob", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(strings.TrimSpace(out), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Operator)
}

func TestTokenCommand_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		args   []string
	}{
		{name: "missing operator flag", secret: testSecret, args: []string{"token"}},
		{name: "blank operator", secret: testSecret, args: []string{"token", "--operator", "  "}},
		{name: "non-positive ttl", secret: testSecret, args: []string{"token", "--operator", "bob", "--ttl", "0s"}},
		{name: "secret too short", secret: "short", args: []string{"token", "--operator", "bob"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tc.secret)
			out, err := execute(t, tc.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestSeedChartDryRun_DefaultChart(t *testing.T) {
	out, err := execute(t, "seed-chart", "--dry-run")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[0], "CODE")
	assert.Contains(t, out, "1110")
	assert.Contains(t, out, "Cash")
}

func TestSeedChartDryRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	data := `name: tiny
accounts:
  - code: "1"
    name: Assets
    type: asset
    children:
      - code: "11"
        name: Till
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := execute(t, "seed-chart", "--dry-run", "--file", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Regexp(t, `^1\s+Assets\s+asset\s+true$`, strings.TrimSpace(lines[1]))
	assert.Regexp(t, `^11\s+Till\s+asset\s+1\s+false$`, strings.TrimSpace(lines[2]))
}

func TestSeedChartDryRun_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: [\n"), 0o600))

	_, err := execute(t, "seed-chart", "--dry-run", "--file", path)
	assert.Error(t, err)
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", testSecret)

	_, err := execute(t, "migrate")
	assert.Error(t, err)
}
