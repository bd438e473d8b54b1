package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/driplog/backend/internal/advisor"
	"github.com/wonny/driplog/backend/internal/contracts"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("STATS_SOURCE", "none")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("CATALOG_PATH", "")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRankJSON(t *testing.T) {
	out, err := execute(t, "rank", "--roast", "フレンチ", "--process", "natural", "--json")
	require.NoError(t, err)

	var result contracts.RecommendResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.Primary)
	assert.Len(t, result.Ranked, 10)
	assert.Equal(t, 1, result.Ranked[0].Rank)
}

func TestRankWithAveragesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "averages.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"device":"カリタウェーブ","avg":10}]`), 0o644))

	out, err := execute(t, "rank", "--averages", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Primary  : カリタウェーブ")
	assert.Contains(t, out, "1. カリタウェーブ")

	_, err = execute(t, "rank", "--averages", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDeriveJSON(t *testing.T) {
	out, err := execute(t, "derive",
		"--device", "フレンチプレス",
		"--roast", "フレンチ",
		"--process", "ナチュラル",
		"--json")
	require.NoError(t, err)

	var d contracts.Derivation
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.NotEmpty(t, d.Trace)
	assert.Equal(t, "roast-dark", d.Trace[0].RuleID)
	assert.Equal(t, contracts.PourImmersion, d.Recipe.Pour.Style)
}

func TestDeriveText(t *testing.T) {
	out, err := execute(t, "derive", "--device", "ハリオV60", "--roast", "浅煎り", "--aging", "2", "--temp", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline: medium-fine, 90 °C")
	assert.Contains(t, out, "roast-light")
	assert.Contains(t, out, "aging-fresh")
}

func TestDeriveErrors(t *testing.T) {
	_, err := execute(t, "derive", "--roast", "浅煎り")
	assert.Error(t, err)

	_, err = execute(t, "derive", "--device", "ハリオV60", "--grind", "turkish")
	assert.Error(t, err)
}

func TestAdviseJSON(t *testing.T) {
	out, err := execute(t, "advise", "--roast", "フレンチ", "--process", "ナチュラル", "--aging", "10", "--json")
	require.NoError(t, err)

	var advice advisor.Advice
	require.NoError(t, json.Unmarshal([]byte(out), &advice))
	assert.NotEmpty(t, advice.RunID)
	assert.Len(t, advice.CatalogHash, 64)
	assert.Equal(t, advice.Ranking.Primary, advice.Device)
	require.NotNil(t, advice.Context.AgingDays)
	assert.Equal(t, 10, *advice.Context.AgingDays)
}

func TestAdviseBeanNotFound(t *testing.T) {
	_, err := execute(t, "advise", "--bean", "42")
	assert.Error(t, err)
}

func TestAdviseBaselineNeedsDevice(t *testing.T) {
	_, err := execute(t, "advise", "--roast", "フレンチ", "--temp", "85")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--device")
}

func TestCatalogCommands(t *testing.T) {
	out, err := execute(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ハリオV60")
	assert.Contains(t, out, "エスプレッソマシン")

	out, err = execute(t, "catalog", "show", "ハリオV60")
	require.NoError(t, err)
	assert.Contains(t, out, "conical-fast")
	assert.Contains(t, out, "Limits")

	_, err = execute(t, "catalog", "show", "ケメックス")
	assert.Error(t, err)

	out, err = execute(t, "catalog", "hash")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 64)

	out, err = execute(t, "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded: driplog_brew_v3")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("meta:\n  catalog_id: x\n  colour: red\n"), 0o644))
	_, err = execute(t, "catalog", "validate", bad)
	assert.Error(t, err)
}

func TestLimits(t *testing.T) {
	out, err := execute(t, "limits", "ケメックス")
	require.NoError(t, err)
	assert.Contains(t, out, "generic limits shown")

	out, err = execute(t, "limits", "ハリオV60")
	require.NoError(t, err)
	assert.NotContains(t, out, "generic limits shown")
}

func TestWarmRequiresCache(t *testing.T) {
	_, err := execute(t, "warm", "--once")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enabled")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	// 전각 문자는 폭 2
	assert.Equal(t, "ハリオ  ", padRight("ハリオ", 8))
	assert.Equal(t, "ハリオV60", padRight("ハリオV60", 4))
	assert.Equal(t, "ハリ…", truncate("ハリオV60", 5))
}
