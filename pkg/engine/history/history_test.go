package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/DrSkyle/knapsack-ga/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "output.txt")

	log, err := CreateGenerationLog(path)
	require.NoError(t, err)
	for _, v := range []int{4, 5, 5, 8} {
		require.NoError(t, log.Record(v))
	}
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4\n5\n5\n8\n", string(data))
	assert.Equal(t, path, log.Path())
}

func TestGenerationLog_CreateFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := CreateGenerationLog(filepath.Join(blocker, "output.txt"))
	assert.Error(t, err)
}

func record(id string, best int) RunRecord {
	return RunRecord{
		ID:        id,
		Timestamp: 1700000000,
		Input:     "instance.txt",
		Capacity:  10,
		Params:    config.DefaultEvolutionConfig(),
		BestValue: best,
	}
}

func testBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	c := NewClient(b)

	empty, err := c.LoadWindow(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Append(ctx, record(id, i)))
	}

	window, err := c.LoadWindow(ctx, 2)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "b", window[0].ID)
	assert.Equal(t, "c", window[1].ID)
	assert.Equal(t, config.DefaultEvolutionConfig(), window[1].Params)

	all, err := c.LoadWindow(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileBackend(t *testing.T) {
	testBackend(t, NewLocalBackend(filepath.Join(t.TempDir(), "ledger.jsonl")))
}

func TestBlobBackend(t *testing.T) {
	store := storage.NewLocalStore(t.TempDir())
	testBackend(t, NewBlobBackend(store, "ledger/runs.jsonl"))
}

func TestFileBackend_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"ok\"}\nnot json\n"), 0644))

	records, err := NewLocalBackend(path).Load(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].ID)
}

func gens(bests ...int) []evolution.Stats {
	out := make([]evolution.Stats, len(bests))
	for i, b := range bests {
		out[i] = evolution.Stats{Generation: i, Best: b, Feasible: 1, Mean: float64(b), StdDev: 1}
	}
	return out
}

func TestAnalyzeConvergence(t *testing.T) {
	res := AnalyzeConvergence(gens(2, 4, 4, 8, 8), 0)
	assert.Equal(t, 8, res.FinalBest)
	assert.Equal(t, 3, res.LastImprovement)
	assert.Equal(t, 1, res.Stagnation)
	assert.InDelta(t, 1.5, res.Velocity, 1e-9)
	assert.Empty(t, res.Alerts)

	windowed := AnalyzeConvergence(gens(2, 4, 4, 8, 8), 2)
	assert.InDelta(t, 2.0, windowed.Velocity, 1e-9)
}

func TestAnalyzeConvergence_Plateau(t *testing.T) {
	res := AnalyzeConvergence(gens(5, 5, 5, 5, 5), 0)
	assert.Equal(t, 0, res.LastImprovement)
	assert.Equal(t, 4, res.Stagnation)
	assert.Zero(t, res.Velocity)
	require.NotEmpty(t, res.Alerts)
	assert.Contains(t, res.Alerts[0], "PLATEAU")
}

func TestAnalyzeConvergence_Infeasible(t *testing.T) {
	g := gens(0, 0)
	g[1].Feasible = 0
	g[1].StdDev = 0
	g[1].Mean = 0
	res := AnalyzeConvergence(g, 0)
	assert.Contains(t, res.Alerts, "[WARNING] INFEASIBLE: every individual of the final generation exceeds capacity")
}

func TestAnalyzeConvergence_Empty(t *testing.T) {
	assert.Equal(t, ConvergenceResult{}, AnalyzeConvergence(nil, 3))
}
