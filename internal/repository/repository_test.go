package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureRepository_KnownRecordsResolve(t *testing.T) {
	repo := NewFixtureRepository()

	tool, err := repo.Tool("em25-carbide")
	require.NoError(t, err)
	assert.Equal(t, 25.0, tool.DiameterMM)

	mat, err := repo.Material("steel-medium")
	require.NoError(t, err)
	assert.Equal(t, 200.0, mat.HardnessHB)

	mach, err := repo.Machine("mill-3axis-5k")
	require.NoError(t, err)
	assert.Equal(t, 5.5, mach.PowerMaxKW)

	strat, err := repo.Strategy("mill-roughing")
	require.NoError(t, err)
	assert.Equal(t, domain.Milling, strat.Method)
}

func TestFixtureRepository_UnknownIDIsNotFound(t *testing.T) {
	repo := NewFixtureRepository()
	_, err := repo.Tool("does-not-exist")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFixtureRepository_ListAccessorsAreNonEmpty(t *testing.T) {
	repo := NewFixtureRepository()
	assert.NotEmpty(t, repo.ListTools())
	assert.NotEmpty(t, repo.ListMaterials())
	assert.NotEmpty(t, repo.ListMachines())
	assert.NotEmpty(t, repo.ListStrategies())
}

func TestLoadJSONFileRepository_MissingFileYieldsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	repo, err := LoadJSONFileRepository(path)
	require.NoError(t, err)

	_, err = repo.Tool("anything")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestJSONFileRepository_HandEditedMethodTagsCanonicalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	raw := `{
		"strategies": {
			"bore-custom": {"method": "Boring", "min_tool_life_min": 5, "wear_multiplier": 1, "boring_inner_diameter_mm": 20},
			"slot-custom": {"method": "milling", "min_tool_life_min": 2, "wear_multiplier": 1}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	repo, err := LoadJSONFileRepository(path)
	require.NoError(t, err)

	bore, err := repo.Strategy("bore-custom")
	require.NoError(t, err)
	assert.Equal(t, domain.Boring, bore.Method)

	slot, err := repo.Strategy("slot-custom")
	require.NoError(t, err)
	assert.Equal(t, domain.Milling, slot.Method)
}

func TestJSONFileRepository_SaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	repo, err := LoadJSONFileRepository(path)
	require.NoError(t, err)

	repo.PutTool("em25-carbide", domain.ToolParams{DiameterMM: 25, Teeth: 2})
	require.NoError(t, repo.Save(path))

	reloaded, err := LoadJSONFileRepository(path)
	require.NoError(t, err)

	tool, err := reloaded.Tool("em25-carbide")
	require.NoError(t, err)
	assert.Equal(t, 25.0, tool.DiameterMM)
}
