// Package repository implements the read-side store for tool, material,
// machine, and strategy records: an in-memory fixture set seeded with
// realistic catalog entries, and a JSON-file-backed store for user-supplied
// catalogs.
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

// Repository is the read interface internal/optimize depends on. Any
// implementation must return domain.ErrNotFound (wrapped) for an unknown
// key.
type Repository interface {
	Tool(id string) (domain.ToolParams, error)
	Material(id string) (domain.MaterialProps, error)
	Machine(id string) (domain.MachineCaps, error)
	Strategy(id string) (domain.Strategy, error)
}

// catalog is the record set shared by FixtureRepository and
// JSONFileRepository: both wrap the same shape, only the load path differs.
type catalog struct {
	Tools      map[string]domain.ToolParams    `json:"tools"`
	Materials  map[string]domain.MaterialProps `json:"materials"`
	Machines   map[string]domain.MachineCaps   `json:"machines"`
	Strategies map[string]domain.Strategy      `json:"strategies"`
}

func emptyCatalog() catalog {
	return catalog{
		Tools:      map[string]domain.ToolParams{},
		Materials:  map[string]domain.MaterialProps{},
		Machines:   map[string]domain.MachineCaps{},
		Strategies: map[string]domain.Strategy{},
	}
}

// FixtureRepository is an in-memory, map-backed Repository seeded with
// representative catalog entries. It is safe for concurrent reads.
type FixtureRepository struct {
	mu   sync.RWMutex
	data catalog
}

// NewFixtureRepository builds a FixtureRepository seeded with a small
// realistic catalog: carbide milling, drilling, and boring tools, three
// workpiece materials, two machines, and one strategy per method.
func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{data: seedCatalog()}
}

func seedCatalog() catalog {
	c := emptyCatalog()

	c.Tools["em25-carbide"] = domain.ToolParams{
		Type: "end_mill", Material: "carbide", Coating: "TiAlN",
		DiameterMM: 25, Teeth: 2, TipRadiusMM: 0.8,
		ApproachAngDeg: 31, RakeAngDeg: 0, OverhangMM: 75,
		RecommendedSpeedMinRPM: 400, RecommendedSpeedMaxRPM: 4000,
		RecommendedFeedMinMMMin: 60, RecommendedFeedMaxMMMin: 1200,
		RecommendedCutDepthMaxMM: 12, RecommendedCutWidthMaxMM: 20,
		MaxCuttingSpeedMMin: 250, MaxFeedPerToothMM: 0.15, MaxFeedForceN: 1200,
		WearCt: 100000, WearAs: -1.5, WearAf: 0.75,
		StiffnessKNPerUM: 5.0e6, ElasticModulusMPa: 210000,
	}
	c.Tools["dr10-carbide"] = domain.ToolParams{
		Type: "drill", Material: "carbide", Coating: "TiN",
		DiameterMM: 10, Teeth: 2, ApproachAngDeg: 59, OverhangMM: 40,
		RecommendedSpeedMinRPM: 1500, RecommendedSpeedMaxRPM: 6000,
		RecommendedFeedMinMMMin: 50, RecommendedFeedMaxMMMin: 400,
		RecommendedCutDepthMaxMM: 30, RecommendedCutWidthMaxMM: 10,
		MaxCuttingSpeedMMin: 150, MaxFeedPerToothMM: 0.2, MaxFeedForceN: 800,
		WearCt: 100000, WearAs: -1.5, WearAf: 0.75,
		StiffnessKNPerUM: 2.0e6, ElasticModulusMPa: 210000,
	}
	c.Tools["bb25-carbide"] = domain.ToolParams{
		Type: "boring_bar", Material: "carbide", Coating: "TiAlN",
		DiameterMM: 25, Teeth: 1, TipRadiusMM: 0.4, ApproachAngDeg: 45, OverhangMM: 100,
		RecommendedSpeedMinRPM: 400, RecommendedSpeedMaxRPM: 3000,
		RecommendedFeedMinMMMin: 50, RecommendedFeedMaxMMMin: 600,
		RecommendedCutDepthMaxMM: 5, RecommendedCutWidthMaxMM: 5,
		MaxCuttingSpeedMMin: 200, MaxFeedPerToothMM: 0.2, MaxFeedForceN: 800,
		WearCt: 100000, WearAs: -1.5, WearAf: 0.75,
		StiffnessKNPerUM: 1.5e6, ElasticModulusMPa: 210000,
	}

	c.Materials["steel-medium"] = domain.MaterialProps{
		Group: domain.GroupP, HardnessHB: 200, TensileStrengthMPa: 600,
		Machinability: 0.8, CuttingForceCoeffKc11: 2000, KienzleSlopeMc: 0.21,
	}
	c.Materials["steel-hardened"] = domain.MaterialProps{
		Group: domain.GroupP, HardnessHB: 350, TensileStrengthMPa: 1100,
		Machinability: 0.45, CuttingForceCoeffKc11: 2900, KienzleSlopeMc: 0.24,
	}
	c.Materials["aluminum-6061"] = domain.MaterialProps{
		Group: domain.GroupN, HardnessHB: 95, TensileStrengthMPa: 310,
		Machinability: 1.2, CuttingForceCoeffKc11: 700, KienzleSlopeMc: 0.23,
	}

	c.Machines["mill-3axis-5k"] = domain.MachineCaps{
		RPMMax: 8000, PowerMaxKW: 5.5, TorqueMaxNm: 40,
		FeedMaxMMMin: 5000, FeedForceMaxN: 2000, Efficiency: 0.85,
	}
	c.Machines["mill-5axis-15k"] = domain.MachineCaps{
		RPMMax: 15000, PowerMaxKW: 15, TorqueMaxNm: 80,
		FeedMaxMMMin: 10000, FeedForceMaxN: 4000, Efficiency: 0.9,
	}

	c.Strategies["mill-roughing"] = domain.Strategy{
		Method: domain.Milling, MinToolLifeMin: 1, MinBottomRoughnessUM: 3.2,
		NominalCutWidthMM: 8.5, WearMultiplier: 1,
	}
	c.Strategies["drill-standard"] = domain.Strategy{
		Method: domain.Drilling, MinToolLifeMin: 1, WearMultiplier: 1,
	}
	c.Strategies["bore-finish"] = domain.Strategy{
		Method: domain.Boring, MinToolLifeMin: 1, MinSideRoughnessUM: 1.6,
		BoringInnerDiaMM: 22.5, WearMultiplier: 1,
	}

	return c
}

func (f *FixtureRepository) Tool(id string) (domain.ToolParams, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data.Tools[id]
	if !ok {
		return domain.ToolParams{}, fmt.Errorf("tool %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (f *FixtureRepository) Material(id string) (domain.MaterialProps, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data.Materials[id]
	if !ok {
		return domain.MaterialProps{}, fmt.Errorf("material %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (f *FixtureRepository) Machine(id string) (domain.MachineCaps, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data.Machines[id]
	if !ok {
		return domain.MachineCaps{}, fmt.Errorf("machine %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (f *FixtureRepository) Strategy(id string) (domain.Strategy, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data.Strategies[id]
	if !ok {
		return domain.Strategy{}, fmt.Errorf("strategy %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

// ListTools, ListMaterials, ListMachines, and ListStrategies are convenience
// accessors for the CLI and the reporting packages.
func (f *FixtureRepository) ListTools() []string      { return keysOf(f.data.Tools) }
func (f *FixtureRepository) ListMaterials() []string  { return keysOf(f.data.Materials) }
func (f *FixtureRepository) ListMachines() []string   { return keysOf(f.data.Machines) }
func (f *FixtureRepository) ListStrategies() []string { return keysOf(f.data.Strategies) }

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// JSONFileRepository is a Repository backed by a single JSON catalog file
// on disk. Missing files decode to an empty catalog rather than an error.
type JSONFileRepository struct {
	mu   sync.RWMutex
	data catalog
}

// DefaultCatalogPath returns the default location for the JSON catalog
// file, under the user's config directory.
func DefaultCatalogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mga-optimizer", "catalog.json"), nil
}

// LoadJSONFileRepository reads the catalog at path. A missing file yields
// an empty, writable repository rather than an error.
func LoadJSONFileRepository(path string) (*JSONFileRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &JSONFileRepository{data: emptyCatalog()}, nil
		}
		return nil, err
	}

	c := emptyCatalog()
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Tools == nil {
		c.Tools = map[string]domain.ToolParams{}
	}
	if c.Materials == nil {
		c.Materials = map[string]domain.MaterialProps{}
	}
	if c.Machines == nil {
		c.Machines = map[string]domain.MachineCaps{}
	}
	if c.Strategies == nil {
		c.Strategies = map[string]domain.Strategy{}
	}
	return &JSONFileRepository{data: c}, nil
}

// Save writes the catalog to path, creating parent directories as needed.
func (j *JSONFileRepository) Save(path string) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (j *JSONFileRepository) ListTools() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return keysOf(j.data.Tools)
}

func (j *JSONFileRepository) ListMaterials() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return keysOf(j.data.Materials)
}

func (j *JSONFileRepository) ListMachines() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return keysOf(j.data.Machines)
}

func (j *JSONFileRepository) ListStrategies() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return keysOf(j.data.Strategies)
}

func (j *JSONFileRepository) PutTool(id string, t domain.ToolParams) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data.Tools[id] = t
}

func (j *JSONFileRepository) PutMaterial(id string, m domain.MaterialProps) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data.Materials[id] = m
}

func (j *JSONFileRepository) PutMachine(id string, m domain.MachineCaps) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data.Machines[id] = m
}

func (j *JSONFileRepository) PutStrategy(id string, s domain.Strategy) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.data.Strategies[id] = s
}

func (j *JSONFileRepository) Tool(id string) (domain.ToolParams, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.data.Tools[id]
	if !ok {
		return domain.ToolParams{}, fmt.Errorf("tool %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (j *JSONFileRepository) Material(id string) (domain.MaterialProps, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.data.Materials[id]
	if !ok {
		return domain.MaterialProps{}, fmt.Errorf("material %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (j *JSONFileRepository) Machine(id string) (domain.MachineCaps, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.data.Machines[id]
	if !ok {
		return domain.MachineCaps{}, fmt.Errorf("machine %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (j *JSONFileRepository) Strategy(id string) (domain.Strategy, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.data.Strategies[id]
	if !ok {
		return domain.Strategy{}, fmt.Errorf("strategy %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}
