package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed subset.yaml
var subsetYAML []byte

type Config struct {
	Pipeline PipelineConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Subset   SubsetConfig
}

type PipelineConfig struct {
	URL string // defaults to http://localhost:8000
}

type DatasetConfig struct {
	BasePath  string // root directory of the image dataset
	PairsFile string // pairs file overriding the per-dataset default
	CachePath string // embedding cache file overriding the per-dataset default
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL (optional, file cache is used when empty)
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the HNSW index (optional, if empty index is rebuilt on startup)
}

// SubsetConfig describes a fixed embedding subset together with the
// quantization scale it was tuned for.
type SubsetConfig struct {
	Scale   float32 `yaml:"scale"`
	Indices []int   `yaml:"indices"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var subset SubsetConfig
	if err := yaml.Unmarshal(subsetYAML, &subset); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded subset.yaml: " + err.Error())
	}

	return &Config{
		Pipeline: PipelineConfig{
			URL: os.Getenv("PIPELINE_URL"),
		},
		Dataset: DatasetConfig{
			BasePath:  os.Getenv("DATASET_BASE_PATH"),
			PairsFile: os.Getenv("DATASET_PAIRS_FILE"),
			CachePath: os.Getenv("EMBEDDING_CACHE_PATH"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Subset: subset,
	}
}

// LoadSubsetFile reads a fixed subset definition from a YAML file. It is
// used to evaluate subsets other than the embedded default.
func LoadSubsetFile(path string) (SubsetConfig, error) {
	var subset SubsetConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return subset, fmt.Errorf("failed to read subset file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &subset); err != nil {
		return subset, fmt.Errorf("failed to parse subset file %s: %w", path, err)
	}
	if len(subset.Indices) == 0 {
		return subset, fmt.Errorf("subset file %s contains no indices", path)
	}
	return subset, nil
}
