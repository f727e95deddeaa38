package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/querymatrix/internal/matrix"
)

// DefaultWorkers is the worker count used when neither the command line
// nor the config file sets one.
const DefaultWorkers = 16

type Config struct {
	Workers  int           `yaml:"workers"`
	Timeout  time.Duration `yaml:"timeout"`
	Layout   Layout        `yaml:"layout"`
	Programs []Program     `yaml:"programs"`
	Backend  Backend       `yaml:"backend"`
	EnvFile  string        `yaml:"env_file"`
	Results  Results       `yaml:"results"`
	Metrics  Metrics       `yaml:"metrics"`
	Log      Log           `yaml:"log"`
}

type Layout struct {
	Datasets     string `yaml:"datasets"`
	DatasetExt   string `yaml:"dataset_ext"`
	SingleSource string `yaml:"single_source"`
	Pair         string `yaml:"pair"`
}

type Program struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	OutputDir string `yaml:"output_dir"`
}

type Backend struct {
	Kind        string  `yaml:"kind"`
	Image       string  `yaml:"image"`
	CPULimit    float64 `yaml:"cpu_limit"`
	MemoryLimit int64   `yaml:"memory_limit"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Metrics struct {
	Textfile string `yaml:"textfile"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the stock configuration: the three shortest-path
// programs over inputs/, ss/ and p2p/ in the working directory.
func Default() *Config {
	cfg := &Config{
		Programs: []Program{
			{Path: "./dijkstra"},
			{Path: "./dial"},
			{Path: "./radixheap"},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Programs) == 0 {
		cfg.Programs = Default().Programs
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Layout.Datasets == "" {
		cfg.Layout.Datasets = "inputs"
	}
	if cfg.Layout.DatasetExt == "" {
		cfg.Layout.DatasetExt = ".gr"
	}
	if cfg.Layout.SingleSource == "" {
		cfg.Layout.SingleSource = "ss"
	}
	if cfg.Layout.Pair == "" {
		cfg.Layout.Pair = "p2p"
	}
	for i := range cfg.Programs {
		p := &cfg.Programs[i]
		if p.Name == "" && p.Path != "" {
			p.Name = matrix.ProgramName(p.Path)
		}
	}
	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = "local"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "runs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate reports the first configuration problem found.
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	seen := map[string]bool{}
	for i, p := range cfg.Programs {
		if p.Path == "" {
			return fmt.Errorf("program %d: path is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("program %q listed twice", p.Name)
		}
		seen[p.Name] = true
	}
	switch cfg.Backend.Kind {
	case "local":
	case "docker":
		if cfg.Backend.Image == "" {
			return fmt.Errorf("backend docker: image is required")
		}
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
	}
	return nil
}

// MatrixPrograms converts the configured programs for the job builder.
func (cfg *Config) MatrixPrograms() []matrix.Program {
	out := make([]matrix.Program, len(cfg.Programs))
	for i, p := range cfg.Programs {
		out[i] = matrix.Program{Name: p.Name, Path: p.Path, OutputDir: p.OutputDir}
	}
	return out
}

// MatrixLayout converts the configured layout for the dataset scanner.
func (cfg *Config) MatrixLayout() matrix.Layout {
	return matrix.Layout{
		DatasetDir:   cfg.Layout.Datasets,
		DatasetExt:   cfg.Layout.DatasetExt,
		SingleSource: cfg.Layout.SingleSource,
		Pair:         cfg.Layout.Pair,
	}
}
