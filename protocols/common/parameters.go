package common

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// staged learning rate schedule, keyed to the elapsed epoch fraction
const (
	WarmupFraction = 0.10
	DecayFraction  = 0.50
	MidRateFactor  = 0.5
	LateRateFactor = 0.1
)

// TrainingParameters is one training request. It is a value type: every
// channel message is an independent copy, never shared between the frontend
// and the training worker.
type TrainingParameters struct {
	Epochs          int     `toml:"epochs"`
	HiddenLayers    int     `toml:"hidden_layers"`
	NeuronsPerLayer int     `toml:"neurons_per_layer"`
	LearningRate    float64 `toml:"learning_rate"`
	Restart         bool    `toml:"-"`
}

// Validate rejects hyperparameters a run cannot start with
func (p TrainingParameters) Validate() error {
	if p.Epochs <= 0 {
		return &ConfigurationError{Field: "epochs", Reason: "must be positive"}
	}
	if p.HiddenLayers <= 0 {
		return &ConfigurationError{Field: "hidden_layers", Reason: "must be positive"}
	}
	if p.NeuronsPerLayer <= 0 {
		return &ConfigurationError{Field: "neurons_per_layer", Reason: "must be positive"}
	}
	if p.LearningRate <= 0 {
		return &ConfigurationError{Field: "learning_rate", Reason: "must be positive"}
	}
	return nil
}

// Config groups the process settings: where the dataset lives, the default
// training request and the worker tuning knobs.
type Config struct {
	DataPath       string             `toml:"data_path"`
	PlotPath       string             `toml:"plot_path"`
	PollIntervalMS int                `toml:"poll_interval_ms"`
	ProgressBuffer int                `toml:"progress_buffer"`
	LogInterval    int                `toml:"log_interval"`
	Defaults       TrainingParameters `toml:"training"`
}

func DefaultConfig() Config {
	return Config{
		DataPath:       "data/water_potability.csv",
		PollIntervalMS: 100,
		ProgressBuffer: 64,
		LogInterval:    10,
		Defaults: TrainingParameters{
			Epochs:          2000,
			HiddenLayers:    2,
			NeuronsPerLayer: 32,
			LearningRate:    0.5,
		},
	}
}

// LoadConfig reads a TOML config file over the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PollInterval is how long the worker waits on the parameter channel before
// checking again while idle
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
