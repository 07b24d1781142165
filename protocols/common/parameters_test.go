package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validParams() TrainingParameters {
	return TrainingParameters{
		Epochs:          100,
		HiddenLayers:    2,
		NeuronsPerLayer: 8,
		LearningRate:    0.5,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validParams().Validate())

	cases := map[string]func(*TrainingParameters){
		"epochs":            func(p *TrainingParameters) { p.Epochs = 0 },
		"hidden_layers":     func(p *TrainingParameters) { p.HiddenLayers = 0 },
		"neurons_per_layer": func(p *TrainingParameters) { p.NeuronsPerLayer = 0 },
		"learning_rate":     func(p *TrainingParameters) { p.LearningRate = 0 },
		"negative rate":     func(p *TrainingParameters) { p.LearningRate = -0.1 },
	}
	for name, mutate := range cases {
		p := validParams()
		mutate(&p)
		err := p.Validate()
		require.Error(t, err, name)

		var confErr *ConfigurationError
		require.True(t, errors.As(err, &confErr), name)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "potanet.toml")
	content := `
data_path = "testdata/water.csv"
poll_interval_ms = 50
log_interval = 25

[training]
epochs = 500
hidden_layers = 3
neurons_per_layer = 16
learning_rate = 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "testdata/water.csv", cfg.DataPath)
	require.Equal(t, 50*time.Millisecond, cfg.PollInterval())
	require.Equal(t, 25, cfg.LogInterval)
	require.Equal(t, 500, cfg.Defaults.Epochs)
	require.Equal(t, 3, cfg.Defaults.HiddenLayers)
	require.Equal(t, 16, cfg.Defaults.NeuronsPerLayer)
	require.Equal(t, 0.25, cfg.Defaults.LearningRate)

	// absent fields keep their defaults
	require.Equal(t, DefaultConfig().ProgressBuffer, cfg.ProgressBuffer)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
