package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hydroml/potanet/protocols/common"
)

func testDataset() common.Dataset {
	x := mat.NewDense(4, common.NFeatures, nil)
	for j := 0; j < common.NFeatures; j++ {
		x.Set(2, j, 1)
		x.Set(3, j, 1)
	}
	return common.Dataset{X: x, Y: []float64{0, 0, 1, 1}}
}

func testConfig() common.Config {
	cfg := common.DefaultConfig()
	cfg.PollIntervalMS = 5
	cfg.ProgressBuffer = 64
	return cfg
}

func testParams(epochs int) common.TrainingParameters {
	return common.TrainingParameters{
		Epochs:          epochs,
		HiddenLayers:    1,
		NeuronsPerLayer: 4,
		LearningRate:    0.5,
		Restart:         true,
	}
}

// run starts the controller and hands back the channel its error arrives on
func run(c *Controller, params chan common.TrainingParameters) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Run(params)
	}()
	return done
}

func drain(t *testing.T, progress <-chan float64) []float64 {
	t.Helper()
	var values []float64
	for v := range progress {
		values = append(values, v)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
	return values
}

func TestRestartCycle(t *testing.T) {
	c := NewController(testDataset(), testConfig())
	params := make(chan common.TrainingParameters)
	done := run(c, params)

	params <- testParams(5)
	params <- testParams(5)
	close(params)

	require.NoError(t, <-done)

	// one accuracy per epoch for each of the two runs, nothing dropped
	values := drain(t, c.Progress())
	require.Len(t, values, 10)

	require.NotNil(t, c.Trained())
}

func TestShutdownIdle(t *testing.T) {
	c := NewController(testDataset(), testConfig())
	params := make(chan common.TrainingParameters)
	done := run(c, params)

	// let the controller reach its polling loop before closing
	time.Sleep(20 * time.Millisecond)
	close(params)

	require.NoError(t, <-done)
	require.Empty(t, drain(t, c.Progress()))
	require.Nil(t, c.Trained())
}

func TestInvalidParametersDoNotStopTheWorker(t *testing.T) {
	c := NewController(testDataset(), testConfig())
	params := make(chan common.TrainingParameters)
	done := run(c, params)

	bad := testParams(5)
	bad.HiddenLayers = 0
	params <- bad
	params <- testParams(3)
	close(params)

	require.NoError(t, <-done)

	// only the valid run reported progress
	values := drain(t, c.Progress())
	require.Len(t, values, 3)
}

func TestUpdateWithoutRestart(t *testing.T) {
	c := NewController(testDataset(), testConfig())
	params := make(chan common.TrainingParameters)
	done := run(c, params)

	p := testParams(5)
	p.Restart = false
	params <- p
	close(params)

	require.NoError(t, <-done)
	require.Empty(t, drain(t, c.Progress()))
	require.Nil(t, c.Trained())
}

func TestNilParameterChannel(t *testing.T) {
	c := NewController(testDataset(), testConfig())
	err := c.Run(nil)
	require.Error(t, err)

	var chanErr *common.ChannelError
	require.True(t, errors.As(err, &chanErr))

	// the progress channel is closed even on this path
	_, open := <-c.Progress()
	require.False(t, open)
}

func TestEmitDropsOldestWhenFull(t *testing.T) {
	cfg := testConfig()
	cfg.ProgressBuffer = 2
	c := NewController(testDataset(), cfg)

	c.emit(0, 0.1)
	c.emit(1, 0.2)
	c.emit(2, 0.3)

	require.Equal(t, 0.2, <-c.Progress())
	require.Equal(t, 0.3, <-c.Progress())
}
