package worker

import (
	"sync"
	"time"

	libunlynx "github.com/ldsec/unlynx/lib"
	"go.dedis.ch/onet/v3/log"

	"github.com/hydroml/potanet/protocols/centralized"
	"github.com/hydroml/potanet/protocols/common"
)

// Controller drives training runs on behalf of an observer. It alternates
// between two states: idle, polling the parameter channel, and running,
// executing one full training pass to completion. A run is never preempted;
// requests arriving while running are consumed only after the run ends.
type Controller struct {
	data     common.Dataset
	current  common.TrainingParameters
	progress chan float64
	poll     time.Duration

	mu   sync.Mutex
	last *centralized.Network
}

// NewController prepares a controller over an already loaded, preprocessed
// dataset. The progress channel is buffered with cfg.ProgressBuffer values.
func NewController(data common.Dataset, cfg common.Config) *Controller {
	return &Controller{
		data:     data,
		current:  cfg.Defaults,
		progress: make(chan float64, cfg.ProgressBuffer),
		poll:     cfg.PollInterval(),
	}
}

// Progress returns the stream of per-epoch accuracy values. Within a run the
// values arrive in epoch order, and a later run's values always follow the
// prior run's, since only one run executes at a time. The channel is closed
// when Run returns.
func (c *Controller) Progress() <-chan float64 {
	return c.progress
}

// Trained returns the network of the most recently completed run, or nil.
// The worker never touches a network again once its run has ended.
func (c *Controller) Trained() *centralized.Network {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Run consumes parameter requests until params is closed, which is the sole
// shutdown signal. A request with Restart set starts one full training run
// from freshly initialized weights; a request without it only updates the
// current parameter record. Run-level errors are logged and the controller
// returns to idle. The progress channel is closed on return.
func (c *Controller) Run(params <-chan common.TrainingParameters) error {
	defer close(c.progress)
	if params == nil {
		return &common.ChannelError{Op: "receive"}
	}

	for {
		select {
		case p, ok := <-params:
			if !ok {
				log.Lvl1("parameter channel closed, stopping training worker")
				return nil
			}
			c.current = p
			if !p.Restart {
				log.Lvl2("updated training parameters without restart")
				continue
			}
			if err := c.train(c.current); err != nil {
				log.Error("training run failed:", err)
			}
		case <-time.After(c.poll):
			// no request within the polling window
		}
	}
}

func (c *Controller) train(p common.TrainingParameters) error {
	net, err := centralized.NewNetwork(common.NFeatures, p)
	if err != nil {
		return err
	}

	log.Lvlf1("starting training run: %d epochs, %d hidden layers, %d neurons per layer, learning rate %g",
		p.Epochs, p.HiddenLayers, p.NeuronsPerLayer, p.LearningRate)

	runTimer := libunlynx.StartTimer("TrainingRun")
	err = net.Train(c.data, p, c.emit)
	libunlynx.EndTimer(runTimer)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.last = net
	c.mu.Unlock()
	return nil
}

// emit forwards one accuracy value without ever blocking the training loop:
// when the buffer is full the oldest value is dropped in favour of the new one
func (c *Controller) emit(epoch int, accuracy float64) {
	select {
	case c.progress <- accuracy:
		return
	default:
	}
	select {
	case <-c.progress:
	default:
	}
	select {
	case c.progress <- accuracy:
	default:
	}
}
