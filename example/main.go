package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	libunlynx "github.com/ldsec/unlynx/lib"
	"go.dedis.ch/onet/v3/log"

	"github.com/hydroml/potanet/protocols/common"
	"github.com/hydroml/potanet/protocols/worker"
	"github.com/hydroml/potanet/utils"
)

// console frontend for the training worker: loads the dataset, starts the
// worker goroutine, sends it parameter requests and consumes its progress
// stream. Closing stdin (in interactive mode) closes the parameter channel,
// which shuts the worker down cleanly.
func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	dataPath := flag.String("data", "", "override the dataset path")
	epochs := flag.Int("epochs", 0, "override the number of epochs")
	hidden := flag.Int("hidden", 0, "override the number of hidden layers")
	neurons := flag.Int("neurons", 0, "override the neurons per hidden layer")
	learnRate := flag.Float64("lr", 0, "override the learning rate")
	seed := flag.Int64("seed", 42, "shuffle seed")
	interactive := flag.Bool("interactive", false, "read further parameter requests from stdin")
	predictSample := flag.String("predict", "", "comma separated raw sample to classify after training")
	timing := flag.Bool("timing", false, "measure run times")
	debug := flag.Int("debug", 1, "debug visibility level")
	flag.Parse()

	log.SetDebugVisible(*debug)
	libunlynx.TIME = *timing

	cfg := common.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = common.LoadConfig(*configPath); err != nil {
			log.Fatal("cannot load config:", err)
		}
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}
	if *epochs > 0 {
		cfg.Defaults.Epochs = *epochs
	}
	if *hidden > 0 {
		cfg.Defaults.HiddenLayers = *hidden
	}
	if *neurons > 0 {
		cfg.Defaults.NeuronsPerLayer = *neurons
	}
	if *learnRate > 0 {
		cfg.Defaults.LearningRate = *learnRate
	}

	data, err := common.LoadWaterData(cfg.DataPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Lvl1("loaded", data.NumSamples(), "water samples from", cfg.DataPath)
	data.Normalize()
	data.Shuffle(*seed)

	ctrl := worker.NewController(data, cfg)
	params := make(chan common.TrainingParameters)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.Run(params); err != nil {
			log.Error("worker stopped:", err)
		}
	}()

	display := make(chan struct{})
	go func() {
		defer close(display)
		var history []float64
		for acc := range ctrl.Progress() {
			history = append(history, acc)
			if cfg.LogInterval > 0 && len(history)%cfg.LogInterval == 0 {
				log.Lvlf1("epoch %d: accuracy %.4f", len(history), acc)
			}
		}
		if cfg.PlotPath != "" && len(history) > 0 {
			if err := utils.AccuracyPlot(history, cfg.PlotPath); err != nil {
				log.Error("cannot write accuracy plot:", err)
			} else {
				log.Lvl1("accuracy history written to", cfg.PlotPath)
			}
		}
	}()

	request := cfg.Defaults
	request.Restart = true
	params <- request

	if *interactive {
		log.Lvl1("enter \"epochs hiddenLayers neuronsPerLayer learningRate\" to restart training, EOF to quit")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			req, err := parseRequest(scanner.Text(), cfg.Defaults)
			if err != nil {
				log.Error(err)
				continue
			}
			params <- req
		}
	}

	close(params)
	wg.Wait()
	<-display

	if *predictSample != "" {
		predict(ctrl, data, *predictSample)
	}
}

// parseRequest turns an input line into a restart request, keeping the
// defaults for anything it cannot improve on
func parseRequest(line string, defaults common.TrainingParameters) (common.TrainingParameters, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return defaults, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	req := defaults
	var err error
	if req.Epochs, err = strconv.Atoi(fields[0]); err != nil {
		return defaults, err
	}
	if req.HiddenLayers, err = strconv.Atoi(fields[1]); err != nil {
		return defaults, err
	}
	if req.NeuronsPerLayer, err = strconv.Atoi(fields[2]); err != nil {
		return defaults, err
	}
	if req.LearningRate, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return defaults, err
	}
	req.Restart = true
	return req, nil
}

func predict(ctrl *worker.Controller, data common.Dataset, raw string) {
	net := ctrl.Trained()
	if net == nil {
		log.Error("no completed training run, nothing to predict with")
		return
	}

	fields := strings.Split(raw, ",")
	sample := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			log.Error("bad sample value:", err)
			return
		}
		sample = append(sample, v)
	}

	normalized, err := data.NormalizeSample(sample)
	if err != nil {
		log.Error(err)
		return
	}
	result, err := net.Predict(normalized)
	if err != nil {
		log.Error(err)
		return
	}

	verdict := "NOT POTABLE"
	if result.Potable {
		verdict = "POTABLE"
	}
	log.Lvlf1("sample is %s (probability %.3f)", verdict, result.Probability)
}
