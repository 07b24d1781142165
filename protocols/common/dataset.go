package common

import (
	"bufio"
	"errors"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"go.dedis.ch/onet/v3/log"
	"gonum.org/v1/gonum/mat"
)

// NFeatures is the number of water quality measurements per sample
const NFeatures = 9

// Dataset holds the water samples and their potability labels.
// X has one row of NFeatures measurements per sample, Y one label in {0,1} per row.
// Once loaded the dataset is read-only for the rest of the process, apart from
// the in-place Normalize and Shuffle steps applied before training starts.
type Dataset struct {
	X *mat.Dense
	Y []float64

	// column statistics recorded by Normalize, so that single samples can be
	// normalized the same way for prediction
	means []float64
	stds  []float64
}

// LoadWaterData parses a comma separated file with a header row into a Dataset.
// Each data row must contain NFeatures+1 numeric fields, the measurements
// followed by the binary label. Rows with a different field count or with a
// field that does not parse are skipped.
func LoadWaterData(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, &DataError{Path: path, Err: err}
	}
	defer file.Close()

	var features []float64
	var labels []float64
	dropped := 0
	header := true

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if header {
			header = false
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != NFeatures+1 {
			dropped++
			continue
		}
		row := make([]float64, 0, NFeatures+1)
		ok := true
		for _, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				ok = false
				break
			}
			row = append(row, v)
		}
		if !ok {
			dropped++
			continue
		}
		features = append(features, row[:NFeatures]...)
		labels = append(labels, row[NFeatures])
	}
	if err := scanner.Err(); err != nil {
		return Dataset{}, &DataError{Path: path, Err: err}
	}
	if len(labels) == 0 {
		return Dataset{}, &DataError{Path: path, Err: errors.New("no usable rows")}
	}
	if dropped > 0 {
		log.Lvl2("dropped", dropped, "malformed rows from", path)
	}

	return Dataset{X: mat.NewDense(len(labels), NFeatures, features), Y: labels}, nil
}

// NumSamples returns the number of rows in the dataset
func (d *Dataset) NumSamples() int {
	if d.X == nil {
		return 0
	}
	n, _ := d.X.Dims()
	return n
}

// Shuffle draws one random permutation of the row indices and applies it to
// both X and Y, so the feature/label pairing is preserved
func (d *Dataset) Shuffle(seed int64) {
	n, c := d.X.Dims()
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	shuffled := mat.NewDense(n, c, nil)
	labels := make([]float64, n)
	for i, idx := range perm {
		shuffled.SetRow(i, d.X.RawRowView(idx))
		labels[i] = d.Y[idx]
	}
	d.X = shuffled
	d.Y = labels
}
