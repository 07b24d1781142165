package common

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// floor on the column standard deviation, guards constant columns
const stdFloor = 1e-8

// Normalize applies a z-score to every feature column independently, using
// the population standard deviation. The column statistics are recorded on
// the dataset for NormalizeSample.
func (d *Dataset) Normalize() {
	n, c := d.X.Dims()
	d.means = make([]float64, c)
	d.stds = make([]float64, c)

	col := make([]float64, n)
	for j := 0; j < c; j++ {
		mat.Col(col, j, d.X)
		mean, _ := stats.Mean(col)
		std, _ := stats.StandardDeviationPopulation(col)
		if std < stdFloor {
			std = stdFloor
		}
		d.means[j] = mean
		d.stds[j] = std
		for i := 0; i < n; i++ {
			d.X.Set(i, j, (d.X.At(i, j)-mean)/std)
		}
	}
}

// NormalizeSample applies the statistics recorded by Normalize to a single raw
// sample. Before Normalize has run the sample is returned unchanged.
func (d *Dataset) NormalizeSample(sample []float64) ([]float64, error) {
	if len(sample) != NFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", NFeatures, len(sample))
	}
	out := make([]float64, len(sample))
	copy(out, sample)
	if d.means == nil {
		return out, nil
	}
	for j := range out {
		out[j] = (out[j] - d.means[j]) / d.stds[j]
	}
	return out, nil
}
