package waveform

import (
	"math"

	"github.com/asticode/go-astichartjs"
	astiptr "github.com/asticode/go-astitools/ptr"
)

// Chart
const (
	ChartColor       = "#ff4b4b"
	ChartLabel       = "Amplitude"
	ChartXAxisLabel  = "Time (s)"
	ChartYAxisLabel  = "Amplitude"
	DefaultMaxPoints = 4000
)

// Point represents an amplitude at a specific time
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Waveform represents a plottable signal
type Waveform struct {
	BitDepth         int     `json:"bit_depth"`
	Channels         int     `json:"channels"`
	Duration         float64 `json:"duration"`
	NumberOfSamples  int     `json:"number_of_samples"`
	Points           []Point `json:"points"`
	SampleRate       int     `json:"sample_rate"`
	SourceSampleRate int     `json:"source_sample_rate"`
}

// Build pairs the signal with its time axis.
// When the signal has more samples than maxPoints, it is split in buckets and only the min and max of each
// bucket are kept so that peaks survive. A maxPoints <= 0 keeps every sample.
func Build(s *Signal, maxPoints int) (w Waveform) {
	// Create waveform
	w = Waveform{
		BitDepth:         s.SourceBitDepth,
		Channels:         s.SourceChannels,
		Duration:         s.Duration(),
		NumberOfSamples:  len(s.Samples),
		SampleRate:       s.SampleRate,
		SourceSampleRate: s.SourceSampleRate,
	}

	// Get time axis
	ts := s.TimeAxis()

	// No need to downsample
	if maxPoints <= 0 || len(s.Samples) <= maxPoints {
		w.Points = make([]Point, len(s.Samples))
		for idx, v := range s.Samples {
			w.Points[idx] = Point{X: ts[idx], Y: v}
		}
		return
	}

	// Only keep the loudest sample
	if maxPoints == 1 {
		peakIdx := 0
		for idx, v := range s.Samples {
			if math.Abs(v) > math.Abs(s.Samples[peakIdx]) {
				peakIdx = idx
			}
		}
		w.Points = []Point{{X: ts[peakIdx], Y: s.Samples[peakIdx]}}
		return
	}

	// Get number of samples per bucket
	numberOfBuckets := maxPoints / 2
	numberOfSamplesPerBucket := (len(s.Samples) + numberOfBuckets - 1) / numberOfBuckets

	// Loop through buckets
	w.Points = make([]Point, 0, maxPoints)
	for start := 0; start < len(s.Samples); start += numberOfSamplesPerBucket {
		// Get end
		end := start + numberOfSamplesPerBucket
		if end > len(s.Samples) {
			end = len(s.Samples)
		}

		// Get min and max
		minIdx, maxIdx := start, start
		for idx := start + 1; idx < end; idx++ {
			if s.Samples[idx] < s.Samples[minIdx] {
				minIdx = idx
			}
			if s.Samples[idx] > s.Samples[maxIdx] {
				maxIdx = idx
			}
		}

		// Append in time order
		first, second := minIdx, maxIdx
		if first > second {
			first, second = second, first
		}
		w.Points = append(w.Points, Point{X: ts[first], Y: s.Samples[first]})
		if second != first {
			w.Points = append(w.Points, Point{X: ts[second], Y: s.Samples[second]})
		}
	}
	return
}

// Chart returns the chart.js representation of the waveform
func Chart(w Waveform) (c astichartjs.Chart) {
	// Create chart
	c = astichartjs.Chart{
		Data: &astichartjs.Data{
			Datasets: []astichartjs.Dataset{{
				BackgroundColor: ChartColor,
				BorderColor:     ChartColor,
				Label:           ChartLabel,
			}},
		},
		Options: &astichartjs.Options{
			Scales: &astichartjs.Scales{
				XAxes: []astichartjs.Axis{
					{
						Position: astichartjs.ChartAxisPositionsBottom,
						ScaleLabel: &astichartjs.ScaleLabel{
							Display:     astiptr.Bool(true),
							LabelString: ChartXAxisLabel,
						},
						Type: astichartjs.ChartAxisTypesLinear,
					},
				},
				YAxes: []astichartjs.Axis{
					{
						ScaleLabel: &astichartjs.ScaleLabel{
							Display:     astiptr.Bool(true),
							LabelString: ChartYAxisLabel,
						},
					},
				},
			},
			Title: &astichartjs.Title{Display: astiptr.Bool(false)},
		},
		Type: astichartjs.ChartTypeLine,
	}

	// Add data
	c.Data.Datasets[0].Data = make([]interface{}, len(w.Points))
	for idx, p := range w.Points {
		c.Data.Datasets[0].Data[idx] = astichartjs.DataPoint{X: p.X, Y: p.Y}
	}
	return
}
