package waveform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	astipcm "github.com/asticode/go-astitools/pcm"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// Wav audio formats
const (
	wavFormatExtensible = 0xfffe
	wavFormatIEEEFloat  = 3
	wavFormatPCM        = 1
)

// Float samples are brought to 32 bits integers
const floatBitDepth = 32

// DefaultSampleRate is the rate recordings are brought down to before being plotted
const DefaultSampleRate = 22050

var (
	ErrEmptyInput  = errors.New("waveform: empty input")
	ErrInvalidWAV  = errors.New("waveform: invalid wav file")
	ErrNoSamples   = errors.New("waveform: no samples")
	ErrUnsupported = errors.New("waveform: unsupported wav format")
)

// Signal represents a mono signal whose samples are normalized in [-1, 1]
type Signal struct {
	Samples          []float64
	SampleRate       int
	SourceBitDepth   int
	SourceChannels   int
	SourceSampleRate int
}

// Duration returns the signal duration in seconds
func (s *Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// TimeAxis returns evenly spaced timestamps going from 0 to the signal duration, both included
func (s *Signal) TimeAxis() (ts []float64) {
	n := len(s.Samples)
	ts = make([]float64, n)
	if n < 2 {
		return
	}
	step := s.Duration() / float64(n-1)
	for idx := range ts {
		ts[idx] = float64(idx) * step
	}
	ts[n-1] = s.Duration()
	return
}

// Decode decodes wav bytes into a mono signal.
// Recordings whose sample rate is above sampleRate are downsampled, others keep their native rate.
// A sampleRate <= 0 always keeps the native rate.
func Decode(b []byte, sampleRate int) (s *Signal, err error) {
	// No input
	if len(b) == 0 {
		err = ErrEmptyInput
		return
	}

	// Create decoder
	d := wav.NewDecoder(bytes.NewReader(b))
	if !d.IsValidFile() {
		err = ErrInvalidWAV
		return
	}

	// Read samples
	var data []int
	var numChannels, srcSampleRate, bitDepth, srcBitDepth int
	switch d.WavAudioFormat {
	case wavFormatPCM, wavFormatExtensible:
		if data, numChannels, srcSampleRate, bitDepth, err = readPCM(d); err != nil {
			return
		}
		srcBitDepth = bitDepth
	case wavFormatIEEEFloat:
		if data, err = readFloat(d); err != nil {
			return
		}
		numChannels, srcSampleRate, bitDepth, srcBitDepth = int(d.NumChans), int(d.SampleRate), floatBitDepth, int(d.BitDepth)
	default:
		err = errors.Wrapf(ErrUnsupported, "waveform: audio format %d", d.WavAudioFormat)
		return
	}
	if numChannels <= 0 || srcSampleRate <= 0 || bitDepth <= 0 || bitDepth > 32 {
		err = errors.Wrapf(ErrUnsupported, "waveform: %d channel(s), %dHz, %d bits", numChannels, srcSampleRate, srcBitDepth)
		return
	}

	// Mix down
	mono := mixDown(data, numChannels)
	if len(mono) == 0 {
		err = ErrNoSamples
		return
	}

	// Create signal
	s = &Signal{
		SampleRate:       srcSampleRate,
		SourceBitDepth:   srcBitDepth,
		SourceChannels:   numChannels,
		SourceSampleRate: srcSampleRate,
	}

	// Downsample
	if sampleRate > 0 && srcSampleRate > sampleRate {
		if mono, err = resample(mono, srcSampleRate, sampleRate); err != nil {
			err = errors.Wrap(err, "waveform: resampling failed")
			return
		}
		s.SampleRate = sampleRate
	}

	// Normalize
	s.Samples = normalize(mono, bitDepth)
	if len(s.Samples) == 0 {
		err = ErrNoSamples
		return
	}
	return
}

func readPCM(d *wav.Decoder) (data []int, numChannels, sampleRate, bitDepth int, err error) {
	// Read buffer
	buf, err := d.FullPCMBuffer()
	if err != nil {
		err = errors.Wrap(err, "waveform: reading pcm buffer failed")
		return
	}

	// Get format
	data = buf.Data
	numChannels = int(d.NumChans)
	sampleRate = int(d.SampleRate)
	bitDepth = int(d.BitDepth)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			numChannels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			sampleRate = buf.Format.SampleRate
		}
	}
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	return
}

// readFloat reads IEEE float samples and scales them to 32 bits integers
func readFloat(d *wav.Decoder) (data []int, err error) {
	// Check bit depth
	size := int(d.BitDepth) / 8
	if d.BitDepth != 32 && d.BitDepth != 64 {
		err = errors.Wrapf(ErrUnsupported, "waveform: %d bits float", d.BitDepth)
		return
	}

	// Forward to data chunk
	if err = d.FwdToPCM(); err != nil {
		err = errors.Wrap(err, "waveform: forwarding to data chunk failed")
		return
	}

	// Read data chunk
	var b []byte
	if b, err = io.ReadAll(d.PCMChunk); err != nil {
		err = errors.Wrap(err, "waveform: reading data chunk failed")
		return
	}

	// Convert
	scale := float64(math.MaxInt32)
	data = make([]int, len(b)/size)
	for idx := range data {
		var v float64
		if size == 4 {
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[idx*4:])))
		} else {
			v = math.Float64frombits(binary.LittleEndian.Uint64(b[idx*8:]))
		}
		if math.IsNaN(v) {
			v = 0
		}
		data[idx] = int(math.Max(-1, math.Min(1, v)) * scale)
	}
	return
}

// mixDown averages interleaved channels into one
func mixDown(data []int, numChannels int) (o []int) {
	numFrames := len(data) / numChannels
	o = make([]int, numFrames)
	for f := 0; f < numFrames; f++ {
		var sum int64
		for c := 0; c < numChannels; c++ {
			sum += int64(data[f*numChannels+c])
		}
		o[f] = int(sum / int64(numChannels))
	}
	return
}

func resample(samples []int, from, to int) (o []int, err error) {
	// Create converter
	c := astipcm.NewSampleRateConverter(from, to, 1, func(s int) (err error) {
		o = append(o, s)
		return
	})

	// Loop through samples
	for _, s := range samples {
		if err = c.Add(s); err != nil {
			err = errors.Wrap(err, "waveform: adding sample to sample rate converter failed")
			return
		}
	}
	return
}

// normalize scales samples to [-1, 1]. 8 bits wav samples are unsigned.
func normalize(samples []int, bitDepth int) (o []float64) {
	var offset float64
	scale := float64(int64(1) << uint(bitDepth-1))
	if bitDepth == 8 {
		offset = scale
	}
	o = make([]float64, len(samples))
	for idx, s := range samples {
		v := (float64(s) - offset) / scale
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		o[idx] = v
	}
	return
}

func (s *Signal) String() string {
	return fmt.Sprintf("%d samples at %dHz (source: %dHz, %d bits, %d channel(s))", len(s.Samples), s.SampleRate, s.SourceSampleRate, s.SourceBitDepth, s.SourceChannels)
}
