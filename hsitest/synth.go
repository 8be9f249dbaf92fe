package hsitest

import (
	"encoding/binary"
	"math"

	"github.com/tektronix/tekhsi-go/hsipb"
)

// repeats is how many signal cycles fit in one record
const repeats = 10

// synthesize builds one source's header and raw little-endian payload
// for the acquisition with the given id
func synthesize(name string, spec *SourceSpec, id int64) *source {
	h := hsipb.WaveformHeader{
		Sourcename:          name,
		Sourcewidth:         int32(spec.Width),
		Noofsamples:         int64(spec.Length),
		Dataid:              id,
		Hasdata:             spec.HasData,
		Pairtype:            1,
		Verticaloffset:      0,
		Verticalunits:       "V",
		Horizontalspacing:   xincr(spec),
		HorizontalUnits:     "S",
		Horizontalzeroindex: float64(spec.Length) / 2,
	}

	var raw []byte
	switch spec.Kind {
	case Analog:
		switch spec.Width {
		case 1:
			h.Wfmtype = 1
		case 2:
			h.Wfmtype = 2
		default:
			h.Wfmtype = 3
		}
		h.Verticalspacing = analogYIncr(spec)
		raw = sineBytes(spec, h.Verticalspacing)
	case IQ:
		if spec.Width == 1 {
			h.Wfmtype = 6
		} else {
			h.Wfmtype = 7
		}
		h.Verticalspacing = analogYIncr(spec)
		h.IqWindowType = spec.WindowKind
		h.IqFftLength = spec.FFTLength
		h.IqRbw = spec.RBW
		h.IqSpan = spec.Span
		h.IqCenterFrequency = spec.CenterFrequency
		raw = iqBytes(spec)
	case Digital:
		if spec.Width == 2 {
			h.Wfmtype = 5
		} else {
			h.Wfmtype = 4
		}
		h.Verticalspacing = 1
		raw = digitalBytes(spec)
	}
	return &source{header: h, raw: raw}
}

func xincr(spec *SourceSpec) float64 {
	return repeats / (spec.Frequency * float64(spec.Length))
}

// analogYIncr matches the count scaling the instrument uses per byte
// width; float records store volts directly
func analogYIncr(spec *SourceSpec) float64 {
	switch spec.Width {
	case 1:
		return spec.Amplitude / 230
	case 2:
		return spec.Amplitude / 58000
	default:
		return 1
	}
}

func sineBytes(spec *SourceSpec, yincr float64) []byte {
	dx := xincr(spec)
	out := make([]byte, spec.Length*spec.Width)
	for i := 0; i < spec.Length; i++ {
		v := spec.Amplitude * math.Sin(2*math.Pi*spec.Frequency*float64(i)*dx)
		putSample(out, i, spec.Width, v/yincr)
	}
	return out
}

func iqBytes(spec *SourceSpec) []byte {
	dx := xincr(spec)
	yincr := analogYIncr(spec)
	out := make([]byte, spec.Length*spec.Width)
	for i := 0; i < spec.Length; i++ {
		phase := 2 * math.Pi * spec.Frequency * float64(i/2) * dx
		var v float64
		if i%2 == 0 {
			v = spec.Amplitude * math.Cos(phase)
		} else {
			v = spec.Amplitude * math.Sin(phase)
		}
		putIQSample(out, i, spec.Width, v/yincr)
	}
	return out
}

func digitalBytes(spec *SourceSpec) []byte {
	out := make([]byte, spec.Length*spec.Width)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func putSample(out []byte, i, width int, v float64) {
	switch width {
	case 1:
		out[i] = byte(int8(v))
	case 2:
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v)))
	default:
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(v)))
	}
}

func putIQSample(out []byte, i, width int, v float64) {
	switch width {
	case 1:
		out[i] = byte(int8(v))
	case 2:
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v)))
	default:
		binary.LittleEndian.PutUint32(out[4*i:], uint32(int32(v)))
	}
}
