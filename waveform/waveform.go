// Package waveform provides the typed value objects for scope acquisitions:
// analog vectors, interleaved IQ records, and packed digital busses.
package waveform

// Data is a moniker for an empty interface, expected to be a slice of a
// concrete numerical type ([]int8, []int16, []int32, or []float32)
type Data interface{}

// Waveform is one decoded source from one acquisition
type Waveform interface {
	// Source is the lowercase name of the channel or view this came from
	Source() string

	// RecordLength is the number of samples in the record
	RecordLength() int
}

// Analog is a sampled voltage (or other physical quantity) vector
type Analog struct {
	// SourceName holds the channel name
	SourceName string

	// Values is the raw sample buffer, []int8, []int16, or []float32
	Values Data

	// XIncr is the temporal sample spacing in XUnits
	XIncr float64

	// XUnits is the horizontal unit, typically "s"
	XUnits string

	// TriggerIndex is the sample index of the trigger point
	TriggerIndex float64

	// YIncr is the size of one count in YUnits
	YIncr float64

	// YOffset is the vertical offset in YUnits
	YOffset float64

	// YUnits is the vertical unit, typically "V"
	YUnits string
}

// Source implements Waveform
func (a *Analog) Source() string { return a.SourceName }

// RecordLength implements Waveform
func (a *Analog) RecordLength() int { return dataLen(a.Values) }

// Physical computes the data scaled to real units, count*YIncr + YOffset
func (a *Analog) Physical() []float64 {
	switch v := a.Values.(type) {
	case []int8:
		length := len(v)
		ret := make([]float64, length)
		for i := 0; i < length; i++ {
			ret[i] = float64(v[i])*a.YIncr + a.YOffset
		}
		return ret
	case []int16:
		length := len(v)
		ret := make([]float64, length)
		for i := 0; i < length; i++ {
			ret[i] = float64(v[i])*a.YIncr + a.YOffset
		}
		return ret
	case []float32:
		length := len(v)
		ret := make([]float64, length)
		for i := 0; i < length; i++ {
			ret[i] = float64(v[i])*a.YIncr + a.YOffset
		}
		return ret
	default:
		panic("attempt to convert non numerical data to physical units")
	}
}

// XValues returns the time axis, (i - TriggerIndex) * XIncr
func (a *Analog) XValues() []float64 {
	return xAxis(a.RecordLength(), a.TriggerIndex, a.XIncr)
}

// IQMeta bundles the RF metadata carried by IQ records
type IQMeta struct {
	// CenterFrequency in Hz
	CenterFrequency float64

	// FFTLength is the transform length the instrument used
	FFTLength float64

	// RBW is the resolution bandwidth in Hz
	RBW float64

	// Span in Hz
	Span float64

	// WindowKind names the FFT window, e.g. "Blackharris"
	WindowKind string

	// SampleRate is derived from FFTLength, RBW and WindowKind;
	// see SampleRate in this package
	SampleRate float64
}

// SampleRate derives the IQ sample rate from the FFT length, resolution
// bandwidth, span, and window kind.  Unrecognized windows fall back to
// the span.
func SampleRate(fftLength, rbw, span float64, windowKind string) float64 {
	switch windowKind {
	case "Blackharris":
		return fftLength * rbw / 1.9
	case "Flattop2":
		return fftLength * rbw / 3.77
	case "Hanning":
		return fftLength * rbw / 1.44
	case "Hamming":
		return fftLength * rbw / 1.3
	case "Rectangle":
		return fftLength * rbw / 0.89
	case "Kaiserbessel":
		return fftLength * rbw / 2.23
	default:
		return span
	}
}

// IQ is an interleaved in-phase/quadrature record from an RF view
type IQ struct {
	// SourceName holds the view name
	SourceName string

	// Interleaved is the raw I/Q sample buffer, []int8, []int16, or
	// []int32, ordered I0 Q0 I1 Q1 ...
	Interleaved Data

	// XIncr is the temporal sample spacing in XUnits
	XIncr float64

	// XUnits is the horizontal unit
	XUnits string

	// TriggerIndex is the sample index of the trigger point
	TriggerIndex float64

	// IQIncr is the size of one count
	IQIncr float64

	// IQOffset is the vertical offset
	IQOffset float64

	// IQUnits is the vertical unit
	IQUnits string

	// Meta carries the RF metadata for this record
	Meta IQMeta
}

// Source implements Waveform
func (iq *IQ) Source() string { return iq.SourceName }

// RecordLength implements Waveform
func (iq *IQ) RecordLength() int { return dataLen(iq.Interleaved) }

// Digital is a packed digital bus record.  Each element packs one byte of
// bus lines; Bit unpacks a single line.
type Digital struct {
	// SourceName holds the bus name
	SourceName string

	// Values is the packed byte buffer: one byte per sample for a one-byte
	// bus, two consecutive bytes per sample for a two-byte bus
	Values []int8

	// XIncr is the temporal sample spacing in XUnits
	XIncr float64

	// XUnits is the horizontal unit
	XUnits string

	// TriggerIndex is the sample index of the trigger point
	TriggerIndex float64

	// YUnits is the vertical unit
	YUnits string
}

// Source implements Waveform
func (d *Digital) Source() string { return d.SourceName }

// RecordLength implements Waveform.  It counts packed bytes, so a
// two-byte bus reports twice its sample count.
func (d *Digital) RecordLength() int { return len(d.Values) }

// Bit unpacks line n of the bus as 0/1 per sample
func (d *Digital) Bit(n uint) []byte {
	ret := make([]byte, len(d.Values))
	for i, v := range d.Values {
		ret[i] = byte(v) >> n & 1
	}
	return ret
}

// XValues returns the time axis, (i - TriggerIndex) * XIncr
func (d *Digital) XValues() []float64 {
	return xAxis(len(d.Values), d.TriggerIndex, d.XIncr)
}

func dataLen(d Data) int {
	switch v := d.(type) {
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []float32:
		return len(v)
	case nil:
		return 0
	default:
		panic("waveform: data is not a slice of a supported numeric type")
	}
}

func xAxis(n int, trigger, incr float64) []float64 {
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		ret[i] = (float64(i) - trigger) * incr
	}
	return ret
}
