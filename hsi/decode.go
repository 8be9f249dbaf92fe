package hsi

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tektronix/tekhsi-go/hsipb"
	"github.com/tektronix/tekhsi-go/waveform"
)

// Waveform type tags used by the instrument
const (
	wfmtypeAnalog8   = 1
	wfmtypeAnalog16  = 2
	wfmtypeAnalog32  = 3
	wfmtypeDigital8  = 4
	wfmtypeDigital16 = 5
	wfmtypeIQ8       = 6
	wfmtypeIQ16      = 7
)

var errStopped = errors.New("hsi: stopped mid-stream")

// readWaveform streams the payload for one validated header and decodes
// it into a typed waveform.  The returned int is the payload size in
// bytes.  Decode faults wrap ErrDecodeMismatch; anything else is a
// transport fault, or errStopped when the session stops mid-stream.
func (s *Session) readWaveform(h *hsipb.WaveformHeader) (waveform.Waveform, int, error) {
	buf, err := newSampleBuf(h)
	if err != nil {
		return nil, 0, err
	}

	req := &hsipb.WaveformRequest{Sourcename: h.Sourcename, Chunksize: s.chunksize}
	stream, err := s.native.GetWaveform(context.Background(), req)
	if err != nil {
		return nil, 0, fmt.Errorf("hsi: get waveform %s: %w", h.Sourcename, err)
	}
	for {
		if s.stopping() {
			return nil, 0, errStopped
		}
		reply, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("hsi: waveform stream %s: %w", h.Sourcename, err)
		}
		if reply.Headerordata == nil || reply.Headerordata.Chunk == nil {
			continue
		}
		if err := buf.consume(reply.Headerordata.Chunk.Data); err != nil {
			return nil, 0, err
		}
	}
	if err := buf.complete(); err != nil {
		return nil, 0, err
	}
	return assemble(h, buf), buf.total * buf.width, nil
}

// sampleBuf is a preallocated native-typed sample buffer filled from
// little-endian wire chunks.  It is allocated once at header-known
// length and never grows.
type sampleBuf struct {
	width   int
	total   int
	written int

	i8  []int8
	i16 []int16
	i32 []int32
	f32 []float32
}

func newSampleBuf(h *hsipb.WaveformHeader) (*sampleBuf, error) {
	n := int(h.Noofsamples)
	b := &sampleBuf{width: int(h.Sourcewidth), total: n}
	switch h.Wfmtype {
	case wfmtypeAnalog8, wfmtypeAnalog16, wfmtypeAnalog32:
		switch h.Sourcewidth {
		case 1:
			b.i8 = make([]int8, n)
		case 2:
			b.i16 = make([]int16, n)
		case 4:
			b.f32 = make([]float32, n)
		}
	case wfmtypeDigital8, wfmtypeDigital16:
		// digital records are conveyed as raw packed bytes; a two-byte
		// bus carries twice the bytes, still one element per byte
		b.i8 = make([]int8, n*int(h.Sourcewidth))
		b.total = n * int(h.Sourcewidth)
		b.width = 1
	case wfmtypeIQ8, wfmtypeIQ16:
		switch h.Sourcewidth {
		case 1:
			b.i8 = make([]int8, n)
		case 2:
			b.i16 = make([]int16, n)
		case 4:
			b.i32 = make([]int32, n)
		}
	default:
		// an unrecognized family only loses this source, not the acq
		return nil, fmt.Errorf("%w: unknown waveform type %d for %s", ErrDecodeMismatch, h.Wfmtype, h.Sourcename)
	}
	return b, nil
}

// consume views chunk as native elements and writes them into the next
// unwritten region of the buffer
func (b *sampleBuf) consume(chunk []byte) error {
	if len(chunk)%b.width != 0 {
		return fmt.Errorf("%w: chunk of %d bytes with width %d", ErrDecodeMismatch, len(chunk), b.width)
	}
	elems := len(chunk) / b.width
	if b.written+elems > b.total {
		return fmt.Errorf("%w: %d elements overflow record of %d", ErrDecodeMismatch, b.written+elems, b.total)
	}
	switch {
	case b.i8 != nil:
		for i := 0; i < elems; i++ {
			b.i8[b.written+i] = int8(chunk[i])
		}
	case b.i16 != nil:
		for i := 0; i < elems; i++ {
			b.i16[b.written+i] = int16(binary.LittleEndian.Uint16(chunk[2*i:]))
		}
	case b.i32 != nil:
		for i := 0; i < elems; i++ {
			b.i32[b.written+i] = int32(binary.LittleEndian.Uint32(chunk[4*i:]))
		}
	case b.f32 != nil:
		for i := 0; i < elems; i++ {
			b.f32[b.written+i] = math.Float32frombits(binary.LittleEndian.Uint32(chunk[4*i:]))
		}
	}
	b.written += elems
	return nil
}

func (b *sampleBuf) complete() error {
	if b.written != b.total {
		return fmt.Errorf("%w: stream ended at %d of %d samples", ErrDecodeMismatch, b.written, b.total)
	}
	return nil
}

// data returns the filled buffer as a Data value
func (b *sampleBuf) data() waveform.Data {
	switch {
	case b.i8 != nil:
		return b.i8
	case b.i16 != nil:
		return b.i16
	case b.i32 != nil:
		return b.i32
	default:
		return b.f32
	}
}

// assemble wraps the filled buffer in the typed waveform for the
// header's family, copying the axis metadata verbatim
func assemble(h *hsipb.WaveformHeader, buf *sampleBuf) waveform.Waveform {
	switch h.Wfmtype {
	case wfmtypeDigital8, wfmtypeDigital16:
		return &waveform.Digital{
			SourceName:   h.Sourcename,
			Values:       buf.i8,
			XIncr:        h.Horizontalspacing,
			XUnits:       h.HorizontalUnits,
			TriggerIndex: h.Horizontalzeroindex,
			YUnits:       h.Verticalunits,
		}
	case wfmtypeIQ8, wfmtypeIQ16:
		return &waveform.IQ{
			SourceName:   h.Sourcename,
			Interleaved:  buf.data(),
			XIncr:        h.Horizontalspacing,
			XUnits:       h.HorizontalUnits,
			TriggerIndex: h.Horizontalzeroindex,
			IQIncr:       h.Verticalspacing,
			IQOffset:     h.Verticaloffset,
			IQUnits:      h.Verticalunits,
			Meta: waveform.IQMeta{
				CenterFrequency: h.IqCenterFrequency,
				FFTLength:       h.IqFftLength,
				RBW:             h.IqRbw,
				Span:            h.IqSpan,
				WindowKind:      h.IqWindowType,
				SampleRate:      waveform.SampleRate(h.IqFftLength, h.IqRbw, h.IqSpan, h.IqWindowType),
			},
		}
	default:
		return &waveform.Analog{
			SourceName:   h.Sourcename,
			Values:       buf.data(),
			XIncr:        h.Horizontalspacing,
			XUnits:       h.HorizontalUnits,
			TriggerIndex: h.Horizontalzeroindex,
			YIncr:        h.Verticalspacing,
			YOffset:      h.Verticaloffset,
			YUnits:       h.Verticalunits,
		}
	}
}

func isDecodeError(err error) bool {
	return errors.Is(err, ErrDecodeMismatch)
}
