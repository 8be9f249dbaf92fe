/*Package hsipb carries the wire types for the Tektronix high speed data
interface and a gRPC codec for them.

The message layout is fixed by tekhsi.proto; the marshaling here is written
by hand against that file so the package does not drag the full protobuf
runtime or a codegen step into the build.  Encoding uses the low-level
protowire primitives, which produce byte-identical output to protoc
generated code for these messages.
*/
package hsipb

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every wire type in this package.  Codec
// marshals anything satisfying it.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(b []byte) error
}

// Status values returned by the Connect service.
const (
	StatusOK      int32 = 0
	StatusFailure int32 = 1
	StatusInUse   int32 = 2
)

// ConnectRequest identifies the calling client to the Connect service.
type ConnectRequest struct {
	Name string
}

// ConnectReply is the status reply for the Connect service calls other
// than RequestAvailableNames.
type ConnectReply struct {
	Status int32
}

// AvailableNamesReply lists the source names currently served by the
// instrument.
type AvailableNamesReply struct {
	Status      int32
	Symbolnames []string
}

// WaveformRequest names a source and the preferred chunk size for its
// payload stream.
type WaveformRequest struct {
	Sourcename string
	Chunksize  int32
}

// WaveformHeader describes one source for one acquisition.  Field names
// mirror the wire names used by the instrument.
type WaveformHeader struct {
	Sourcename          string
	Sourcewidth         int32
	Noofsamples         int64
	Dataid              int64
	Hasdata             bool
	Wfmtype             int32
	Pairtype            int32
	Verticalspacing     float64
	Verticaloffset      float64
	Verticalunits       string
	Horizontalspacing   float64
	HorizontalUnits     string
	Horizontalzeroindex float64
	IqCenterFrequency   float64
	IqFftLength         float64
	IqRbw               float64
	IqSpan              float64
	IqWindowType        string
}

// WaveformChunk is one run of raw little-endian sample bytes.
type WaveformChunk struct {
	Data []byte
}

// HeaderOrData carries either a header or a chunk, never both.
type HeaderOrData struct {
	Header *WaveformHeader
	Chunk  *WaveformChunk
}

// WaveformReply is one message of a GetHeader reply or a GetWaveform
// stream.
type WaveformReply struct {
	Status       int32
	Headerordata *HeaderOrData
}

// MarshalWire implements Message.
func (m *ConnectRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Name != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *ConnectRequest) UnmarshalWire(b []byte) error {
	*m = ConnectRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Name = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *ConnectReply) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Status != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Status))
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *ConnectReply) UnmarshalWire(b []byte) error {
	*m = ConnectReply{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Status = int32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *AvailableNamesReply) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Status != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Status))
	}
	for _, s := range m.Symbolnames {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *AvailableNamesReply) UnmarshalWire(b []byte) error {
	*m = AvailableNamesReply{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Status = int32(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Symbolnames = append(m.Symbolnames, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *WaveformRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Sourcename != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Sourcename)
	}
	if m.Chunksize != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Chunksize))
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *WaveformRequest) UnmarshalWire(b []byte) error {
	*m = WaveformRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Sourcename = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Chunksize = int32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *WaveformHeader) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Sourcename != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Sourcename)
	}
	if m.Sourcewidth != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Sourcewidth))
	}
	if m.Noofsamples != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Noofsamples))
	}
	if m.Dataid != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Dataid))
	}
	if m.Hasdata {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.Wfmtype != 0 {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Wfmtype))
	}
	if m.Pairtype != 0 {
		b = protowire.AppendTag(b, 7, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Pairtype))
	}
	b = appendDouble(b, 8, m.Verticalspacing)
	b = appendDouble(b, 9, m.Verticaloffset)
	if m.Verticalunits != "" {
		b = protowire.AppendTag(b, 10, protowire.BytesType)
		b = protowire.AppendString(b, m.Verticalunits)
	}
	b = appendDouble(b, 11, m.Horizontalspacing)
	if m.HorizontalUnits != "" {
		b = protowire.AppendTag(b, 12, protowire.BytesType)
		b = protowire.AppendString(b, m.HorizontalUnits)
	}
	b = appendDouble(b, 13, m.Horizontalzeroindex)
	b = appendDouble(b, 14, m.IqCenterFrequency)
	b = appendDouble(b, 15, m.IqFftLength)
	b = appendDouble(b, 16, m.IqRbw)
	b = appendDouble(b, 17, m.IqSpan)
	if m.IqWindowType != "" {
		b = protowire.AppendTag(b, 18, protowire.BytesType)
		b = protowire.AppendString(b, m.IqWindowType)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *WaveformHeader) UnmarshalWire(b []byte) error {
	*m = WaveformHeader{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1, 10, 12, 18:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			switch num {
			case 1:
				m.Sourcename = v
			case 10:
				m.Verticalunits = v
			case 12:
				m.HorizontalUnits = v
			case 18:
				m.IqWindowType = v
			}
		case 2, 3, 4, 5, 6, 7:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			switch num {
			case 2:
				m.Sourcewidth = int32(v)
			case 3:
				m.Noofsamples = int64(v)
			case 4:
				m.Dataid = int64(v)
			case 5:
				m.Hasdata = v != 0
			case 6:
				m.Wfmtype = int32(v)
			case 7:
				m.Pairtype = int32(v)
			}
		case 8, 9, 11, 13, 14, 15, 16, 17:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			f := math.Float64frombits(v)
			switch num {
			case 8:
				m.Verticalspacing = f
			case 9:
				m.Verticaloffset = f
			case 11:
				m.Horizontalspacing = f
			case 13:
				m.Horizontalzeroindex = f
			case 14:
				m.IqCenterFrequency = f
			case 15:
				m.IqFftLength = f
			case 16:
				m.IqRbw = f
			case 17:
				m.IqSpan = f
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *WaveformChunk) MarshalWire() ([]byte, error) {
	var b []byte
	if len(m.Data) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Data)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *WaveformChunk) UnmarshalWire(b []byte) error {
	*m = WaveformChunk{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Data = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *HeaderOrData) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Header != nil {
		sub, err := m.Header.MarshalWire()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if m.Chunk != nil {
		sub, err := m.Chunk.MarshalWire()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *HeaderOrData) UnmarshalWire(b []byte) error {
	*m = HeaderOrData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Header = new(WaveformHeader)
			if err := m.Header.UnmarshalWire(v); err != nil {
				return err
			}
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Chunk = new(WaveformChunk)
			if err := m.Chunk.UnmarshalWire(v); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// MarshalWire implements Message.
func (m *WaveformReply) MarshalWire() ([]byte, error) {
	var b []byte
	if m.Status != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Status))
	}
	if m.Headerordata != nil {
		sub, err := m.Headerordata.MarshalWire()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b, nil
}

// UnmarshalWire implements Message.
func (m *WaveformReply) UnmarshalWire(b []byte) error {
	*m = WaveformReply{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Status = int32(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Headerordata = new(HeaderOrData)
			if err := m.Headerordata.UnmarshalWire(v); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(v))
	return b
}
