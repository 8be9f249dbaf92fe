package hsipb

import (
	"fmt"
)

// Codec marshals the wire types in this package.  It reports the name
// "proto" because the bytes it produces are standard protobuf wire format;
// the instrument negotiates the default proto content subtype.
//
// Clients pass it per-connection via grpc.WithDefaultCallOptions(
// grpc.ForceCodec(Codec{})); servers built against these types use
// grpc.ForceServerCodec(Codec{}).
type Codec struct{}

// Name implements encoding.Codec.
func (Codec) Name() string { return "proto" }

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("hsipb: cannot marshal %T", v)
	}
	return m.MarshalWire()
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("hsipb: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}
