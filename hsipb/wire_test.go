package hsipb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tektronix/tekhsi-go/hsipb"
)

func TestHeaderSurvivesTheWire(t *testing.T) {
	in := hsipb.WaveformHeader{
		Sourcename:          "ch1_iq",
		Sourcewidth:         2,
		Noofsamples:         2000,
		Dataid:              42,
		Hasdata:             true,
		Wfmtype:             7,
		Pairtype:            1,
		Verticalspacing:     1.0 / 58000,
		Verticaloffset:      -0.25,
		Verticalunits:       "V",
		Horizontalspacing:   1e-9,
		HorizontalUnits:     "S",
		Horizontalzeroindex: 1000,
		IqCenterFrequency:   1e9,
		IqFftLength:         1024,
		IqRbw:               1e6,
		IqSpan:              5e8,
		IqWindowType:        "Blackharris",
	}
	b, err := in.MarshalWire()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out hsipb.WaveformHeader
	if err := out.UnmarshalWire(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("header changed on the wire (-sent +received):\n%s", diff)
	}
}

func TestReplyCarriesHeaderOrChunk(t *testing.T) {
	hdr := &hsipb.WaveformReply{
		Status: hsipb.StatusOK,
		Headerordata: &hsipb.HeaderOrData{
			Header: &hsipb.WaveformHeader{Sourcename: "ch1", Hasdata: true, Noofsamples: 10, Sourcewidth: 1, Wfmtype: 1},
		},
	}
	chunk := &hsipb.WaveformReply{
		Headerordata: &hsipb.HeaderOrData{
			Chunk: &hsipb.WaveformChunk{Data: []byte{1, 2, 3, 0xff}},
		},
	}
	for _, in := range []*hsipb.WaveformReply{hdr, chunk} {
		b, err := in.MarshalWire()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		out := new(hsipb.WaveformReply)
		if err := out.UnmarshalWire(b); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Errorf("reply changed on the wire (-sent +received):\n%s", diff)
		}
	}
}

func TestEmptyMessageIsZeroBytes(t *testing.T) {
	b, err := (&hsipb.ConnectRequest{}).MarshalWire()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(b) != 0 {
		t.Errorf("zero-value message should marshal empty, got %d bytes", len(b))
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	// a reply from a newer server may carry fields this client does not
	// know; splice an extra varint field 99 ahead of a known field
	known, err := (&hsipb.ConnectReply{Status: hsipb.StatusInUse}).MarshalWire()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	unknown := append([]byte{0x98, 0x06, 0x07}, known...) // field 99, varint 7
	var out hsipb.ConnectReply
	if err := out.UnmarshalWire(unknown); err != nil {
		t.Fatalf("unmarshal with unknown field: %v", err)
	}
	if out.Status != hsipb.StatusInUse {
		t.Errorf("expected status %d, got %d", hsipb.StatusInUse, out.Status)
	}
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	var c hsipb.Codec
	if _, err := c.Marshal(42); err == nil {
		t.Error("expected an error marshaling a non-message")
	}
	if err := c.Unmarshal(nil, "nope"); err == nil {
		t.Error("expected an error unmarshaling into a non-message")
	}
	if c.Name() != "proto" {
		t.Errorf("codec must negotiate the proto subtype, got %q", c.Name())
	}
}
