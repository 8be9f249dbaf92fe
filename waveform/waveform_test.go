package waveform_test

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tektronix/tekhsi-go/waveform"
)

func TestSampleRateTable(t *testing.T) {
	const (
		fftLength = 1024.0
		rbw       = 1e6
		span      = 5e8
	)
	cases := []struct {
		window string
		want   float64
	}{
		{"Blackharris", fftLength * rbw / 1.9},
		{"Flattop2", fftLength * rbw / 3.77},
		{"Hanning", fftLength * rbw / 1.44},
		{"Hamming", fftLength * rbw / 1.3},
		{"Rectangle", fftLength * rbw / 0.89},
		{"Kaiserbessel", fftLength * rbw / 2.23},
	}
	for _, tc := range cases {
		got := waveform.SampleRate(fftLength, rbw, span, tc.window)
		rel := math.Abs(got-tc.want) / tc.want
		if rel > 1e-9 {
			t.Errorf("%s: got %g want %g (rel err %g)", tc.window, got, tc.want, rel)
		}
	}
}

func TestSampleRateUnknownWindowFallsBackToSpan(t *testing.T) {
	got := waveform.SampleRate(1024, 1e6, 5e8, "Gaussian")
	if got != 5e8 {
		t.Errorf("unknown window should yield span, got %g", got)
	}
}

func TestAnalogPhysical(t *testing.T) {
	wf := waveform.Analog{
		SourceName: "ch1",
		Values:     []int8{-1, 0, 1, 2},
		YIncr:      0.5,
		YOffset:    1.0,
	}
	want := []float64{0.5, 1.0, 1.5, 2.0}
	if diff := cmp.Diff(want, wf.Physical()); diff != "" {
		t.Errorf("physical values mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalogPhysicalFloat(t *testing.T) {
	wf := waveform.Analog{
		Values: []float32{1.5, -1.5},
		YIncr:  2,
	}
	want := []float64{3, -3}
	if diff := cmp.Diff(want, wf.Physical()); diff != "" {
		t.Errorf("physical values mismatch (-want +got):\n%s", diff)
	}
}

func TestXValuesCenteredOnTrigger(t *testing.T) {
	wf := waveform.Analog{
		Values:       []int16{0, 0, 0, 0},
		XIncr:        0.25,
		TriggerIndex: 2,
	}
	want := []float64{-0.5, -0.25, 0, 0.25}
	if diff := cmp.Diff(want, wf.XValues()); diff != "" {
		t.Errorf("x axis mismatch (-want +got):\n%s", diff)
	}
}

func TestDigitalBit(t *testing.T) {
	wf := waveform.Digital{Values: []int8{0, 1, 2, 3, -1}}
	want0 := []byte{0, 1, 0, 1, 1}
	want1 := []byte{0, 0, 1, 1, 1}
	if diff := cmp.Diff(want0, wf.Bit(0)); diff != "" {
		t.Errorf("bit 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want1, wf.Bit(1)); diff != "" {
		t.Errorf("bit 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordLength(t *testing.T) {
	iq := waveform.IQ{Interleaved: []int32{1, 2, 3, 4}}
	if iq.RecordLength() != 4 {
		t.Errorf("expected 4 samples, got %d", iq.RecordLength())
	}
	var empty waveform.Analog
	if empty.RecordLength() != 0 {
		t.Errorf("expected empty record, got %d", empty.RecordLength())
	}
}

func TestEncodeCSV(t *testing.T) {
	wf := &waveform.Analog{
		SourceName:   "ch1",
		Values:       []int8{5, 7},
		XIncr:        1,
		TriggerIndex: 1,
		YIncr:        1,
	}
	var buf bytes.Buffer
	if err := waveform.EncodeCSV(&buf, wf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "time,ch1\n-1,5\n0,7\n"
	if buf.String() != want {
		t.Errorf("csv mismatch:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func ExampleAnalog_Physical() {
	wf := waveform.Analog{Values: []int8{0, 10, 20}, YIncr: 0.1, YOffset: 1}
	fmt.Println(wf.Physical())
	// Output: [1 2 3]
}
