package hsi_test

import (
	"testing"

	"github.com/tektronix/tekhsi-go/hsi"
	"github.com/tektronix/tekhsi-go/hsipb"
)

func headerMap(samples int64, hspace, hzero, vspace, voff float64) map[string]*hsipb.WaveformHeader {
	return map[string]*hsipb.WaveformHeader{
		"ch1": {
			Sourcename:          "ch1",
			Noofsamples:         samples,
			Horizontalspacing:   hspace,
			Horizontalzeroindex: hzero,
			Verticalspacing:     vspace,
			Verticaloffset:      voff,
		},
	}
}

func TestAcceptAll(t *testing.T) {
	if !hsi.AcceptAll(nil, nil) {
		t.Error("AcceptAll must accept everything")
	}
}

func TestHorizontalChangeFilter(t *testing.T) {
	base := headerMap(1000, 1e-9, 500, 0.1, 0)
	cases := []struct {
		name string
		cur  map[string]*hsipb.WaveformHeader
		want bool
	}{
		{"identical", headerMap(1000, 1e-9, 500, 0.1, 0), false},
		{"sample count", headerMap(2000, 1e-9, 500, 0.1, 0), true},
		{"spacing", headerMap(1000, 2e-9, 500, 0.1, 0), true},
		{"zero index", headerMap(1000, 1e-9, 250, 0.1, 0), true},
		{"vertical only", headerMap(1000, 1e-9, 500, 0.2, 1), false},
	}
	for _, tc := range cases {
		if got := hsi.AnyHorizontalChange(base, tc.cur); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestHorizontalChangeAcceptsNewSource(t *testing.T) {
	cur := headerMap(1000, 1e-9, 500, 0.1, 0)
	if !hsi.AnyHorizontalChange(map[string]*hsipb.WaveformHeader{}, cur) {
		t.Error("a source appearing must be accepted")
	}
	prevNil := map[string]*hsipb.WaveformHeader{"ch1": nil}
	if !hsi.AnyHorizontalChange(prevNil, cur) {
		t.Error("a source going non-nil must be accepted")
	}
}

func TestVerticalChangeFilter(t *testing.T) {
	base := headerMap(1000, 1e-9, 500, 0.1, 0)
	cases := []struct {
		name string
		cur  map[string]*hsipb.WaveformHeader
		want bool
	}{
		{"identical", headerMap(1000, 1e-9, 500, 0.1, 0), false},
		{"spacing", headerMap(1000, 1e-9, 500, 0.2, 0), true},
		{"offset", headerMap(1000, 1e-9, 500, 0.1, 0.5), true},
		{"horizontal only", headerMap(2000, 2e-9, 250, 0.1, 0), false},
	}
	for _, tc := range cases {
		if got := hsi.AnyVerticalChange(base, tc.cur); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
