package hsi

import (
	"github.com/tektronix/tekhsi-go/hsipb"
)

// Filter decides whether an acquisition is published.  It is handed the
// header map of the last acquisition seen and the headers of the current
// one; returning false drops the acquisition silently.
type Filter func(previous, current map[string]*hsipb.WaveformHeader) bool

// AcceptAll is the default acquisition filter; it accepts every acq.
func AcceptAll(previous, current map[string]*hsipb.WaveformHeader) bool {
	return true
}

// AnyHorizontalChange accepts only acqs whose horizontal settings changed:
// sample count, horizontal spacing, or trigger position, or a source that
// appeared since the previous acq.
func AnyHorizontalChange(previous, current map[string]*hsipb.WaveformHeader) bool {
	for key, cur := range current {
		prev, ok := previous[key]
		if !ok {
			return true
		}
		if prev == nil && cur != nil {
			return true
		}
		if prev != nil && (prev.Noofsamples != cur.Noofsamples ||
			prev.Horizontalspacing != cur.Horizontalspacing ||
			prev.Horizontalzeroindex != cur.Horizontalzeroindex) {
			return true
		}
	}
	return false
}

// AnyVerticalChange accepts only acqs whose vertical settings changed:
// vertical spacing or offset, or a source that appeared since the
// previous acq.
func AnyVerticalChange(previous, current map[string]*hsipb.WaveformHeader) bool {
	for key, cur := range current {
		prev, ok := previous[key]
		if !ok {
			return true
		}
		if prev == nil && cur != nil {
			return true
		}
		if prev != nil && (prev.Verticalspacing != cur.Verticalspacing ||
			prev.Verticaloffset != cur.Verticaloffset) {
			return true
		}
	}
	return false
}
