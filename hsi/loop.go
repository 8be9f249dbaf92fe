package hsi

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tektronix/tekhsi-go/hsipb"
	"github.com/tektronix/tekhsi-go/waveform"
)

// run is the background worker.  It participates in the instrument's
// sequence until the session stops or the transport dies.  A fault
// confined to one acquisition skips that iteration; a dead transport
// ends the worker.
func (s *Session) run() {
	defer close(s.workerDone)
	for !s.stopping() {
		if err := s.cycle(); err != nil {
			if s.stopping() {
				return
			}
			if transportDead(err) {
				s.logger.WithError(err).Error("acquisition worker exiting")
				return
			}
			s.logger.WithError(err).Error("acquisition aborted")
		}
	}
}

func transportDead(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.Canceled:
		return true
	default:
		return false
	}
}

// cycle executes one pass of the acquisition sequence: hold a window,
// fetch under the publish lock, release the window, then notify.
// A non-nil return aborts this iteration; run decides from the error
// whether the transport is gone and the worker must exit.
func (s *Session) cycle() error {
	startWait := time.Now()
	if err := s.waitForDataAccess(); err != nil {
		return err
	}
	s.holdingScope.Store(true)
	s.filterMu.Lock()

	accepted, transferred, err := s.fetch()

	s.finishedWithDataAccess()
	s.filterMu.Unlock()
	s.holdingScope.Store(false)
	if err != nil {
		return err
	}

	if len(accepted) > 0 && s.connected.Load() && !s.stopping() {
		s.acqCount.Add(1)
		s.storeAcqTime(s.CurrentTime())
		s.note(startWait, transferred)
		s.notify(accepted)
	}
	return nil
}

// fetch reads headers and payloads for the current acquisition and
// publishes them, all while holding the publish lock so no caller can
// observe a half-updated cache.  It returns the accepted waveforms, or
// none when the acquisition was a duplicate or the filter rejected it.
func (s *Session) fetch() ([]waveform.Waveform, int, error) {
	s.acqMu.Lock()
	defer s.acqMu.Unlock()

	if s.stopping() {
		return nil, 0, nil
	}

	headers, headerMap, err := s.readHeaders()
	if err != nil {
		return nil, 0, err
	}
	if len(headers) == 0 {
		return nil, 0, nil
	}

	id := headers[0].Dataid
	if id == s.prevDataID {
		return nil, 0, nil
	}
	s.prevDataID = id

	if !s.applyFilter(s.headers, headerMap) {
		// keep the latest headers so the next filter call compares
		// against what was actually seen
		s.headers = headerMap
		return nil, 0, nil
	}
	s.headers = headerMap

	decoded := make([]waveform.Waveform, 0, len(headers))
	transferred := 0
	for _, h := range headers {
		wf, n, err := s.readWaveform(h)
		if err != nil {
			if isDecodeError(err) {
				s.logger.WithError(err).WithField("source", h.Sourcename).Error("payload discarded")
				continue
			}
			// transport fault or stop mid-acquisition: publish nothing
			return nil, 0, err
		}
		decoded = append(decoded, wf)
		transferred += n
	}

	s.cacheMu.Lock()
	for _, wf := range decoded {
		s.cache[strings.ToLower(wf.Source())] = wf
	}
	s.pubHeaders = headerMap
	s.pubID = id
	s.cacheMu.Unlock()
	return decoded, transferred, nil
}

// applyFilter evaluates the current filter.  A panicking filter counts
// as a rejection.
func (s *Session) applyFilter(prev, cur map[string]*hsipb.WaveformHeader) (accept bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("acquisition filter panicked; acq rejected")
			accept = false
		}
	}()
	return s.filter(prev, cur)
}

// notify invokes the user callback; a panicking callback is logged and
// swallowed so it cannot take the worker down.
func (s *Session) notify(accepted []waveform.Waveform) {
	if s.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("acquisition callback panicked")
		}
	}()
	s.callback(accepted)
}

// readHeaders pulls one header per active symbol, keeping only valid
// ones: has-data set, a positive sample count, and a known byte width.
func (s *Session) readHeaders() ([]*hsipb.WaveformHeader, map[string]*hsipb.WaveformHeader, error) {
	symbols := s.SourceNames()
	headers := make([]*hsipb.WaveformHeader, 0, len(symbols))
	headerMap := make(map[string]*hsipb.WaveformHeader, len(symbols))
	for _, symbol := range symbols {
		h, err := s.readHeader(symbol)
		if err != nil {
			return nil, nil, err
		}
		if headerValid(h) {
			headers = append(headers, h)
			headerMap[h.Sourcename] = h
		}
	}
	return headers, headerMap, nil
}

func (s *Session) readHeader(name string) (*hsipb.WaveformHeader, error) {
	s.logger.WithField("source", name).Debug("read header")
	req := &hsipb.WaveformRequest{Sourcename: name, Chunksize: s.chunksize}
	reply, err := s.native.GetHeader(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("hsi: get header %s: %w", name, err)
	}
	if reply.Headerordata == nil {
		return nil, nil
	}
	return reply.Headerordata.Header, nil
}

func headerValid(h *hsipb.WaveformHeader) bool {
	if h == nil || !h.Hasdata || h.Noofsamples <= 0 {
		return false
	}
	switch h.Sourcewidth {
	case 1, 2, 4:
		return true
	default:
		return false
	}
}

func (s *Session) waitForDataAccess() error {
	s.logger.Debug("wait for data access")
	req := &hsipb.ConnectRequest{Name: s.clientname}
	if _, err := s.connect.WaitForDataAccess(context.Background(), req); err != nil {
		return fmt.Errorf("hsi: wait for data access: %w", err)
	}
	return nil
}

func (s *Session) finishedWithDataAccess() {
	s.logger.Debug("finished with data access")
	req := &hsipb.ConnectRequest{Name: s.clientname}
	if _, err := s.connect.FinishedWithDataAccess(context.Background(), req); err != nil {
		s.logger.WithError(err).Debug("finished with data access")
	}
}

// note folds one accepted acquisition into the session counters
func (s *Session) note(startWait time.Time, transferred int) {
	elapsed := time.Since(startWait).Seconds()
	s.statsMu.Lock()
	s.stats.Acquisitions++
	s.stats.Bytes += int64(transferred)
	s.stats.TransferSeconds += elapsed
	s.statsMu.Unlock()
	if elapsed > 0 {
		s.logger.WithField("mbps", float64(transferred)*8/1e6/elapsed).Debug("acquisition transferred")
	}
}

func floatBits(f float64) uint64 { return math.Float64bits(f) }
func floatFrom(b uint64) float64 { return math.Float64frombits(b) }
