/*Package hsi implements the client side of the Tektronix high speed data
interface.

A Session owns a gRPC channel to the instrument and a background worker
that participates in the instrument's acquisition sequence: it waits for
the server to yield the datastore, pulls headers and sample payloads for
every active symbol, and publishes the decoded waveforms into an in-memory
cache.  Foreground callers synchronize with the worker through WithAccess,
which blocks under one of the four wait disciplines and guarantees the
acquisition stays consistent for the duration of the scope:

	sess, err := hsi.Open("scope.lab:5000")
	// error handling
	defer sess.Close()
	err = sess.WithAccess(hsi.NewData, -1, func() error {
		wf := sess.GetData("ch1")
		// use wf before the scope exits, or copy it
		return nil
	})

The instrument stops acquiring while the client holds an access window, so
scopes should be kept short.
*/
package hsi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tektronix/tekhsi-go/hsipb"
	"github.com/tektronix/tekhsi-go/waveform"
)

// DefaultChunkSize is the preferred payload chunk size requested from the
// instrument, in bytes
const DefaultChunkSize = 80000

// closeJoinTimeout bounds how long Close waits for the worker to exit
const closeJoinTimeout = 20 * time.Second

// Callback is invoked once per accepted acquisition, from the background
// worker, with the accepted waveforms in active-symbol order
type Callback func([]waveform.Waveform)

// Option configures a Session at Open
type Option func(*Session)

// WithActiveSymbols restricts the session to the named sources instead of
// everything the instrument reports.  Names are normalized to lowercase.
func WithActiveSymbols(symbols []string) Option {
	return func(s *Session) {
		s.activesymbols = lowered(symbols)
	}
}

// WithCallback registers fn to be invoked on every accepted acquisition
func WithCallback(fn Callback) Option {
	return func(s *Session) {
		s.callback = fn
	}
}

// WithFilter installs the initial acquisition acceptance filter
func WithFilter(f Filter) Option {
	return func(s *Session) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithChunkSize overrides the preferred payload chunk size in bytes
func WithChunkSize(bytes int32) Option {
	return func(s *Session) {
		if bytes > 0 {
			s.chunksize = bytes
		}
	}
}

// Session is a connection to one instrument's high speed data interface.
//
// All methods are safe for use from one foreground goroutine concurrently
// with the background worker.  Waits do not nest; a caller inside a
// WithAccess scope must not open another.
type Session struct {
	addr       string
	clientname string
	chunksize  int32

	conn    *grpc.ClientConn
	connect hsipb.ConnectClient
	native  hsipb.DataClient

	// acqMu is the publish lock.  The worker holds it across an entire
	// read-decode-publish pass; waiters take it to claim an acquisition
	// and keep it until DoneWithData.
	acqMu sync.Mutex

	// cacheMu guards short get/put sections on the waveform cache and
	// the published header map
	cacheMu    sync.Mutex
	cache      map[string]waveform.Waveform
	pubHeaders map[string]*hsipb.WaveformHeader
	pubID      int64

	// filterMu serializes worker reads of the filter against SetFilter
	// swaps.  The worker holds it from taking a window until releasing
	// it, matching the
	// server-side requirement that filter decisions be stable per acq.
	filterMu sync.Mutex
	filter   Filter

	activeMu      sync.Mutex
	activesymbols []string

	callback Callback

	// headers is the header map of the last acquisition considered by
	// the filter; worker-only
	headers map[string]*hsipb.WaveformHeader
	// prevDataID suppresses duplicate acquisitions; worker-only
	prevDataID int64

	acqCount    atomic.Int64
	lastAcqSeen atomic.Int64
	acqTime     atomic.Uint64 // float64 bits, seconds since start

	stopped      atomic.Bool
	connected    atomic.Bool
	holdingScope atomic.Bool

	// foreground claim state; mutated only by the claiming goroutine
	pendingRelease int
	claimHoldsLock bool

	startTime  time.Time
	workerDone chan struct{}

	statsMu sync.Mutex
	stats   Stats

	logger *log.Entry
}

// Stats accumulates transfer counters across accepted acquisitions
type Stats struct {
	// Acquisitions is the number of accepted acquisitions
	Acquisitions int64

	// Bytes is the total payload bytes transferred
	Bytes int64

	// TransferSeconds is the total time from the start of each accepted
	// acquisition's window wait until its payloads were read
	TransferSeconds float64
}

// Open dials the instrument at addr, registers a fresh client identity,
// resolves the active-symbol set, and starts the acquisition worker.
func Open(addr string, opts ...Option) (*Session, error) {
	s := &Session{
		addr:       addr,
		clientname: uuid.NewString(),
		chunksize:  DefaultChunkSize,
		cache:      map[string]waveform.Waveform{},
		pubHeaders: map[string]*hsipb.WaveformHeader{},
		pubID:      -1,
		filter:     AcceptAll,
		headers:    map[string]*hsipb.WaveformHeader{},
		prevDataID: -1,
		startTime:  time.Now(),
		workerDone: make(chan struct{}),
	}
	s.storeAcqTime(-1)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.WithField("client", s.clientname[:8])

	conn, err := grpc.Dial(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(hsipb.Codec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("hsi: dial %s: %w", addr, err)
	}
	s.conn = conn
	s.connect = hsipb.NewConnectClient(conn)
	s.native = hsipb.NewNativeDataClient(conn)

	if err := s.register(); err != nil {
		conn.Close()
		return nil, err
	}
	s.connected.Store(true)

	if len(s.activesymbols) == 0 {
		symbols, err := s.AvailableSymbols()
		if err != nil {
			s.disconnect()
			conn.Close()
			return nil, err
		}
		s.activesymbols = symbols
	}

	addSession(s)
	go s.run()
	return s, nil
}

// register issues Connect with a short exponential backoff; instruments
// reject connection thrash while a prior registration drains.
func (s *Session) register() error {
	req := &hsipb.ConnectRequest{Name: s.clientname}
	op := func() error {
		reply, err := s.connect.Connect(context.Background(), req)
		if err != nil {
			return err
		}
		if reply.Status == hsipb.StatusInUse {
			return backoff.Permanent(ErrInUse)
		}
		if reply.Status != hsipb.StatusOK {
			return fmt.Errorf("hsi: connect status %d", reply.Status)
		}
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	})
	if err != nil {
		return fmt.Errorf("hsi: connect to %s: %w", s.addr, err)
	}
	return nil
}

// AvailableSymbols queries the instrument for the source names it can
// currently serve.  This is a live query on every call.
func (s *Session) AvailableSymbols() ([]string, error) {
	req := &hsipb.ConnectRequest{Name: s.clientname}
	reply, err := s.connect.RequestAvailableNames(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("hsi: available names: %w", err)
	}
	return lowered(reply.Symbolnames), nil
}

// SourceNames returns the active-symbol set of this session
func (s *Session) SourceNames() []string {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	out := make([]string, len(s.activesymbols))
	copy(out, s.activesymbols)
	return out
}

// SetActiveSymbols replaces the set of sources moved from the instrument
// into the cache on each acquisition
func (s *Session) SetActiveSymbols(symbols []string) {
	s.activeMu.Lock()
	s.activesymbols = lowered(symbols)
	s.activeMu.Unlock()
}

// SetFilter atomically swaps the acquisition acceptance filter.  A nil
// filter is rejected with ErrNilFilter.
func (s *Session) SetFilter(f Filter) error {
	if f == nil {
		return ErrNilFilter
	}
	s.filterMu.Lock()
	s.filter = f
	s.lastAcqSeen.Store(s.acqCount.Load())
	s.filterMu.Unlock()
	return nil
}

// ForceSequence asks the instrument to produce a new access window
// immediately.  This is useful against a stopped instrument, to get
// access to the data it already holds; otherwise the worker waits for
// the next acquisition.  No-op once the session is closed.
func (s *Session) ForceSequence() error {
	if !s.connected.Load() {
		return nil
	}
	s.logger.Debug("force sequence")
	req := &hsipb.ConnectRequest{Name: s.clientname}
	if _, err := s.connect.RequestNewSequence(context.Background(), req); err != nil {
		return fmt.Errorf("hsi: force sequence: %w", err)
	}
	return nil
}

// GetData returns the cached waveform for the named source from the last
// accepted acquisition, or nil if the source has not been published.
// Lookup is case-insensitive.  The returned waveform is only guaranteed
// consistent with its acquisition while inside a WithAccess scope.
func (s *Session) GetData(name string) waveform.Waveform {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cache[strings.ToLower(name)]
}

// Headers returns the header map of the last accepted acquisition,
// keyed by source name.  Like GetData, the result is only consistent
// with the waveforms while inside a WithAccess scope.
func (s *Session) Headers() map[string]*hsipb.WaveformHeader {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	out := make(map[string]*hsipb.WaveformHeader, len(s.pubHeaders))
	for k, v := range s.pubHeaders {
		out[k] = v
	}
	return out
}

// AcquisitionID returns the data id of the last accepted acquisition, or
// -1 before the first
func (s *Session) AcquisitionID() int64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.pubID
}

// AcquisitionCount returns the number of acquisitions accepted so far
func (s *Session) AcquisitionCount() int64 {
	return s.acqCount.Load()
}

// AcquisitionTime returns the session-relative time in seconds at which
// the last accepted acquisition was published, or -1 before the first
func (s *Session) AcquisitionTime() float64 {
	return s.loadAcqTime()
}

// CurrentTime returns seconds elapsed since the session was opened; the
// timebase used by the Time wait discipline
func (s *Session) CurrentTime() float64 {
	return time.Since(s.startTime).Seconds()
}

// Stats returns a copy of the session's transfer counters
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// Close shuts the session down: it unblocks the worker with a forced
// sequence, joins it with a bounded wait, deregisters from the
// instrument, and releases the channel.  Close is idempotent and never
// returns an error; faults on the way down are logged.
func (s *Session) Close() {
	if s.stopped.Swap(true) {
		return
	}
	s.logger.Debug("close")

	// the forced sequence makes the instrument yield a window so the
	// worker can observe the stop flag
	if err := s.ForceSequence(); err != nil {
		s.logger.WithError(err).Debug("force sequence during close")
	}
	select {
	case <-s.workerDone:
	case <-time.After(closeJoinTimeout):
		s.logger.Warn("worker did not exit before timeout")
	}

	removeSession(s)
	s.disconnect()
	if err := s.conn.Close(); err != nil {
		s.logger.WithError(err).Debug("channel close")
	}
}

func (s *Session) disconnect() {
	if !s.connected.Swap(false) {
		return
	}
	s.logger.Debug("disconnect")
	req := &hsipb.ConnectRequest{Name: s.clientname}
	if _, err := s.connect.Disconnect(context.Background(), req); err != nil {
		s.logger.WithError(err).Debug("disconnect")
	}
}

func (s *Session) stopping() bool {
	return s.stopped.Load()
}

func (s *Session) cacheLen() int {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return len(s.cache)
}

func (s *Session) storeAcqTime(secs float64) {
	s.acqTime.Store(floatBits(secs))
}

func (s *Session) loadAcqTime() float64 {
	return floatFrom(s.acqTime.Load())
}

func lowered(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, sym := range symbols {
		out[i] = strings.ToLower(sym)
	}
	return out
}
