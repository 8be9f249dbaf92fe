/*Package hsitest provides an in-process fake of the instrument's high
speed data services for use in tests.

The fake implements the same hold protocol as the real firmware: new
acquisitions are produced while no client holds the datastore,
WaitForDataAccess blocks until fresh data exists and then hands the
datastore to the caller, and FinishedWithDataAccess returns it.  Data is
synthesized per source from a SourceSpec; Publish produces one new
acquisition on demand, and AutoPublish produces them at a fixed rate.
*/
package hsitest

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/tektronix/tekhsi-go/hsipb"
)

// Kind selects the waveform family a source synthesizes
type Kind int

const (
	// Analog is a sampled sine vector
	Analog Kind = iota

	// IQ is an interleaved I/Q record
	IQ

	// Digital is a packed digital bus counting pattern
	Digital
)

// SourceSpec describes one synthesized source
type SourceSpec struct {
	// Kind selects the family
	Kind Kind

	// Width is the sample byte width, 1, 2 or 4
	Width int

	// Length is the record length in samples
	Length int

	// Frequency of the synthesized tone in Hz
	Frequency float64

	// Amplitude of the synthesized tone
	Amplitude float64

	// HasData is cleared to present an invalid header
	HasData bool

	// IQ metadata, meaningful only for Kind IQ
	WindowKind      string
	FFTLength       float64
	RBW             float64
	Span            float64
	CenterFrequency float64
}

// DefaultSpecs mirrors the source set a small bench scope presents
func DefaultSpecs() map[string]*SourceSpec {
	return map[string]*SourceSpec{
		"ch1":    {Kind: Analog, Width: 1, Length: 1000, Frequency: 1000, Amplitude: 1, HasData: true},
		"ch2":    {Kind: Analog, Width: 2, Length: 1000, Frequency: 1000, Amplitude: 1, HasData: true},
		"ch3":    {Kind: Analog, Width: 2, Length: 1000, Frequency: 1000, Amplitude: 1, HasData: true},
		"math1":  {Kind: Analog, Width: 4, Length: 1000, Frequency: 1000, Amplitude: 1, HasData: true},
		"ch1_iq": {Kind: IQ, Width: 2, Length: 2000, Frequency: 1000, Amplitude: 1, HasData: true, WindowKind: "Blackharris", FFTLength: 1024, RBW: 1e6, Span: 5e8, CenterFrequency: 1e9},
	}
}

// Server is the fake instrument.  Zero value is not usable; construct
// with New.
type Server struct {
	// datastore is the hold-protocol mutex: held by the producer
	// between acquisitions and by a client between WaitForDataAccess
	// and FinishedWithDataAccess
	datastore sync.Mutex

	stateMu           sync.Mutex
	connections       map[string]bool
	dataAccessAllowed bool
	specs             map[string]*SourceSpec
	sources           map[string]*source

	newData atomic.Bool
	dataID  atomic.Int64

	headerCalls   atomic.Int64
	waveformCalls atomic.Int64

	srv      *grpc.Server
	lis      net.Listener
	autoStop chan struct{}
	autoWG   sync.WaitGroup
}

type source struct {
	header hsipb.WaveformHeader
	raw    []byte
}

// New builds a fake instrument serving the given sources, or
// DefaultSpecs when specs is nil.
func New(specs map[string]*SourceSpec) *Server {
	if specs == nil {
		specs = DefaultSpecs()
	}
	s := &Server{
		connections: map[string]bool{},
		specs:       specs,
	}
	s.regenerate()
	s.newData.Store(true)
	return s
}

// Start listens on addr ("127.0.0.1:0" for an ephemeral port) and serves
// in the background.  It returns the bound address.
func (s *Server) Start(addr string) (string, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("hsitest: listen: %w", err)
	}
	s.lis = lis
	s.srv = grpc.NewServer(grpc.ForceServerCodec(hsipb.Codec{}))
	hsipb.RegisterConnectServer(s.srv, (*connectService)(s))
	hsipb.RegisterNativeDataServer(s.srv, (*nativeService)(s))
	hsipb.RegisterNormalizedDataServer(s.srv, (*normalizedService)(s))
	go func() {
		if err := s.srv.Serve(lis); err != nil {
			log.WithError(err).Debug("hsitest server stopped")
		}
	}()
	return lis.Addr().String(), nil
}

// Stop halts auto publishing and the gRPC server
func (s *Server) Stop() {
	s.StopAuto()
	if s.srv != nil {
		s.srv.Stop()
	}
}

// Publish produces one new acquisition: it takes the datastore, advances
// the data id, regenerates every source, and marks fresh data.  It
// blocks while a client holds an access window.
func (s *Server) Publish() {
	s.datastore.Lock()
	s.dataID.Add(1)
	s.regenerate()
	s.newData.Store(true)
	s.datastore.Unlock()
}

// AutoPublish produces acquisitions at the given rate until StopAuto or
// Stop is called.  The limiter keeps production from outrunning a slow
// consumer when the window is contended.
func (s *Server) AutoPublish(hz float64) {
	limiter := rate.NewLimiter(rate.Limit(hz), 1)
	s.autoStop = make(chan struct{})
	s.autoWG.Add(1)
	go func() {
		defer s.autoWG.Done()
		for {
			select {
			case <-s.autoStop:
				return
			default:
			}
			if err := limiter.Wait(context.Background()); err != nil {
				return
			}
			s.Publish()
		}
	}()
}

// StopAuto halts an AutoPublish goroutine
func (s *Server) StopAuto() {
	if s.autoStop != nil {
		close(s.autoStop)
		s.autoWG.Wait()
		s.autoStop = nil
	}
}

// Drain marks the stored acquisition as already presented, so the next
// WaitForDataAccess blocks until Publish or RequestNewSequence.  This
// models a stopped instrument holding old data.
func (s *Server) Drain() {
	s.newData.Store(false)
}

// MutateSpec edits one source's spec under the server's lock; the change
// is visible from the next Publish
func (s *Server) MutateSpec(name string, fn func(*SourceSpec)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if spec, ok := s.specs[name]; ok {
		fn(spec)
	}
}

// HeaderCalls reports how many GetHeader RPCs have been served
func (s *Server) HeaderCalls() int64 { return s.headerCalls.Load() }

// WaveformCalls reports how many GetWaveform RPCs have been served
func (s *Server) WaveformCalls() int64 { return s.waveformCalls.Load() }

// DataID reports the current acquisition id
func (s *Server) DataID() int64 { return s.dataID.Load() }

func (s *Server) regenerate() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	id := s.dataID.Load()
	sources := make(map[string]*source, len(s.specs))
	for name, spec := range s.specs {
		sources[name] = synthesize(name, spec, id)
	}
	s.sources = sources
}

func (s *Server) lookup(name string) (*source, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	src, ok := s.sources[name]
	return src, ok
}

func (s *Server) symbolNames() []string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	return names
}

// connectService implements the hold protocol
type connectService Server

func (c *connectService) Connect(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.ConnectReply, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.connections[req.Name] {
		return &hsipb.ConnectReply{Status: hsipb.StatusInUse}, nil
	}
	c.connections[req.Name] = true
	return &hsipb.ConnectReply{Status: hsipb.StatusOK}, nil
}

func (c *connectService) Disconnect(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.ConnectReply, error) {
	c.stateMu.Lock()
	delete(c.connections, req.Name)
	allowed := c.dataAccessAllowed
	c.dataAccessAllowed = false
	c.stateMu.Unlock()

	// a disconnecting client that still held the window must not hang
	// the producer
	if allowed {
		c.newData.Store(false)
		c.datastore.Unlock()
	}
	return &hsipb.ConnectReply{Status: hsipb.StatusOK}, nil
}

func (c *connectService) RequestAvailableNames(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.AvailableNamesReply, error) {
	return &hsipb.AvailableNamesReply{
		Status:      hsipb.StatusOK,
		Symbolnames: (*Server)(c).symbolNames(),
	}, nil
}

func (c *connectService) RequestNewSequence(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.ConnectReply, error) {
	// re-present the current acquisition without advancing the id;
	// this is how a stopped instrument yields its stored data
	c.datastore.Lock()
	(*Server)(c).regenerate()
	c.newData.Store(true)
	c.datastore.Unlock()
	return &hsipb.ConnectReply{Status: hsipb.StatusOK}, nil
}

func (c *connectService) WaitForDataAccess(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.ConnectReply, error) {
	c.stateMu.Lock()
	known := c.connections[req.Name]
	any := len(c.connections) > 0
	c.stateMu.Unlock()
	if !any || (!known && req.Name != "") {
		return &hsipb.ConnectReply{Status: hsipb.StatusFailure}, nil
	}

	for !c.newData.Load() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		time.Sleep(time.Millisecond)
	}

	c.datastore.Lock()
	c.stateMu.Lock()
	c.dataAccessAllowed = true
	c.stateMu.Unlock()
	return &hsipb.ConnectReply{Status: hsipb.StatusOK}, nil
}

func (c *connectService) FinishedWithDataAccess(ctx context.Context, req *hsipb.ConnectRequest) (*hsipb.ConnectReply, error) {
	c.stateMu.Lock()
	allowed := c.dataAccessAllowed
	c.dataAccessAllowed = false
	c.stateMu.Unlock()
	if !allowed {
		return &hsipb.ConnectReply{Status: hsipb.StatusFailure}, nil
	}
	c.newData.Store(false)
	c.datastore.Unlock()
	return &hsipb.ConnectReply{Status: hsipb.StatusOK}, nil
}

// nativeService serves byte-exact instrument representation
type nativeService Server

func (n *nativeService) GetHeader(ctx context.Context, req *hsipb.WaveformRequest) (*hsipb.WaveformReply, error) {
	n.headerCalls.Add(1)
	src, ok := (*Server)(n).lookup(req.Sourcename)
	if !ok {
		return &hsipb.WaveformReply{Status: hsipb.StatusFailure}, nil
	}
	h := src.header
	return &hsipb.WaveformReply{
		Status:       hsipb.StatusOK,
		Headerordata: &hsipb.HeaderOrData{Header: &h},
	}, nil
}

func (n *nativeService) GetWaveform(req *hsipb.WaveformRequest, stream hsipb.WaveformStreamServer) error {
	n.waveformCalls.Add(1)
	src, ok := (*Server)(n).lookup(req.Sourcename)
	if !ok {
		return stream.Send(&hsipb.WaveformReply{Status: hsipb.StatusFailure})
	}
	chunksize := int(req.Chunksize)
	if chunksize <= 0 {
		chunksize = 80000
	}
	raw := src.raw
	for cur := 0; cur < len(raw); cur += chunksize {
		end := cur + chunksize
		if end > len(raw) {
			end = len(raw)
		}
		reply := &hsipb.WaveformReply{
			Status:       hsipb.StatusOK,
			Headerordata: &hsipb.HeaderOrData{Chunk: &hsipb.WaveformChunk{Data: raw[cur:end]}},
		}
		if err := stream.Send(reply); err != nil {
			return err
		}
	}
	return stream.Send(&hsipb.WaveformReply{Status: hsipb.StatusOK})
}

// normalizedService is present on the channel, as on the instrument, but
// the native client never calls it; it serves the same data
type normalizedService Server

func (n *normalizedService) GetHeader(ctx context.Context, req *hsipb.WaveformRequest) (*hsipb.WaveformReply, error) {
	return (*nativeService)(n).GetHeader(ctx, req)
}

func (n *normalizedService) GetWaveform(req *hsipb.WaveformRequest, stream hsipb.WaveformStreamServer) error {
	return (*nativeService)(n).GetWaveform(req, stream)
}
