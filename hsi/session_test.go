package hsi_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tektronix/tekhsi-go/hsi"
	"github.com/tektronix/tekhsi-go/hsitest"
	"github.com/tektronix/tekhsi-go/waveform"
)

const testTimeout = 10 * time.Second

func startServer(t *testing.T, specs map[string]*hsitest.SourceSpec) (*hsitest.Server, string) {
	t.Helper()
	srv := hsitest.New(specs)
	addr, err := srv.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("start fake instrument: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, addr
}

func open(t *testing.T, addr string, opts ...hsi.Option) *hsi.Session {
	t.Helper()
	sess, err := hsi.Open(addr, opts...)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess
}

// access runs a WithAccess scope with a hard timeout so a broken wait
// discipline fails the test instead of hanging it
func access(t *testing.T, sess *hsi.Session, on hsi.WaitOn, after float64, fn func() error) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- sess.WithAccess(on, after, fn)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("access scope: %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("access scope did not complete before timeout")
	}
}

func waitUntil(t *testing.T, what string, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func analogSpec(width, length int) *hsitest.SourceSpec {
	return &hsitest.SourceSpec{
		Kind:      hsitest.Analog,
		Width:     width,
		Length:    length,
		Frequency: 1000,
		Amplitude: 1,
		HasData:   true,
	}
}

func TestSingleChannelSine(t *testing.T) {
	_, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 1000),
	})
	sess := open(t, addr, hsi.WithActiveSymbols([]string{"ch1"}))

	access(t, sess, hsi.NewData, -1, func() error {
		wf := sess.GetData("ch1")
		if wf == nil {
			t.Fatal("no waveform published for ch1")
		}
		an, ok := wf.(*waveform.Analog)
		if !ok {
			t.Fatalf("expected an analog record, got %T", wf)
		}
		values, ok := an.Values.([]int8)
		if !ok {
			t.Fatalf("an 8-bit vector should decode to []int8, got %T", an.Values)
		}
		if len(values) != 1000 {
			t.Errorf("expected 1000 samples, got %d", len(values))
		}
		return nil
	})
}

func TestMultiChannelAtomicity(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 500),
		"ch3": analogSpec(2, 500),
	})
	sess := open(t, addr, hsi.WithActiveSymbols([]string{"ch1", "ch3"}))
	srv.AutoPublish(50)
	defer srv.StopAuto()

	for i := 0; i < 5; i++ {
		access(t, sess, hsi.NextAcq, -1, func() error {
			headers := sess.Headers()
			h1, h3 := headers["ch1"], headers["ch3"]
			if h1 == nil || h3 == nil {
				t.Fatal("both sources must be present in the header map")
			}
			if h1.Dataid != h3.Dataid {
				t.Fatalf("snapshot mixes acquisitions: ch1=%d ch3=%d", h1.Dataid, h3.Dataid)
			}
			if sess.GetData("ch1") == nil || sess.GetData("ch3") == nil {
				t.Fatal("both sources must be readable inside the scope")
			}
			if got := sess.AcquisitionID(); got != h1.Dataid {
				t.Fatalf("acquisition id %d does not match headers %d", got, h1.Dataid)
			}
			return nil
		})
	}
}

func TestMonotonicAcquisitionCounter(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	sess := open(t, addr)
	srv.AutoPublish(100)
	defer srv.StopAuto()

	var last int64
	for i := 0; i < 4; i++ {
		access(t, sess, hsi.NextAcq, -1, func() error {
			count := sess.AcquisitionCount()
			if count <= last {
				t.Fatalf("counter did not advance: %d after %d", count, last)
			}
			last = count
			return nil
		})
	}
}

func TestDuplicateSuppression(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	sess := open(t, addr)

	waitUntil(t, "first acquisition", func() bool { return sess.AcquisitionCount() == 1 })
	id := sess.AcquisitionID()
	calls := srv.HeaderCalls()

	// a forced sequence re-presents the same data id; the client must
	// look at the headers and then skip the acquisition
	if err := sess.ForceSequence(); err != nil {
		t.Fatalf("force sequence: %v", err)
	}
	waitUntil(t, "duplicate headers to be read", func() bool { return srv.HeaderCalls() > calls })
	time.Sleep(50 * time.Millisecond)

	if got := sess.AcquisitionCount(); got != 1 {
		t.Errorf("duplicate advanced the counter to %d", got)
	}
	if got := sess.AcquisitionID(); got != id {
		t.Errorf("duplicate replaced the snapshot id: %d -> %d", id, got)
	}
}

func TestFilterSuppressesPayloadReads(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 1000),
	})
	sess := open(t, addr, hsi.WithFilter(hsi.AnyHorizontalChange))

	// first acquisition introduces the source, so it is accepted
	waitUntil(t, "introductory acquisition", func() bool { return sess.AcquisitionCount() == 1 })
	if got := srv.WaveformCalls(); got != 1 {
		t.Fatalf("expected 1 payload read, got %d", got)
	}

	// same horizontal settings: rejected, and no payload RPC issued
	headerCalls := srv.HeaderCalls()
	srv.Publish()
	waitUntil(t, "rejected acquisition headers", func() bool { return srv.HeaderCalls() > headerCalls })
	time.Sleep(50 * time.Millisecond)
	if got := srv.WaveformCalls(); got != 1 {
		t.Errorf("rejected acquisition issued payload reads: %d", got)
	}
	if got := sess.AcquisitionCount(); got != 1 {
		t.Errorf("rejected acquisition advanced the counter to %d", got)
	}

	// a record-length change passes the filter
	srv.MutateSpec("ch1", func(spec *hsitest.SourceSpec) { spec.Length = 2000 })
	srv.Publish()
	waitUntil(t, "accepted acquisition", func() bool { return sess.AcquisitionCount() == 2 })
	if got := srv.WaveformCalls(); got != 2 {
		t.Errorf("expected 2 payload reads after the change, got %d", got)
	}

	access(t, sess, hsi.NewData, -1, func() error {
		wf := sess.GetData("ch1")
		if wf == nil || wf.RecordLength() != 2000 {
			t.Errorf("expected the 2000 sample record to be published")
		}
		return nil
	})
}

func TestCaseInsensitiveLookup(t *testing.T) {
	_, addr := startServer(t, nil)
	sess := open(t, addr, hsi.WithActiveSymbols([]string{"CH1"}))

	if diff := cmp.Diff([]string{"ch1"}, sess.SourceNames()); diff != "" {
		t.Errorf("active symbols not normalized (-want +got):\n%s", diff)
	}
	access(t, sess, hsi.AnyAcq, -1, func() error {
		upper, lower := sess.GetData("CH1"), sess.GetData("ch1")
		if upper == nil || upper != lower {
			t.Error("lookup must be case-insensitive")
		}
		return nil
	})
}

func TestScopeReleasesOnError(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	sess := open(t, addr)
	srv.AutoPublish(100)
	defer srv.StopAuto()

	boom := errors.New("caller failure")
	done := make(chan error, 1)
	go func() {
		done <- sess.WithAccess(hsi.AnyAcq, -1, func() error { return boom })
	}()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("scope should surface the caller's error, got %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("scope did not complete")
	}

	// the release must have dropped the publish lock: the worker keeps
	// accepting and a second scope can claim
	count := sess.AcquisitionCount()
	waitUntil(t, "worker to continue past the scope", func() bool { return sess.AcquisitionCount() > count })
	access(t, sess, hsi.NextAcq, -1, func() error { return nil })

	// releasing with nothing claimed is a quiet no-op
	sess.DoneWithData()
}

func TestIQWindowRate(t *testing.T) {
	_, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1_iq": {
			Kind: hsitest.IQ, Width: 2, Length: 2000, Frequency: 1000, Amplitude: 1, HasData: true,
			WindowKind: "Blackharris", FFTLength: 1024, RBW: 1e6, Span: 5e8, CenterFrequency: 1e9,
		},
	})
	sess := open(t, addr)

	access(t, sess, hsi.NewData, -1, func() error {
		wf := sess.GetData("ch1_iq")
		iq, ok := wf.(*waveform.IQ)
		if !ok {
			t.Fatalf("expected an IQ record, got %T", wf)
		}
		if _, ok := iq.Interleaved.([]int16); !ok {
			t.Errorf("width 2 IQ should decode to []int16, got %T", iq.Interleaved)
		}
		want := 1024 * 1e6 / 1.9
		if iq.Meta.SampleRate != want {
			t.Errorf("sample rate: got %g want %g", iq.Meta.SampleRate, want)
		}
		return nil
	})
}

func TestForceSequenceOnStoppedInstrument(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 1000),
	})
	// the instrument is stopped: it holds data but presents nothing new
	srv.Drain()
	sess := open(t, addr)

	if err := sess.ForceSequence(); err != nil {
		t.Fatalf("force sequence: %v", err)
	}
	access(t, sess, hsi.NewData, -1, func() error {
		if sess.GetData("ch1") == nil {
			t.Error("forced sequence should surface the stored acquisition")
		}
		return nil
	})
}

func TestTimeWait(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	sess := open(t, addr)
	srv.AutoPublish(50)
	defer srv.StopAuto()

	after := sess.CurrentTime() + 0.5
	access(t, sess, hsi.Time, after, func() error {
		if got := sess.AcquisitionTime(); got < after {
			t.Errorf("claimed an acquisition stamped %.3fs, wanted >= %.3fs", got, after)
		}
		return nil
	})
}

func TestInvalidHeadersAreFiltered(t *testing.T) {
	srv, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1":      analogSpec(1, 1000),
		"ch_stale": {Kind: hsitest.Analog, Width: 1, Length: 1000, Frequency: 1000, Amplitude: 1, HasData: false},
		"ch_empty": {Kind: hsitest.Analog, Width: 1, Length: 0, Frequency: 1000, Amplitude: 1, HasData: true},
	})
	sess := open(t, addr)

	access(t, sess, hsi.NewData, -1, func() error {
		if sess.GetData("ch1") == nil {
			t.Error("the valid source must be published")
		}
		if sess.GetData("ch_stale") != nil {
			t.Error("a has-data=false header must not reach the cache")
		}
		if sess.GetData("ch_empty") != nil {
			t.Error("a zero-sample header must not reach the cache")
		}
		return nil
	})
	// only the valid source's payload was read
	if got := srv.WaveformCalls(); got != 1 {
		t.Errorf("expected exactly 1 payload read, got %d", got)
	}
}

func TestCallbackDeliversAcceptedWaveforms(t *testing.T) {
	got := make(chan []waveform.Waveform, 8)
	_, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	open(t, addr, hsi.WithCallback(func(wfs []waveform.Waveform) {
		got <- wfs
	}))

	select {
	case wfs := <-got:
		if len(wfs) != 1 || wfs[0].Source() != "ch1" {
			t.Errorf("unexpected callback payload: %v", wfs)
		}
	case <-time.After(testTimeout):
		t.Fatal("callback was never invoked")
	}
}

func TestSetFilterRejectsNil(t *testing.T) {
	_, addr := startServer(t, nil)
	sess := open(t, addr)
	if err := sess.SetFilter(nil); !errors.Is(err, hsi.ErrNilFilter) {
		t.Errorf("expected ErrNilFilter, got %v", err)
	}
	if err := sess.SetFilter(hsi.AnyVerticalChange); err != nil {
		t.Errorf("swapping a real filter should succeed, got %v", err)
	}
}

func TestAvailableSymbols(t *testing.T) {
	_, addr := startServer(t, nil)
	sess := open(t, addr)
	symbols, err := sess.AvailableSymbols()
	if err != nil {
		t.Fatalf("available symbols: %v", err)
	}
	found := false
	for _, s := range symbols {
		if s == "ch1" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ch1 among %v", symbols)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	_, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	sess, err := hsi.Open(addr)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sess.Close()
	sess.Close()
	// and a drained registry makes CloseAll a no-op
	hsi.CloseAll()
}

func TestCloseAllDrainsLiveSessions(t *testing.T) {
	_, addr := startServer(t, map[string]*hsitest.SourceSpec{
		"ch1": analogSpec(1, 100),
	})
	if _, err := hsi.Open(addr); err != nil {
		t.Fatalf("open: %v", err)
	}
	hsi.CloseAll()
}
