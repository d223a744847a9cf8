package sequence

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/imgseq/internal/catalog"
)

func threadedOptions(yield time.Duration) Options {
	opts := DefaultOptions()
	opts.Threaded = true
	opts.LoadYield = yield
	return opts
}

// pollUntilDone drives Update the way a render loop would and returns the
// PercentLoaded samples observed on the way.
func pollUntilDone(t *testing.T, s *Sequence) ([]float64, error) {
	t.Helper()
	var samples []float64
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		samples = append(samples, s.PercentLoaded())
		completed, err := s.Update()
		if err != nil {
			return samples, err
		}
		if completed {
			samples = append(samples, s.PercentLoaded())
			return samples, nil
		}
		if s.Job() == nil {
			return samples, nil
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("background load did not finish in time")
	return nil, nil
}

// within fails the test if fn blocks for longer than d.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("call blocked for more than %v", d)
	}
}

func TestBackgroundLoadCompletes(t *testing.T) {
	const n = 20
	dec := newCountingDecoder()
	s := newTestSequence(threadedOptions(time.Millisecond), dec, WithLister(staticLister(n)))

	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}
	if s.IsLoaded() {
		t.Error("Expected threaded load to return before loading")
	}
	if s.Job() == nil {
		t.Fatal("Expected a running job")
	}

	samples, err := pollUntilDone(t, s)
	if err != nil {
		t.Fatalf("background load failed: %v", err)
	}

	for i := 1; i < len(samples); i++ {
		if samples[i] < samples[i-1] {
			t.Fatalf("PercentLoaded went backwards: %v", samples)
		}
	}
	if last := samples[len(samples)-1]; last != 1 {
		t.Errorf("Expected PercentLoaded to reach 1, got %f", last)
	}

	if !s.IsLoaded() || s.IsLoading() || s.Job() != nil {
		t.Errorf("Expected finished load, loaded=%v loading=%v", s.IsLoaded(), s.IsLoading())
	}
	if s.TotalFrames() != n {
		t.Errorf("Expected %d frames, got %d", n, s.TotalFrames())
	}
	if dec.total() != n {
		t.Errorf("Expected every frame decoded once, got %d decodes", dec.total())
	}
	for i := 0; i < n; i++ {
		if !s.FrameDecoded(i) {
			t.Errorf("Expected frame %d decoded", i)
		}
	}
	if s.CurrentFrame() != 0 || s.Texture().Uploads() != 1 {
		t.Errorf("Expected frame 0 uploaded once, current=%d uploads=%d", s.CurrentFrame(), s.Texture().Uploads())
	}

	if completed, _ := s.Update(); completed {
		t.Error("Expected completion to be reported once")
	}
}

func TestBackgroundLoadLeavesTextureToOwner(t *testing.T) {
	s := newTestSequence(threadedOptions(0), newCountingDecoder(), WithLister(staticLister(5)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	<-s.Job().Done()

	if s.IsLoading() {
		t.Error("Expected worker finished")
	}
	if s.Texture().Uploads() != 0 {
		t.Error("Expected no upload before Update")
	}
	if s.TotalFrames() != 0 {
		t.Error("Expected catalog hidden until Update")
	}

	completed, err := s.Update()
	if !completed || err != nil {
		t.Fatalf("Update = %v, %v", completed, err)
	}
	if s.Texture().Uploads() != 1 || s.Width() != 4 {
		t.Errorf("Expected frame 0 uploaded by Update, uploads=%d width=%d", s.Texture().Uploads(), s.Width())
	}
}

func TestBackgroundLoadPartialFailure(t *testing.T) {
	dec := newCountingDecoder("shots/f002.png")
	s := newTestSequence(threadedOptions(0), dec, WithLister(staticLister(5)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}
	if _, err := pollUntilDone(t, s); err != nil {
		t.Fatalf("background load failed: %v", err)
	}

	if !s.IsLoaded() {
		t.Error("Expected sequence loaded despite the bad frame")
	}
	if !s.FrameFailed(2) {
		t.Error("Expected frame 2 failed")
	}
	if dec.count("shots/f002.png") != 1 {
		t.Errorf("Expected failed frame attempted once")
	}
	if err := s.SetFrame(2); !errors.Is(err, ErrFrameDecode) {
		t.Errorf("Expected ErrFrameDecode, got %v", err)
	}
	if s.CurrentFrame() != 0 {
		t.Errorf("Expected frame 0 still resident, got %d", s.CurrentFrame())
	}
}

func TestBackgroundLoadMissingFolder(t *testing.T) {
	dir := t.TempDir()
	s := newTestSequence(threadedOptions(0), newCountingDecoder())

	if err := s.LoadFolder(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("Expected threaded LoadFolder to defer errors, got %v", err)
	}
	_, err := pollUntilDone(t, s)
	if !errors.Is(err, catalog.ErrFolderNotFound) {
		t.Fatalf("Expected ErrFolderNotFound from Update, got %v", err)
	}
	if s.IsLoaded() || s.Job() != nil || s.TotalFrames() != 0 {
		t.Errorf("Expected clean state after failure")
	}
	if s.PercentLoaded() != 0 {
		t.Errorf("Expected PercentLoaded 0, got %f", s.PercentLoaded())
	}
}

func TestMutationRejectedWhileLoading(t *testing.T) {
	s := newTestSequence(threadedOptions(time.Hour), newCountingDecoder(), WithLister(staticLister(5)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	checks := map[string]error{
		"SetFrame":         s.SetFrame(1),
		"SetFrameForTime":  s.SetFrameForTime(0.1),
		"EnsureFrameReady": s.EnsureFrameReady(0),
		"Prefetch":         s.Prefetch(0),
		"PreloadAll":       s.PreloadAll(),
		"SetMaxFrames":     s.SetMaxFrames(2),
		"SetExtension":     s.SetExtension("jpg"),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrLoadInProgress) {
			t.Errorf("%s: expected ErrLoadInProgress, got %v", name, err)
		}
	}
	if _, err := s.FilePath(0); !errors.Is(err, ErrLoadInProgress) {
		t.Errorf("FilePath: expected ErrLoadInProgress, got %v", err)
	}
	if s.TotalFrames() != 0 || s.PixelsForFrame(0) != nil {
		t.Error("Expected frames hidden while loading")
	}
	if completed, err := s.Update(); completed || err != nil {
		t.Errorf("Update while loading = %v, %v", completed, err)
	}
	if !s.IsLoading() {
		t.Error("Expected load still running")
	}

	within(t, 5*time.Second, s.CancelLoad)
}

func TestCancelLoadBeforeFirstFrame(t *testing.T) {
	dec := newCountingDecoder()
	s := newTestSequence(threadedOptions(time.Hour), dec, WithLister(staticLister(5)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	within(t, 5*time.Second, s.CancelLoad)

	if dec.total() != 0 {
		t.Errorf("Expected no decodes, got %d", dec.total())
	}
	if s.IsLoaded() || s.IsLoading() || s.Job() != nil {
		t.Error("Expected cancelled load to leave the sequence unloaded")
	}
	if s.PercentLoaded() != 0 || s.CurrentFrame() != -1 {
		t.Errorf("Expected reset state, percent=%f current=%d", s.PercentLoaded(), s.CurrentFrame())
	}
	if completed, err := s.Update(); completed || err != nil {
		t.Errorf("Update after cancel = %v, %v", completed, err)
	}
}

func TestCancelLoadMidway(t *testing.T) {
	const n = 100
	reached := make(chan struct{})
	var once sync.Once

	dec := newCountingDecoder()
	dec.onCall = func(total int) {
		if total >= 2 {
			once.Do(func() { close(reached) })
		}
	}
	s := newTestSequence(threadedOptions(5*time.Millisecond), dec, WithLister(staticLister(n)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	select {
	case <-reached:
	case <-time.After(10 * time.Second):
		t.Fatal("worker never started decoding")
	}
	within(t, 5*time.Second, s.CancelLoad)

	if got := dec.total(); got >= n {
		t.Errorf("Expected cancellation to stop decoding early, got %d decodes", got)
	}
	if s.IsLoaded() || s.TotalFrames() != 0 {
		t.Error("Expected sequence unloaded after cancel")
	}
}

func TestUnloadDuringBackgroundLoad(t *testing.T) {
	s := newTestSequence(threadedOptions(time.Hour), newCountingDecoder(), WithLister(staticLister(5)))
	if err := s.LoadFolder("shots"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	within(t, 5*time.Second, s.Unload)
	if s.Job() != nil || s.IsLoaded() {
		t.Fatal("Expected Unload to cancel the job")
	}

	// A fresh load after the cancelled one works normally.
	if err := s.EnableThreadedLoad(false); err != nil {
		t.Fatalf("EnableThreadedLoad failed: %v", err)
	}
	if err := s.LoadFolder("again"); err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}
	if !s.IsLoaded() || s.TotalFrames() != 5 {
		t.Errorf("Expected 5 loaded frames, got %d", s.TotalFrames())
	}
}
