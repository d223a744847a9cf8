package sequence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadJob is a folder load running on its own goroutine: it builds the
// catalog and decodes every frame, but never uploads to the texture. The
// owning goroutine finishes the load from Sequence.Update.
//
// loading and cancelRequested are the only state shared with the owner and
// are guarded by mu. Frame writes made by the worker happen before loading
// is cleared, so the owner may read them once it has seen loading == false.
// A decode that hangs stalls the worker; there is no timeout.
type LoadJob struct {
	seq *Sequence

	mu              sync.Mutex
	loading         bool
	cancelRequested bool

	ctx    context.Context // done once cancel is requested, wakes the yield
	cancel context.CancelFunc
	group  errgroup.Group
	done   chan struct{}

	total     atomic.Int64
	attempted atomic.Int64
}

func startLoadJob(seq *Sequence) *LoadJob {
	ctx, cancel := context.WithCancel(context.Background())
	j := &LoadJob{
		seq:     seq,
		loading: true,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	j.group.Go(j.run)
	return j
}

func (j *LoadJob) run() error {
	defer j.finish()

	if err := j.seq.buildFolderCatalog(); err != nil {
		j.seq.log.Printf("[!] background load of %s: %v", j.seq.folder, err)
		return err
	}
	j.total.Store(int64(len(j.seq.frames)))

	if j.Cancelled() {
		return nil
	}
	j.seq.preloadFrames(j)
	return nil
}

func (j *LoadJob) finish() {
	j.mu.Lock()
	j.loading = false
	j.mu.Unlock()
	close(j.done)
}

// Loading reports whether the worker is still running.
func (j *LoadJob) Loading() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.loading
}

func (j *LoadJob) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequested
}

// Done is closed when the worker exits, for owners that prefer to select on
// completion instead of polling.
func (j *LoadJob) Done() <-chan struct{} {
	return j.done
}

// Progress is the fraction of frames attempted so far.
func (j *LoadJob) Progress() float64 {
	total := j.total.Load()
	if total == 0 {
		return 0
	}
	return float64(j.attempted.Load()) / float64(total)
}

func (j *LoadJob) requestCancel() {
	j.mu.Lock()
	j.cancelRequested = true
	j.mu.Unlock()
	j.cancel()
}

// wait joins the worker and returns the catalog error, if any.
func (j *LoadJob) wait() error {
	err := j.group.Wait()
	j.cancel()
	return err
}

// yield pauses between frames and reports whether loading should go on.
func (j *LoadJob) yield(d time.Duration) bool {
	if j.Cancelled() {
		return false
	}
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-j.ctx.Done():
			return false
		case <-t.C:
		}
	}
	return !j.Cancelled()
}

// --- owner side ---

// Job returns the running background load, or nil.
func (s *Sequence) Job() *LoadJob {
	return s.job
}

// Update is the owner's per-tick poll. It never blocks on a running load.
// On the first tick after the worker has finished it detaches the job and,
// if frames were found, makes frame 0 resident; completed is true for that
// tick only. err carries the catalog failure of a background load.
func (s *Sequence) Update() (completed bool, err error) {
	j := s.job
	if j == nil || j.Loading() {
		return false, nil
	}

	err = j.wait()
	s.job = nil
	if err != nil {
		s.reset()
		return false, err
	}
	if len(s.frames) == 0 {
		return false, nil
	}
	if err := s.completeLoading(); err != nil {
		return false, err
	}
	s.log.Printf("[*] background load of %s complete: %d frames", s.folder, len(s.frames))
	return true, nil
}

// CancelLoad stops a background load and waits for the worker to exit. The
// sequence is left unloaded.
func (s *Sequence) CancelLoad() {
	j := s.job
	if j == nil {
		return
	}
	j.requestCancel()
	j.wait()
	s.job = nil
	s.reset()
}
