package slidemap

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/slidemap/internal/mmap"
	"github.com/hupe1980/slidemap/resource"
)

// Manager owns the mapped windows for a set of resources and hands out
// cursors onto them. In sliding mode (the default) each resource is mapped
// in fixed, window-size-aligned chunks so files far larger than the address
// budget stay usable; window size 0 maps every resource in full.
//
// Regions are shared between cursors on the same path and reference counted;
// client-free regions stay mapped for reuse until the open-region cap or the
// memory budget forces least-recently-used eviction.
//
// A Manager and its cursors are designed for one accessor at a time; callers
// needing to share them across goroutines must synchronize externally.
type Manager struct {
	opts    options
	rc      *resource.Controller
	logger  *Logger
	sources map[string]*source
	lru     *list.List // *region, most recently used in front
	open    int        // currently mapped regions
	mapped  int64      // regions mapped since creation
	closed  bool
}

// ManagerStats reports window bookkeeping counters.
type ManagerStats struct {
	// OpenRegions is the number of currently mapped windows.
	OpenRegions int
	// MappedBytes is the number of currently mapped bytes.
	MappedBytes int64
	// RegionsMapped counts every window mapped since the manager was
	// created, including ones evicted since.
	RegionsMapped int64
}

// NewManager creates a window manager. See the With* options for window
// size, region caps, memory budget and logging.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return &Manager{
		opts: o,
		rc: resource.NewController(resource.Config{
			MappedMemoryLimitBytes: o.maxMappedMemory,
			MapLimitBytesPerSec:    o.mapBytesPerSec,
		}),
		logger:  o.logger,
		sources: make(map[string]*source),
		lru:     list.New(),
	}
}

// Cursor associates a new window cursor with the file at path, opening the
// file on first use. The cursor holds no window until its first relocation.
func (m *Manager) Cursor(path string) (*WindowCursor, error) {
	if m.closed {
		return nil, ErrClosed
	}

	s, ok := m.sources[path]
	if !ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("slidemap: open %s: %w", path, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("slidemap: stat %s: %w", path, err)
		}
		s = &source{path: path, f: f, size: fi.Size()}
		m.sources[path] = s
	}

	return &WindowCursor{m: m, src: s}, nil
}

// Stats returns current window bookkeeping counters.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		OpenRegions:   m.open,
		MappedBytes:   m.rc.MemoryUsage(),
		RegionsMapped: m.mapped,
	}
}

// Close unmaps every region and closes all files. Cursors still holding a
// window are reported as an error, but their mappings are torn down anyway
// so nothing leaks. Close is idempotent.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var regions []*region
	for e := m.lru.Front(); e != nil; e = e.Next() {
		regions = append(regions, e.Value.(*region))
	}

	leaked := 0
	for _, r := range regions {
		if r.clients > 0 {
			leaked++
		}
		m.removeRegion(r)
	}

	var closeErr error
	for _, s := range m.sources {
		if err := s.f.Close(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	m.sources = make(map[string]*source)

	if leaked > 0 {
		closeErr = errors.Join(fmt.Errorf("slidemap: closed with %d window(s) still in use", leaked), closeErr)
	}
	return closeErr
}

// window computes the mapped range for a request at offset. The requested
// length is intentionally ignored: windows are fixed-size aligned chunks, so
// one oversized slice request cannot blow the memory budget and is served
// chunk by chunk instead.
func (m *Manager) window(s *source, offset int64) (start, end int64) {
	if m.opts.windowSize <= 0 {
		return 0, s.size
	}
	start = offset - offset%m.opts.windowSize
	end = start + m.opts.windowSize
	if end > s.size {
		end = s.size
	}
	return start, end
}

func (m *Manager) obtainRegion(s *source, offset int64, flags int) (*region, error) {
	for _, r := range s.regions {
		if r.includes(offset) {
			r.clients++
			m.lru.MoveToFront(r.lruElem)
			return r, nil
		}
	}

	start, end := m.window(s, offset)
	if start >= end {
		return nil, fmt.Errorf("%w: offset %d beyond resource size %d", ErrOutOfRange, offset, s.size)
	}
	n := end - start

	m.evictFor(n)
	if !m.rc.TryAcquireMemory(n) {
		return nil, fmt.Errorf("%w: mapped memory budget exhausted mapping [%d, %d) of %s", ErrInvalidRegion, start, end, s.path)
	}
	if err := m.rc.AcquireMap(context.Background(), int(n)); err != nil {
		m.rc.ReleaseMemory(n)
		return nil, fmt.Errorf("slidemap: map throttle: %w", err)
	}

	mp, err := mmap.MapRange(s.f, start, int(n))
	if err != nil {
		m.rc.ReleaseMemory(n)
		return nil, fmt.Errorf("slidemap: map %s [%d, %d): %w", s.path, start, end, err)
	}
	if p := mmap.AccessPattern(flags); p > mmap.AccessDefault && p <= mmap.AccessDontNeed {
		_ = mp.Advise(p) // advisory only; unknown flag values are ignored
	}

	r := &region{src: s, start: start, mapping: mp, clients: 1}
	r.lruElem = m.lru.PushFront(r)
	s.regions = append(s.regions, r)
	m.open++
	m.mapped++
	m.logger.LogMapRegion(s.path, start, end)

	return r, nil
}

// evictFor drops least-recently-used client-free regions until the open
// region cap and the memory budget leave room for n more bytes. The region
// cap is best effort: windows still held by cursors cannot be dropped.
func (m *Manager) evictFor(n int64) {
	for m.opts.maxOpenRegions > 0 && m.open >= m.opts.maxOpenRegions {
		if !m.evictOne() {
			break
		}
	}
	for m.opts.maxMappedMemory > 0 && m.rc.MemoryUsage()+n > m.opts.maxMappedMemory {
		if !m.evictOne() {
			break
		}
	}
}

func (m *Manager) evictOne() bool {
	for e := m.lru.Back(); e != nil; e = e.Prev() {
		r := e.Value.(*region)
		if r.clients == 0 {
			m.removeRegion(r)
			return true
		}
	}
	return false
}

func (m *Manager) releaseRegion(r *region) {
	if r.clients > 0 {
		r.clients--
	}
	// The region stays mapped for reuse; eviction reclaims it later.
}

func (m *Manager) removeRegion(r *region) {
	m.lru.Remove(r.lruElem)
	m.open--

	s := r.src
	for i, rr := range s.regions {
		if rr == r {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			break
		}
	}

	n := int64(r.mapping.Len())
	if err := r.mapping.Close(); err != nil {
		m.logger.Warn("unmap failed", "path", s.path, "start", r.start, "error", err)
	}
	m.rc.ReleaseMemory(n)
	m.logger.LogEvictRegion(s.path, r.start, r.start+n)
}
