package slidemap

// DefaultWindowSize is the window size used when none is configured. Large
// enough that sequential scans rarely relocate, small enough that dozens of
// concurrent windows fit comfortably in a 64-bit address space.
const DefaultWindowSize int64 = 64 << 20

type options struct {
	windowSize      int64
	maxOpenRegions  int
	maxMappedMemory int64
	mapBytesPerSec  int64
	logger          *Logger
}

func defaultOptions() options {
	return options{
		windowSize: DefaultWindowSize,
		logger:     NoopLogger(),
	}
}

// Option configures a Manager.
type Option func(*options)

// WithWindowSize sets the size of the mapped windows. Any positive value
// works; platform alignment is handled internally. size <= 0 switches to
// static mode: every resource is mapped in full by its first relocation.
func WithWindowSize(size int64) Option {
	return func(o *options) {
		o.windowSize = size
	}
}

// WithMaxOpenRegions caps how many windows stay mapped at once. The cap is
// best effort: windows currently held by cursors cannot be evicted. n <= 0
// (the default) means no cap.
func WithMaxOpenRegions(n int) Option {
	return func(o *options) {
		o.maxOpenRegions = n
	}
}

// WithMaxMappedMemory sets a hard budget for mapped bytes. When eviction
// cannot free enough client-free windows to stay under the budget, a
// relocation fails rather than overcommitting. n <= 0 (the default) means
// no budget.
func WithMaxMappedMemory(n int64) Option {
	return func(o *options) {
		o.maxMappedMemory = n
	}
}

// WithMapThrottle limits how many bytes may be newly mapped per second,
// smoothing window churn when scanning cold files. n <= 0 (the default)
// means unlimited.
func WithMapThrottle(bytesPerSec int64) Option {
	return func(o *options) {
		o.mapBytesPerSec = bytesPerSec
	}
}

// WithLogger sets the logger for window bookkeeping events. If nil is
// passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
