package slidemap

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCursor serves windows of fixed size straight out of an in-memory
// resource, so buffer tests can observe the access protocol without any
// real mappings.
type scriptedCursor struct {
	data       []byte
	window     int64
	associated bool

	begin, end int64
	valid      bool

	relocations int
	releases    int
}

var _ Cursor = (*scriptedCursor)(nil)

func newScriptedCursor(data []byte, window int64) *scriptedCursor {
	return &scriptedCursor{data: data, window: window, associated: true}
}

func (c *scriptedCursor) IsValid() bool      { return c.valid }
func (c *scriptedCursor) IsAssociated() bool { return c.associated }
func (c *scriptedCursor) WindowBegin() int64 { return c.begin }
func (c *scriptedCursor) WindowEnd() int64   { return c.end }

func (c *scriptedCursor) IncludesOffset(offset int64) bool {
	return c.valid && c.begin <= offset && offset < c.end
}

func (c *scriptedCursor) Relocate(offset, length int64, flags int) error {
	c.relocations++
	if offset < 0 || offset >= int64(len(c.data)) {
		return fmt.Errorf("%w: offset %d outside resource [0, %d)", ErrOutOfRange, offset, len(c.data))
	}
	c.begin = offset
	c.end = offset + c.window
	if c.end > int64(len(c.data)) {
		c.end = int64(len(c.data))
	}
	c.valid = true
	return nil
}

func (c *scriptedCursor) Bytes() []byte {
	if !c.valid {
		return nil
	}
	return c.data[c.begin:c.end]
}

func (c *scriptedCursor) Release() {
	c.releases++
	c.valid = false
}

func patternData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestBuffer_UnboundRead(t *testing.T) {
	b := NewUnbound()

	_, err := b.At(0)
	assert.ErrorIs(t, err, ErrNotBound)

	_, err = b.Slice(0, 10)
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestBuffer_BindValidation(t *testing.T) {
	b := NewUnbound()

	// No cursor at all.
	err := b.Bind(nil, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	// Unassociated cursor.
	c := newScriptedCursor(patternData(64), 16)
	c.associated = false
	err = b.Bind(c, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	// Offset past the end of the resource.
	c.associated = true
	err = b.Bind(c, 1000, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	// Constructor propagates the failure and leaves no window behind.
	_, err = New(newScriptedCursor(patternData(64), 16), 1000, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestBuffer_At(t *testing.T) {
	data := patternData(256)
	c := newScriptedCursor(data, 16)

	b, err := New(c, 0, int64(len(data)), 0)
	require.NoError(t, err)
	defer b.Close()

	// Walk the whole resource byte by byte across many windows.
	for i := range data {
		got, err := b.At(int64(i))
		require.NoError(t, err)
		assert.Equal(t, data[i], got)
	}

	_, err = b.At(int64(len(data)))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = b.At(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuffer_SliceFastPath(t *testing.T) {
	data := patternData(256)
	c := newScriptedCursor(data, 64)

	b, err := New(c, 0, int64(len(data)), 0)
	require.NoError(t, err)
	defer b.Close()

	// Prime the window at 0, then slice strictly inside it.
	_, err = b.At(0)
	require.NoError(t, err)

	before := c.relocations
	got, err := b.Slice(5, 40)
	require.NoError(t, err)
	assert.Equal(t, data[5:40], got)
	assert.Equal(t, before, c.relocations, "fast path must not relocate")

	// Fast path result matches byte-by-byte reads.
	for i := int64(5); i < 40; i++ {
		bt, err := b.At(i)
		require.NoError(t, err)
		assert.Equal(t, got[i-5], bt)
	}
}

func TestBuffer_SliceCrossesWindows(t *testing.T) {
	data := patternData(1000)
	c := newScriptedCursor(data, 64)

	b, err := New(c, 0, int64(len(data)), 0)
	require.NoError(t, err)
	defer b.Close()

	before := c.relocations
	got, err := b.Slice(0, int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.GreaterOrEqual(t, c.relocations-before, (len(data)+63)/64)
}

func TestBuffer_SliceOutOfRange(t *testing.T) {
	data := patternData(100)
	c := newScriptedCursor(data, 16)

	b, err := New(c, 0, UnboundedSize, 0)
	require.NoError(t, err)
	defer b.Close()

	// Extends past the resource: whole read fails, no short result.
	got, err := b.Slice(99, 110)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Nil(t, got)

	// Still readable afterwards.
	bt, err := b.At(99)
	require.NoError(t, err)
	assert.Equal(t, data[99], bt)
}

func TestBuffer_SliceEmptyAndBounds(t *testing.T) {
	data := patternData(100)
	b, err := New(newScriptedCursor(data, 16), 0, 100, 0)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Slice(10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = b.Slice(10, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = b.Slice(-1, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// j beyond the bound size is rejected up front.
	_, err = b.Slice(0, 101)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuffer_UnboundedSliceAtOffset(t *testing.T) {
	data := patternData(256)
	c := newScriptedCursor(data, 64)

	// Unbounded size at a non-zero offset: the absolute translation of
	// b.Size() does not fit in an int64.
	b, err := New(c, 50, 0, 0)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, UnboundedSize, b.Size())

	// Reads up to the nominal size must fail loudly at the end of the
	// resource, never panic or return short data.
	got, err := b.Slice(0, b.Size())
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Nil(t, got)

	// Same request with a window primed elsewhere, so the fast-path bounds
	// are evaluated too.
	_, err = b.At(0)
	require.NoError(t, err)
	got, err = b.Slice(0, b.Size())
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Nil(t, got)

	// Bounded reads on the same buffer still work.
	got, err = b.Slice(0, 206)
	require.NoError(t, err)
	assert.Equal(t, data[50:], got)
}

func TestBuffer_RelativeOffset(t *testing.T) {
	data := patternData(300)
	c := newScriptedCursor(data, 32)

	// Index 0 of the buffer maps to absolute offset 200.
	b, err := New(c, 200, 50, 0)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Slice(0, 50)
	require.NoError(t, err)
	assert.Equal(t, data[200:250], got)

	bt, err := b.At(49)
	require.NoError(t, err)
	assert.Equal(t, data[249], bt)

	_, err = b.At(50)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuffer_ReleaseIdempotent(t *testing.T) {
	c := newScriptedCursor(patternData(64), 16)
	b, err := New(c, 0, 64, 0)
	require.NoError(t, err)

	b.Release()
	b.Release()
	require.NoError(t, b.Close())

	_, err = b.At(0)
	assert.ErrorIs(t, err, ErrNotBound)

	// Releasing a never-bound buffer is a no-op too.
	NewUnbound().Release()
}

func TestBuffer_RebindAfterRelease(t *testing.T) {
	data := patternData(256)
	c := newScriptedCursor(data, 16)

	b, err := New(c, 0, 64, 0)
	require.NoError(t, err)

	first, err := b.Slice(0, 8)
	require.NoError(t, err)
	assert.Equal(t, data[0:8], first)

	b.Release()

	// Rebind at a different offset, reusing the stored cursor.
	require.NoError(t, b.Bind(nil, 128, 64, 0))

	second, err := b.Slice(0, 8)
	require.NoError(t, err)
	assert.Equal(t, data[128:136], second)
}

// The concrete end-to-end scenario: a 10,000 byte resource accessed through
// 100 byte windows, buffer bound at absolute offset 50.
func TestBuffer_SlidingScenario(t *testing.T) {
	content := patternData(10000)
	path := filepath.Join(t.TempDir(), "resource.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m := NewManager(WithWindowSize(100))
	defer m.Close()

	c, err := m.Cursor(path)
	require.NoError(t, err)

	b, err := New(c, 50, 9900, 0)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Slice(0, 9900)
	require.NoError(t, err)
	assert.Equal(t, content[50:9950], got)

	// Assembling 9,900 bytes from 100 byte windows takes at least
	// ceil(9900/100) relocations.
	assert.GreaterOrEqual(t, m.Stats().RegionsMapped, int64(99))
}
