package slidemap

import (
	"container/list"
	"os"

	"github.com/hupe1980/slidemap/internal/mmap"
)

// source is one opened resource, shared by all cursors on the same path.
// The manager owns the file handle; cursors only borrow regions of it.
type source struct {
	path    string
	f       *os.File
	size    int64
	regions []*region
}

// region is one mapped window [start, end) of a source. Regions are owned by
// the Manager and borrowed by cursors via client counts; a region may only
// be unmapped once no cursor uses it.
type region struct {
	src     *source
	start   int64
	mapping *mmap.Mapping
	clients int
	lruElem *list.Element
}

func (r *region) end() int64 {
	return r.start + int64(r.mapping.Len())
}

func (r *region) includes(offset int64) bool {
	return r.start <= offset && offset < r.end()
}
