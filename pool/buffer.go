package pool

import (
	"math/bits"
	"sync"
)

const (
	// 最小缓存大小
	minClassShift = 6
	// 最大缓存大小, 超过的直接分配
	maxClassShift = 21
)

// BufferPool hands out byte slices from power-of-two size classes between 64 bytes and
// 2 MiB, which covers the largest frame the protocol allows.
type BufferPool struct {
	pools [maxClassShift - minClassShift + 1]sync.Pool
}

// NewBufferPool create new BufferPool instance
func NewBufferPool() *BufferPool {
	bp := &BufferPool{}
	for i := range bp.pools {
		size := 1 << (i + minClassShift)
		bp.pools[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
	return bp
}

// Alloc returns a slice of length size. Slices above the largest class are not pooled.
func (bp *BufferPool) Alloc(size int32) *[]byte {
	idx := classIndex(int(size))
	if idx < 0 {
		b := make([]byte, size)
		return &b
	}
	bufp := bp.pools[idx].Get().(*[]byte)
	buf := (*bufp)[:size]
	return &buf
}

// Free puts a slice obtained from Alloc back. Foreign slices whose capacity is not an
// exact class size are dropped.
func (bp *BufferPool) Free(buffer *[]byte) {
	if buffer == nil {
		return
	}
	c := cap(*buffer)
	idx := classIndex(c)
	if idx < 0 || 1<<(idx+minClassShift) != c {
		return
	}
	*buffer = (*buffer)[:c]
	bp.pools[idx].Put(buffer)
}

func classIndex(size int) int {
	if size <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(size - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

var defaultBuffPool = NewBufferPool()

// GetBuffPool get default BufferPool
func GetBuffPool() *BufferPool {
	return defaultBuffPool
}
