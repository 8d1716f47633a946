package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExecutesEveryFunction(t *testing.T) {
	p := New(2)
	var count int64
	fns := make([]func(), 10)
	for i := range fns {
		fns[i] = func() { atomic.AddInt64(&count, 1) }
	}
	p.Run(fns)
	assert.Equal(t, int64(10), count)
}

func TestRunBoundsConcurrency(t *testing.T) {
	p := New(3)
	var current, max int64
	fns := make([]func(), 20)
	for i := range fns {
		fns[i] = func() {
			n := atomic.AddInt64(&current, 1)
			for {
				old := atomic.LoadInt64(&max)
				if n <= old || atomic.CompareAndSwapInt64(&max, old, n) {
					break
				}
			}
			atomic.AddInt64(&current, -1)
		}
	}
	p.Run(fns)
	assert.LessOrEqual(t, max, int64(3))
}
