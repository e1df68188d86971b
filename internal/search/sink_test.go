package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkMinIsStable(t *testing.T) {
	sink := NewResultSink()
	assert.Nil(t, sink.Min())

	a := &stubSolution{heuristic: 17, seq: 1}
	b := &stubSolution{heuristic: 16, seq: 2}
	c := &stubSolution{heuristic: 16, seq: 3}
	d := &stubSolution{heuristic: 18, seq: 4}
	for _, p := range []Plan{a, b, c, d} {
		sink.Append(p)
	}

	assert.Equal(t, 4, sink.Len())
	assert.Same(t, b, sink.Min())
	assert.Equal(t, []Plan{a, b, c, d}, sink.Plans())
}

func TestSinkNotifiesAfterAppend(t *testing.T) {
	sink := NewResultSink()

	var sizes []int
	sink.Subscribe(func(added Plan, size int) {
		// 通知时新结果必须已经可见
		plans := sink.Plans()
		require.Len(t, plans, size)
		assert.Same(t, added, plans[size-1])
		sizes = append(sizes, size)
	})
	sink.Subscribe(nil)

	sink.Append(&stubSolution{heuristic: 10})
	sink.Append(&stubSolution{heuristic: 11})

	assert.Equal(t, []int{1, 2}, sizes)
}
