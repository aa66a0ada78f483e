package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingReplies_Resolve(t *testing.T) {
	p := newPendingReplies()

	ch := p.add("corr-1")
	ok := p.resolve("corr-1", &reply{Data: []byte(`{"id":"o1"}`)})
	assert.True(t, ok)

	rep := <-ch
	assert.Equal(t, `{"id":"o1"}`, string(rep.Data))

	// Resolving twice finds no waiter.
	assert.False(t, p.resolve("corr-1", &reply{}))
}

func TestPendingReplies_LateReplyDropped(t *testing.T) {
	p := newPendingReplies()

	p.add("corr-1")
	p.remove("corr-1")

	assert.False(t, p.resolve("corr-1", &reply{}))
}

func TestPendingReplies_IndependentWaiters(t *testing.T) {
	p := newPendingReplies()

	ch1 := p.add("corr-1")
	ch2 := p.add("corr-2")

	assert.True(t, p.resolve("corr-2", &reply{Data: []byte(`2`)}))
	assert.True(t, p.resolve("corr-1", &reply{Data: []byte(`1`)}))

	assert.Equal(t, `1`, string((<-ch1).Data))
	assert.Equal(t, `2`, string((<-ch2).Data))
}
