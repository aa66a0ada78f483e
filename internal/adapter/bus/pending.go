package bus

import "sync"

// pendingReplies correlates in-flight requests with their replies.
// Late replies for requests that already timed out are dropped.
type pendingReplies struct {
	mu      sync.Mutex
	waiting map[string]chan *reply
}

func newPendingReplies() *pendingReplies {
	return &pendingReplies{waiting: make(map[string]chan *reply)}
}

func (p *pendingReplies) add(id string) <-chan *reply {
	ch := make(chan *reply, 1)
	p.mu.Lock()
	p.waiting[id] = ch
	p.mu.Unlock()
	return ch
}

func (p *pendingReplies) resolve(id string, rep *reply) bool {
	p.mu.Lock()
	ch, ok := p.waiting[id]
	if ok {
		delete(p.waiting, id)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- rep
	return true
}

func (p *pendingReplies) remove(id string) {
	p.mu.Lock()
	delete(p.waiting, id)
	p.mu.Unlock()
}
