package loadbalancing

import (
	"sync"
)

// roundRobinLB rotates the first replica on every call and keeps the
// declared order for the fallbacks.
type roundRobinLB struct {
	next int
	mu   sync.Mutex
}

func NewRoundRobinLB() *roundRobinLB {
	return &roundRobinLB{}
}

func (r *roundRobinLB) Order(n int) []int {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	start := r.next % n
	r.next = (start + 1) % n
	r.mu.Unlock()

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, (start+i)%n)
	}
	return order
}
