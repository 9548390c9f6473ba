// Package loadbalancing decides the order in which replicas are tried on reads.
package loadbalancing

import (
	"fmt"
)

// LoadBalancer returns a permutation of the indexes 0..n-1.
type LoadBalancer interface {
	Order(n int) []int
}

type Strategy int

const (
	CLASSIC Strategy = iota
	ROUND_ROBIN
)

type Factory struct {
}

func (Factory) NewLoadBalancer(strategy Strategy) (LoadBalancer, error) {
	switch strategy {
	case CLASSIC:
		return NewClassicLB(), nil
	case ROUND_ROBIN:
		return NewRoundRobinLB(), nil
	}

	return nil, fmt.Errorf("unsupported load balancing strategy: %v", strategy)
}
