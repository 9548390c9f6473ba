package loadbalancing

// classicLB always tries replicas in their declared order.
type classicLB struct{}

func NewClassicLB() *classicLB {
	return &classicLB{}
}

func (c *classicLB) Order(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
