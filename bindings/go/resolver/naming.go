package resolver

import (
	"strconv"
	"sync/atomic"
)

// unitNamer hands out fetch unit names that are unique for its lifetime.
type unitNamer struct {
	prefix  string
	counter atomic.Uint64
}

// next returns prefix + counter and increments the counter. The first name ends in 0.
func (n *unitNamer) next() string {
	return n.prefix + strconv.FormatUint(n.counter.Add(1)-1, 10)
}
