package station

// RegisterBoarding counts the caller aboard and as departed from the
// platform, then holds it until onTrain <= capacity. The caller must
// already hold a gate permit, so the predicate normally holds on entry;
// the check serializes the "boarded" observation with the increment.
//
// It returns onTrain and departed as seen when admission completed.
func (c *Counters) RegisterBoarding() (onTrain, departed int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onTrain++
	c.departed++
	for c.onTrain > c.capacity {
		c.admitted.Wait()
	}
	return c.onTrain, c.departed
}

// Capacity returns the admission bound.
func (c *Counters) Capacity() int {
	return c.capacity
}
