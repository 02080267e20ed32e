package memory

// collection is an ordered table: rows keyed by id plus the insertion order
// that every list operation preserves.
type collection[T any] struct {
	rows  map[string]T
	order []string
}

func newCollection[T any]() collection[T] {
	return collection[T]{rows: make(map[string]T)}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.rows[id]
	return v, ok
}

func (c *collection[T]) has(id string) bool {
	_, ok := c.rows[id]
	return ok
}

// put stores v under id, appending id to the order when it is new.
func (c *collection[T]) put(id string, v T) {
	if _, ok := c.rows[id]; !ok {
		c.order = append(c.order, id)
	}
	c.rows[id] = v
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.rows[id]; !ok {
		return false
	}
	delete(c.rows, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection[T]) len() int { return len(c.order) }

// each visits rows in insertion order until fn returns false.
func (c *collection[T]) each(fn func(id string, v T) bool) {
	for _, id := range c.order {
		if !fn(id, c.rows[id]) {
			return
		}
	}
}

func (c *collection[T]) values(cloneFn func(T) T) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneFn(c.rows[id]))
	}
	return out
}

func (c collection[T]) clone(cloneFn func(T) T) collection[T] {
	out := collection[T]{
		rows:  make(map[string]T, len(c.rows)),
		order: append([]string(nil), c.order...),
	}
	for id, v := range c.rows {
		out.rows[id] = cloneFn(v)
	}
	return out
}

// ids returns the ids whose rows satisfy match, in insertion order.
func (c *collection[T]) ids(match func(T) bool) []string {
	var out []string
	for _, id := range c.order {
		if match(c.rows[id]) {
			out = append(out, id)
		}
	}
	return out
}
