package align

// DisjointSet is a union-find forest with path compression and union by rank.
type DisjointSet[T comparable] struct {
	parent map[T]T
	rank   map[T]int
}

func NewDisjointSet[T comparable]() *DisjointSet[T] {
	return &DisjointSet[T]{
		parent: make(map[T]T),
		rank:   make(map[T]int),
	}
}

// Add makes x a singleton set if it is not already known.
func (d *DisjointSet[T]) Add(x T) {
	if _, ok := d.parent[x]; !ok {
		d.parent[x] = x
	}
}

// Find returns the representative of x's set, adding x if needed.
func (d *DisjointSet[T]) Find(x T) T {
	d.Add(x)
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for x != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets of a and b. On equal rank a's root stays the root.
func (d *DisjointSet[T]) Union(a, b T) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}

func (d *DisjointSet[T]) Connected(a, b T) bool {
	return d.Find(a) == d.Find(b)
}

// Len is the number of elements seen.
func (d *DisjointSet[T]) Len() int {
	return len(d.parent)
}
