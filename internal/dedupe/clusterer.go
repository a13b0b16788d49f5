package dedupe

import "sort"

// Edge is a candidate pair whose composite score cleared the threshold.
type Edge struct {
	Pair
	Score     float64
	Breakdown Breakdown
}

// Components extracts the connected components of the similarity graph formed
// by the given edges. Components are returned with member ids ascending and
// ordered by their minimum member id, so group creation order is stable for a
// given edge set. Singletons never appear: every component has >= 2 members.
func Components(edges []Edge) [][]uint {
	adj := make(map[uint][]uint)
	for _, e := range edges {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}

	vertices := make([]uint, 0, len(adj))
	for v := range adj {
		vertices = append(vertices, v)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i] < vertices[j] })

	visited := make(map[uint]bool, len(adj))
	var comps [][]uint
	for _, start := range vertices {
		if visited[start] {
			continue
		}
		var comp []uint
		stack := []uint{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n] {
				continue
			}
			visited[n] = true
			comp = append(comp, n)
			stack = append(stack, adj[n]...)
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		comps = append(comps, comp)
	}
	return comps
}
