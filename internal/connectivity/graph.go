package connectivity

// #region graph

// graph is the undirected center graph formed by completed channels.
type graph map[Center][]Center

func newGraph(completed []Channel) graph {
	g := graph{}
	for _, ch := range completed {
		g[ch.CenterA] = append(g[ch.CenterA], ch.CenterB)
		g[ch.CenterB] = append(g[ch.CenterB], ch.CenterA)
	}
	return g
}

// walk performs a BFS from entry and returns the centers reached, entry first,
// in visit order.
func (g graph) walk(entry Center) []Center {
	order := []Center{entry}
	visited := map[Center]bool{entry: true}
	queue := []Center{entry}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, next)
		}
	}
	return order
}

// connected reports whether a path of completed channels joins from and to.
// A center with no completed channel reaches nothing, not even itself.
func (g graph) connected(from, to Center) bool {
	if len(g[from]) == 0 {
		return false
	}
	for _, c := range g.walk(from) {
		if c == to {
			return true
		}
	}
	return false
}

// #endregion graph
