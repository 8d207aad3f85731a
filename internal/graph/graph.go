package graph

// Build constructs a TaskGraph from a task list. Predecessor references to
// tasks that are not in the list are skipped and duplicate IDs keep their
// first definition; call Validate to reject such input.
func Build(tasks []Task) *TaskGraph {
	g := &TaskGraph{
		Tasks:  make(map[string]*Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	// Index all tasks
	for i := range tasks {
		t := tasks[i].Clone()
		if _, dup := g.Tasks[t.ID]; dup {
			continue
		}
		g.Tasks[t.ID] = &t
		g.Order = append(g.Order, t.ID)
	}

	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	// Adjacency follows input order so traversal is deterministic.
	for _, id := range g.Order {
		for _, pred := range g.Tasks[id].Predecessors {
			if _, ok := g.Tasks[pred]; ok {
				addEdge(pred, id)
			}
		}
	}

	for _, id := range g.Order {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	return g
}

// Validate checks that tasks form a schedulable network: non-empty, unique
// IDs, non-negative durations, no dangling predecessor references and no
// cycles. It returns the first problem found as an *Error.
func Validate(tasks []Task) error {
	if len(tasks) == 0 {
		return &Error{Reason: ReasonEmptyInput}
	}

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return &Error{Reason: ReasonDuplicateID, TaskID: t.ID}
		}
		seen[t.ID] = true
		if t.Duration < 0 {
			return &Error{Reason: ReasonNegativeDuration, TaskID: t.ID}
		}
	}

	for _, t := range tasks {
		for _, pred := range t.Predecessors {
			if !seen[pred] {
				return &Error{Reason: ReasonDanglingReference, TaskID: t.ID, Ref: pred}
			}
		}
	}

	g := Build(tasks)
	if cycle := g.DetectCycle(); cycle != nil {
		return &Error{Reason: ReasonCycle, TaskID: cycle[0], Path: cycle}
	}
	return nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// The walk follows predecessor edges, so the path reads "depends on" left to right.
// Uses DFS with coloring: white (unvisited), gray (on the recursion stack), black (done).
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.Order))
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.RevAdj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.Order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Order)
}

// Successors returns the IDs of tasks that list id as a predecessor.
func (g *TaskGraph) Successors(id string) []string {
	return g.Adj[id]
}

// Predecessors returns the resolved predecessor IDs of id.
func (g *TaskGraph) Predecessors(id string) []string {
	return g.RevAdj[id]
}
