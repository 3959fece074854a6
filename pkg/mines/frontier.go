package mines

import "sort"

// Component is a maximal set of variables connected by co-occurrence in a
// constraint, together with every constraint mentioning at least one of
// them. Components are mutually independent: a satisfying assignment for
// one component places no restriction on any other.
type Component struct {
	Vars        []Position
	Constraints []Constraint
}

// Decompose partitions constraints and their variables into independent
// connected components via breadth-first traversal of the variable
// co-occurrence graph (an edge between two variables iff they appear
// together in some constraint), per spec §4.3.
//
// Traversal always starts from the row-major-smallest unvisited variable,
// and each component's Vars/Constraints are themselves sorted row-major,
// so decomposition is a deterministic function of the constraint list
// (component ordering itself is not observable, per spec, but we still
// fix it for reproducible traces and tests).
func Decompose(constraints []Constraint) []Component {
	adjacency := make(map[Position]map[Position]struct{})
	varToConstraints := make(map[Position][]int)
	allVars := make(map[Position]struct{})

	for ci, c := range constraints {
		for _, v := range c.Vars {
			allVars[v] = struct{}{}
			varToConstraints[v] = append(varToConstraints[v], ci)
			if adjacency[v] == nil {
				adjacency[v] = make(map[Position]struct{})
			}
		}
		for i := 0; i < len(c.Vars); i++ {
			for j := 0; j < len(c.Vars); j++ {
				if i == j {
					continue
				}
				adjacency[c.Vars[i]][c.Vars[j]] = struct{}{}
			}
		}
	}

	ordered := make([]Position, 0, len(allVars))
	for v := range allVars {
		ordered = append(ordered, v)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Less(ordered[j]) })

	visited := make(map[Position]struct{}, len(ordered))
	var components []Component

	for _, start := range ordered {
		if _, seen := visited[start]; seen {
			continue
		}
		queue := []Position{start}
		visited[start] = struct{}{}
		compVars := make(map[Position]struct{})
		compVars[start] = struct{}{}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			neighborsOf := make([]Position, 0, len(adjacency[cur]))
			for n := range adjacency[cur] {
				neighborsOf = append(neighborsOf, n)
			}
			sort.Slice(neighborsOf, func(i, j int) bool { return neighborsOf[i].Less(neighborsOf[j]) })
			for _, n := range neighborsOf {
				if _, seen := visited[n]; !seen {
					visited[n] = struct{}{}
					compVars[n] = struct{}{}
					queue = append(queue, n)
				}
			}
		}

		consIdx := make(map[int]struct{})
		for v := range compVars {
			for _, ci := range varToConstraints[v] {
				consIdx[ci] = struct{}{}
			}
		}
		sortedIdx := make([]int, 0, len(consIdx))
		for ci := range consIdx {
			sortedIdx = append(sortedIdx, ci)
		}
		sort.Ints(sortedIdx)

		vars := make([]Position, 0, len(compVars))
		for v := range compVars {
			vars = append(vars, v)
		}
		sort.Slice(vars, func(i, j int) bool { return vars[i].Less(vars[j]) })

		cons := make([]Constraint, 0, len(sortedIdx))
		for _, ci := range sortedIdx {
			cons = append(cons, constraints[ci])
		}

		components = append(components, Component{Vars: vars, Constraints: cons})
	}

	return components
}
