package analysis

import "parsegen/internal/ast"

// Cycles finds cycles in the leading-call graph: rule A has an edge to rule
// B when some variant of A begins with a call to B. A self-loop (length-1
// cycle) is direct left recursion, which the synthesizer rewrites; any
// longer cycle is indirect left recursion and must be rejected.
//
// Rules are visited in declaration order so the reported cycles are
// deterministic.
func Cycles(g *ast.Grammar) [][]string {
	local := make(map[string]bool, len(g.Rules))
	for _, r := range g.Rules {
		local[r.Name.Value] = true
	}

	edges := make(map[string][]string, len(g.Rules))
	for _, r := range g.Rules {
		seen := make(map[string]bool)
		for _, v := range r.Variants {
			if len(v.Patterns) == 0 {
				continue
			}
			call, isCall := v.Patterns[0].(*ast.RuleCall)
			if !isCall || !local[call.Name.Value] || seen[call.Name.Value] {
				continue
			}
			seen[call.Name.Value] = true
			edges[r.Name.Value] = append(edges[r.Name.Value], call.Name.Value)
		}
	}

	var cycles [][]string
	done := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		if done[name] {
			return
		}
		onStack[name] = true
		stack = append(stack, name)
		for _, next := range edges[name] {
			if onStack[next] {
				// Back edge: the cycle is the stack suffix from next.
				start := 0
				for i, n := range stack {
					if n == next {
						start = i
						break
					}
				}
				cycle := make([]string, len(stack)-start)
				copy(cycle, stack[start:])
				cycles = append(cycles, cycle)
				continue
			}
			visit(next)
		}
		stack = stack[:len(stack)-1]
		onStack[name] = false
		done[name] = true
	}

	for _, r := range g.Rules {
		visit(r.Name.Value)
	}
	return cycles
}
