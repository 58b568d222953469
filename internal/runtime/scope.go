package runtime

// ScopeStack is a generic symbol table tracking name definitions in nested
// lexical scopes. Only grammars that perform lexical validation use it; it
// participates in attempt snapshots so speculative definitions roll back.
type ScopeStack struct {
	scopes []map[string]bool
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []map[string]bool{{}}}
}

func (ss *ScopeStack) EnterScope() {
	ss.scopes = append(ss.scopes, map[string]bool{})
}

func (ss *ScopeStack) ExitScope() {
	if len(ss.scopes) > 1 {
		ss.scopes = ss.scopes[:len(ss.scopes)-1]
	}
}

func (ss *ScopeStack) Define(name string) {
	ss.scopes[len(ss.scopes)-1][name] = true
}

func (ss *ScopeStack) IsDefined(name string) bool {
	for i := len(ss.scopes) - 1; i >= 0; i-- {
		if ss.scopes[i][name] {
			return true
		}
	}
	return false
}

// Depth returns the number of open scopes.
func (ss *ScopeStack) Depth() int {
	return len(ss.scopes)
}

func (ss *ScopeStack) clone() *ScopeStack {
	out := &ScopeStack{scopes: make([]map[string]bool, len(ss.scopes))}
	for i, scope := range ss.scopes {
		copied := make(map[string]bool, len(scope))
		for k, v := range scope {
			copied[k] = v
		}
		out.scopes[i] = copied
	}
	return out
}
