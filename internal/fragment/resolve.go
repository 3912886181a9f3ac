package fragment

// Resolve appends to operationText every fragment definition it needs,
// transitively, that it does not already define inline. The closure comes
// from the dependency graph and each fragment is appended at most once, with
// dependencies ahead of the fragments spreading them. Spreads of unknown
// fragments are left alone; this is best-effort expansion, not validation.
// Text that already carries all its fragments is returned unchanged.
func (r *Registry) Resolve(operationText string) string {
	inline := definedNames(operationText)

	needed := make(map[string]bool)
	for _, name := range spreads(operationText) {
		if inline[name] || !r.graph.Has(name) {
			continue
		}
		needed[name] = true
		for _, dep := range r.graph.Dependencies(name) {
			needed[dep] = true
		}
	}
	if len(needed) == 0 {
		return operationText
	}

	var appended []string
	for _, name := range r.order {
		if !needed[name] || inline[name] {
			continue
		}
		def, err := r.Definition(name)
		if err != nil {
			r.logger.Warn("skipping fragment with unreadable body",
				"fragment", name, "used_by", r.graph.Dependents(name), "error", err)
			continue
		}
		appended = append(appended, def)
	}

	if len(appended) == 0 {
		return operationText
	}
	return joinDefinitions(operationText, appended)
}
