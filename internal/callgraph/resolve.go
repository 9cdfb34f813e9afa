package callgraph

import (
	"strings"
)

// fuzzyCandidateCap bounds how many same-named functions a fuzzy match keeps.
const fuzzyCandidateCap = 3

// serviceLocatorReceivers are receiver-name substrings that mark a
// service-locator style call (container.get(...), injector.resolve(...)).
var serviceLocatorReceivers = []string{"container", "injector", "locator", "registry", "services", "provider"}

// serviceLocatorMethods are callee names used by service-locator idioms.
var serviceLocatorMethods = map[string]bool{
	"get":     true,
	"resolve": true,
	"make":    true,
	"lookup":  true,
}

// factoryCallees are callee-name substrings that mark a single-argument
// factory-style call whose argument names the injected function
// (e.g. FastAPI's Depends(get_db)).
var factoryCallees = []string{"depends", "inject", "provide", "factory", "bind", "wire"}

// resolution is the outcome of one strategy for one pending call.
type resolution struct {
	candidates []*FunctionNode
	confidence float64
	reason     ResolutionReason
}

// resolveCall resolves one pending call through the ordered strategy chain.
// The first strategy yielding at least one candidate wins; candidates are
// never merged across strategies. The resulting CallSite is attached to the
// caller's Calls and to every candidate's CalledBy.
func (b *Builder) resolveCall(p pendingCall) {
	site := &CallSite{
		CallerID:   p.caller.ID,
		CalleeName: p.call.Callee,
		Receiver:   p.call.Receiver,
		File:       p.file,
		Line:       p.call.Line,
		Column:     p.call.Column,
		Candidates: []string{},
		Reason:     ReasonUnresolved,
		ArgCount:   p.call.ArgCount,
	}

	strategies := []func(pendingCall) *resolution{
		b.resolveLocalFunction,
		b.resolveMethodByReceiver,
		b.resolveDependencyInjection,
		b.resolveImportedFunction,
		b.resolveFuzzyName,
	}

	for _, strategy := range strategies {
		res := strategy(p)
		if res == nil || len(res.candidates) == 0 {
			continue
		}
		site.Resolved = true
		site.Confidence = res.confidence
		site.Reason = res.reason
		for _, cand := range res.candidates {
			site.Candidates = append(site.Candidates, cand.ID)
		}
		site.CalleeID = res.candidates[0].ID

		for _, cand := range res.candidates {
			cand.CalledBy = append(cand.CalledBy, site)
		}
		break
	}

	p.caller.Calls = append(p.caller.Calls, site)
}

// resolveLocalFunction is strategy 1: a same-file match with confidence 0.95.
//
// A receiver of self/this restricts the search to methods of the caller's
// enclosing class. Plain calls prefer, in order: a function nested in the
// caller's own lexical scope, a sibling nested function sharing the caller's
// parent scope, then any top-level same-named function in the file. Calls
// through any other receiver are left to later strategies.
func (b *Builder) resolveLocalFunction(p pendingCall) *resolution {
	callee := p.call.Callee
	receiver := p.call.Receiver

	if isSelfReceiver(receiver) {
		if p.caller.ClassName == "" {
			return nil
		}
		rec := b.classes[p.caller.ClassName]
		if rec == nil {
			return nil
		}
		if methods := rec.methods[callee]; len(methods) > 0 {
			return &resolution{candidates: dedupe(methods), confidence: 0.95, reason: ReasonLocalFunction}
		}
		return nil
	}

	if receiver != "" {
		return nil
	}

	// Nested in the caller's own scope.
	nestedQName := p.caller.QualifiedName + "." + callee
	if cands := b.sameFileByQualifiedName(p.file, nestedQName); len(cands) > 0 {
		return &resolution{candidates: cands, confidence: 0.95, reason: ReasonLocalFunction}
	}

	// Sibling nested function sharing the caller's parent scope.
	if idx := strings.LastIndex(p.caller.QualifiedName, "."); idx > 0 {
		siblingQName := p.caller.QualifiedName[:idx] + "." + callee
		if cands := b.sameFileByQualifiedName(p.file, siblingQName); len(cands) > 0 {
			return &resolution{candidates: cands, confidence: 0.95, reason: ReasonLocalFunction}
		}
	}

	// Any top-level same-named function in the file.
	var topLevel []*FunctionNode
	for _, fn := range b.byFile[p.file] {
		if fn.Name == callee && fn.ClassName == "" && fn.QualifiedName == fn.Name {
			topLevel = append(topLevel, fn)
		}
	}
	if len(topLevel) > 0 {
		return &resolution{candidates: topLevel, confidence: 0.95, reason: ReasonLocalFunction}
	}
	return nil
}

// resolveMethodByReceiver is strategy 2: resolve the receiver token to a
// class name (exact, or snake_case promoted to PascalCase) and match methods
// of that name on it. When no class resolves, fall back to any method with
// the matching name across all classes. Confidence 0.85 for a unique match,
// 0.6 when ambiguous.
func (b *Builder) resolveMethodByReceiver(p pendingCall) *resolution {
	receiver := p.call.Receiver
	if receiver == "" {
		return nil
	}

	rec := b.classes[receiver]
	if rec == nil {
		rec = b.classes[snakeToPascal(receiver)]
	}

	var methods []*FunctionNode
	if rec != nil {
		methods = rec.methods[p.call.Callee]
	} else {
		for _, id := range b.order {
			fn := b.functions[id]
			if fn.ClassName != "" && fn.Name == p.call.Callee {
				methods = append(methods, fn)
			}
		}
	}

	if len(methods) == 0 {
		return nil
	}
	confidence := 0.85
	if len(methods) > 1 {
		confidence = 0.6
	}
	return &resolution{candidates: dedupe(methods), confidence: confidence, reason: ReasonMethodByReceiver}
}

// resolveDependencyInjection is strategy 3, covering DI idioms: factory
// calls whose single argument names a function, PascalCase constructor
// calls, and receiver-based service-locator lookups. Confidence 0.9 for a
// unique match, 0.7 when ambiguous.
func (b *Builder) resolveDependencyInjection(p pendingCall) *resolution {
	callee := p.call.Callee

	// Factory-style: Depends(get_db), inject(make_session), ...
	if p.call.ArgCount == 1 && len(p.call.Args) > 0 && matchesAny(strings.ToLower(callee), factoryCallees) {
		arg := trimQuotes(p.call.Args[0])
		if cands := b.byName[arg]; len(cands) > 0 {
			return diResolution(cands)
		}
	}

	// PascalCase call matched against a known constructor: UserService(...).
	if isPascalCase(callee) {
		if rec := b.classes[callee]; rec != nil {
			if ctors := constructorsOf(rec); len(ctors) > 0 {
				return diResolution(ctors)
			}
		}
	}

	// Service locator: container.get("UserService"), injector.resolve(...).
	if p.call.Receiver != "" && serviceLocatorMethods[strings.ToLower(callee)] &&
		matchesAny(strings.ToLower(p.call.Receiver), serviceLocatorReceivers) && len(p.call.Args) > 0 {
		requested := trimQuotes(p.call.Args[0])
		rec := b.classes[requested]
		if rec == nil {
			rec = b.classes[snakeToPascal(requested)]
		}
		if rec != nil {
			if ctors := constructorsOf(rec); len(ctors) > 0 {
				return diResolution(ctors)
			}
		}
	}

	return nil
}

// resolveImportedFunction is strategy 4: the callee matches an imported
// symbol name and a same-named exported function exists in the graph. No
// module-path resolution is attempted. Confidence 0.8.
func (b *Builder) resolveImportedFunction(p pendingCall) *resolution {
	imported := b.imports[p.file]
	if imported == nil || !imported[p.call.Callee] {
		return nil
	}

	var exported []*FunctionNode
	for _, fn := range b.byName[p.call.Callee] {
		if fn.IsExported && fn.ClassName == "" {
			exported = append(exported, fn)
		}
	}
	if len(exported) == 0 {
		return nil
	}
	return &resolution{candidates: exported, confidence: 0.8, reason: ReasonImportedFunction}
}

// resolveFuzzyName is strategy 5: any function anywhere sharing the bare
// name, capped at three candidates in registration order. Confidence 0.5 for
// a unique match, 0.3 when ambiguous.
func (b *Builder) resolveFuzzyName(p pendingCall) *resolution {
	cands := b.byName[p.call.Callee]
	if len(cands) == 0 {
		return nil
	}
	confidence := 0.5
	if len(cands) > 1 {
		confidence = 0.3
	}
	if len(cands) > fuzzyCandidateCap {
		cands = cands[:fuzzyCandidateCap]
	}
	return &resolution{candidates: cands, confidence: confidence, reason: ReasonFuzzyName}
}

func diResolution(cands []*FunctionNode) *resolution {
	confidence := 0.9
	if len(cands) > 1 {
		confidence = 0.7
	}
	return &resolution{candidates: dedupe(cands), confidence: confidence, reason: ReasonDependencyInject}
}

// constructorsOf returns the constructor nodes of a class: explicitly marked
// constructors first, otherwise conventionally named ones.
func constructorsOf(rec *classRecord) []*FunctionNode {
	var ctors []*FunctionNode
	for _, methods := range rec.methods {
		for _, m := range methods {
			if m.IsConstructor {
				ctors = append(ctors, m)
			}
		}
	}
	if len(ctors) > 0 {
		return ctors
	}
	for _, name := range []string{"__init__", "constructor", "new"} {
		if methods := rec.methods[name]; len(methods) > 0 {
			ctors = append(ctors, methods...)
		}
	}
	return ctors
}

func (b *Builder) sameFileByQualifiedName(file, qname string) []*FunctionNode {
	var out []*FunctionNode
	for _, fn := range b.byFile[file] {
		if fn.QualifiedName == qname {
			out = append(out, fn)
		}
	}
	return out
}

func isSelfReceiver(receiver string) bool {
	return receiver == "self" || receiver == "this"
}

func isPascalCase(name string) bool {
	if name == "" {
		return false
	}
	first := name[0]
	return first >= 'A' && first <= 'Z' && !strings.Contains(name, "_")
}

// snakeToPascal promotes a snake_case receiver token to the PascalCase class
// name it conventionally instantiates: user_service -> UserService.
func snakeToPascal(s string) string {
	parts := strings.Split(s, "_")
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

func matchesAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}

func dedupe(nodes []*FunctionNode) []*FunctionNode {
	seen := make(map[string]bool, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}
