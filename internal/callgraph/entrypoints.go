package callgraph

import "strings"

// routeMarker is one decorator/attribute pattern that marks a route handler.
// New frameworks become table rows, not new code paths.
type routeMarker struct {
	pattern   string
	framework string
}

// routeMarkers is checked in priority order; the first matching pattern wins.
var routeMarkers = []routeMarker{
	// FastAPI / Starlette
	{"@app.get", "fastapi"},
	{"@app.post", "fastapi"},
	{"@app.put", "fastapi"},
	{"@app.delete", "fastapi"},
	{"@app.patch", "fastapi"},
	{"@app.websocket", "fastapi"},
	{"@router.", "fastapi"},
	// Flask
	{"@app.route", "flask"},
	{"@bp.route", "flask"},
	{"@blueprint.", "flask"},
	// Django REST
	{"@api_view", "django"},
	{"@action", "django"},
	// NestJS
	{"@Get", "nestjs"},
	{"@Post", "nestjs"},
	{"@Put", "nestjs"},
	{"@Delete", "nestjs"},
	{"@Patch", "nestjs"},
	{"@All", "nestjs"},
	// Spring
	{"@GetMapping", "spring"},
	{"@PostMapping", "spring"},
	{"@PutMapping", "spring"},
	{"@DeleteMapping", "spring"},
	{"@PatchMapping", "spring"},
	{"@RequestMapping", "spring"},
	// Symfony / PHP attributes
	{"#[Route", "symfony"},
	{"@Route", "symfony"},
	// Rust (actix/axum-style attribute macros)
	{"#[get", "actix"},
	{"#[post", "actix"},
	{"#[put", "actix"},
	{"#[delete", "actix"},
}

// controllerSuffixes mark controller-ish class names whose public methods
// are treated as entry points.
var controllerSuffixes = []string{"Controller", "Handler", "Resource", "Endpoint"}

// lifecycleDenylist excludes constructor/lifecycle methods from the
// controller-method heuristic.
var lifecycleDenylist = map[string]bool{
	"__init__":        true,
	"__del__":         true,
	"constructor":     true,
	"init":            true,
	"initialize":      true,
	"setup":           true,
	"set_up":          true,
	"teardown":        true,
	"tear_down":       true,
	"dispose":         true,
	"cleanup":         true,
	"onModuleInit":    true,
	"onModuleDestroy": true,
}

// phpCrudAllowlist restricts PHP controller methods to the conventional
// Laravel resource actions; other public methods on PHP controllers are too
// often internal helpers to classify blindly.
var phpCrudAllowlist = map[string]bool{
	"index":   true,
	"show":    true,
	"store":   true,
	"update":  true,
	"destroy": true,
	"create":  true,
	"edit":    true,
}

// classifyEntryPoints returns, in registration order, every function that
// looks reachable from outside the codebase. The classification is heuristic
// and approximate: false positives and negatives are expected.
func (b *Builder) classifyEntryPoints() []string {
	entryPoints := []string{}
	for _, id := range b.order {
		if isEntryPoint(b.functions[id]) {
			entryPoints = append(entryPoints, id)
		}
	}
	return entryPoints
}

func isEntryPoint(fn *FunctionNode) bool {
	// (a) exported and not a class method
	if fn.IsExported && fn.ClassName == "" {
		return true
	}

	// (b) decorated as a route handler
	if _, ok := routeFramework(fn.Decorators); ok {
		return true
	}

	// (c) public method of a controller-ish class
	if fn.ClassName != "" && fn.IsExported && hasControllerSuffix(fn.ClassName) && !lifecycleDenylist[fn.Name] {
		if fn.Language == "php" {
			return phpCrudAllowlist[fn.Name]
		}
		return true
	}

	// (d) program entry
	return fn.Name == "main" || fn.Name == "__main__"
}

// routeFramework matches a function's decorators against the route-marker
// table and returns the first matching framework tag. Decorators arrive both
// with and without their sigil ("@app.get(...)" from extraction dumps,
// "app.get(...)" from the bundled parsers), so bare ones are normalized.
func routeFramework(decorators []string) (string, bool) {
	for _, dec := range decorators {
		if !strings.HasPrefix(dec, "@") && !strings.HasPrefix(dec, "#[") {
			dec = "@" + dec
		}
		for _, marker := range routeMarkers {
			if strings.Contains(dec, marker.pattern) {
				return marker.framework, true
			}
		}
	}
	return "", false
}

func hasControllerSuffix(className string) bool {
	for _, suffix := range controllerSuffixes {
		if strings.HasSuffix(className, suffix) {
			return true
		}
	}
	return false
}
