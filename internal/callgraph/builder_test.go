package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/drift/internal/extraction"
)

// Test Plan for Builder:
// - Same-file call resolves as local-function with confidence 0.95
// - self receiver restricts resolution to the enclosing class
// - Receiver token resolves to a class (snake_case promoted to PascalCase)
// - A method declared on its class but extracted without a class name is adopted
// - Factory-style DI call resolves through its argument
// - PascalCase call resolves to a constructor
// - Imported symbol resolves to an exported function elsewhere
// - Bare-name fallback is fuzzy with capped candidates
// - A call matched by no strategy stays attached but unresolved
// - Calls are tagged with the innermost containing function
// - Calls outside any function are dropped
// - Duplicate function ids are skipped
// - Entry points and data accessors are classified in registration order
// - Stats reflect resolution outcomes
// - Build can run only once

func simpleFunc(name string, start, end int) extraction.FunctionInfo {
	return extraction.FunctionInfo{
		Name:          name,
		QualifiedName: name,
		StartLine:     start,
		EndLine:       end,
	}
}

func methodFunc(class, name string, start, end int) extraction.FunctionInfo {
	return extraction.FunctionInfo{
		Name:          name,
		QualifiedName: class + "." + name,
		ClassName:     class,
		StartLine:     start,
		EndLine:       end,
	}
}

func TestBuilder_Resolve_LocalFunction(t *testing.T) {
	t.Parallel()

	// Test: Same-file call resolves as local-function with confidence 0.95
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "app.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("a", 1, 5),
			simpleFunc("b", 7, 10),
		},
		Calls: []extraction.Call{
			{Callee: "b", Line: 3, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	caller := graph.Function(FunctionID("app.py", "a", 1))
	require.NotNil(t, caller)
	require.Len(t, caller.Calls, 1)

	site := caller.Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonLocalFunction, site.Reason)
	assert.Equal(t, 0.95, site.Confidence)
	assert.Equal(t, FunctionID("app.py", "b", 7), site.CalleeID)

	callee := graph.Function(FunctionID("app.py", "b", 7))
	require.Len(t, callee.CalledBy, 1)
	assert.Equal(t, caller.ID, callee.CalledBy[0].CallerID)
}

func TestBuilder_Resolve_SelfReceiver(t *testing.T) {
	t.Parallel()

	// Test: self receiver restricts resolution to the enclosing class
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "service.py",
		Language: extraction.LangPython,
		Classes: []extraction.ClassInfo{
			{Name: "UserService", StartLine: 1, EndLine: 30, Methods: []string{"find", "validate"}},
		},
		Functions: []extraction.FunctionInfo{
			methodFunc("UserService", "find", 10, 14),
			methodFunc("UserService", "validate", 16, 20),
			// A same-named top-level function must not win over the method.
			simpleFunc("validate", 33, 36),
		},
		Calls: []extraction.Call{
			{Callee: "validate", Receiver: "self", Line: 12, ArgCount: 1},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("service.py", "UserService.find", 10)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonLocalFunction, site.Reason)
	assert.Equal(t, FunctionID("service.py", "UserService.validate", 16), site.CalleeID)
}

func TestBuilder_Resolve_MethodByReceiver(t *testing.T) {
	t.Parallel()

	// Test: Receiver token resolves to a class (snake_case promoted to PascalCase)
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "repo.py",
		Language: extraction.LangPython,
		Classes: []extraction.ClassInfo{
			{Name: "UserRepo", StartLine: 1, EndLine: 20},
		},
		Functions: []extraction.FunctionInfo{
			methodFunc("UserRepo", "save", 5, 10),
		},
	})
	b.AddFile(extraction.FileExtraction{
		FilePath: "handler.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("handle", 1, 10),
		},
		Calls: []extraction.Call{
			{Callee: "save", Receiver: "user_repo", Line: 5, ArgCount: 1},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("handler.py", "handle", 1)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonMethodByReceiver, site.Reason)
	assert.Equal(t, 0.85, site.Confidence)
	assert.Equal(t, FunctionID("repo.py", "UserRepo.save", 5), site.CalleeID)
}

func TestBuilder_ClassDeclaredMethodAdoption(t *testing.T) {
	t.Parallel()

	// Test: A method listed on its class but extracted without a class name
	// is adopted by the declaring class and resolves through the receiver
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "repo.py",
		Language: extraction.LangPython,
		Classes: []extraction.ClassInfo{
			{Name: "OrderRepo", StartLine: 1, EndLine: 20, Methods: []string{"save"}},
		},
		Functions: []extraction.FunctionInfo{
			{Name: "save", StartLine: 5, EndLine: 9},
			// Same name outside the class body stays top-level.
			{Name: "save", QualifiedName: "save", StartLine: 22, EndLine: 26},
		},
	})
	b.AddFile(extraction.FileExtraction{
		FilePath: "handler.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("handle", 1, 10),
		},
		Calls: []extraction.Call{
			{Callee: "save", Receiver: "order_repo", Line: 4, ArgCount: 1},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	adopted := graph.Function(FunctionID("repo.py", "OrderRepo.save", 5))
	require.NotNil(t, adopted)
	assert.Equal(t, "OrderRepo", adopted.ClassName)

	topLevel := graph.Function(FunctionID("repo.py", "save", 22))
	require.NotNil(t, topLevel)
	assert.Empty(t, topLevel.ClassName)

	site := graph.Function(FunctionID("handler.py", "handle", 1)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonMethodByReceiver, site.Reason)
	assert.Equal(t, 0.85, site.Confidence)
	assert.Equal(t, adopted.ID, site.CalleeID)
}

func TestBuilder_Resolve_DependencyInjection(t *testing.T) {
	t.Parallel()

	// Test: Factory-style DI call resolves through its argument
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "db.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("get_db", 1, 5),
		},
	})
	b.AddFile(extraction.FileExtraction{
		FilePath: "api.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("list_users", 1, 8),
		},
		Calls: []extraction.Call{
			{Callee: "Depends", Args: []string{"get_db"}, ArgCount: 1, Line: 2},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("api.py", "list_users", 1)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonDependencyInject, site.Reason)
	assert.Equal(t, 0.9, site.Confidence)
	assert.Equal(t, FunctionID("db.py", "get_db", 1), site.CalleeID)
}

func TestBuilder_Resolve_ConstructorCall(t *testing.T) {
	t.Parallel()

	// Test: PascalCase call resolves to a constructor
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "service.py",
		Language: extraction.LangPython,
		Classes: []extraction.ClassInfo{
			{Name: "UserService", StartLine: 1, EndLine: 20},
		},
		Functions: []extraction.FunctionInfo{
			{
				Name: "__init__", QualifiedName: "UserService.__init__",
				ClassName: "UserService", IsConstructor: true,
				StartLine: 2, EndLine: 5,
			},
		},
	})
	b.AddFile(extraction.FileExtraction{
		FilePath: "main.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("main", 1, 5),
		},
		Calls: []extraction.Call{
			{Callee: "UserService", Line: 2, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("main.py", "main", 1)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonDependencyInject, site.Reason)
	assert.Equal(t, FunctionID("service.py", "UserService.__init__", 2), site.CalleeID)
}

func TestBuilder_Resolve_ImportedFunction(t *testing.T) {
	t.Parallel()

	// Test: Imported symbol resolves to an exported function elsewhere
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "lib.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			{Name: "helper", QualifiedName: "helper", IsExported: true, StartLine: 1, EndLine: 4},
		},
	})
	b.AddFile(extraction.FileExtraction{
		FilePath: "app.py",
		Language: extraction.LangPython,
		Imports: []extraction.ImportInfo{
			{Source: "lib", Named: []string{"helper"}, Line: 1},
		},
		Functions: []extraction.FunctionInfo{
			simpleFunc("run", 3, 8),
		},
		Calls: []extraction.Call{
			{Callee: "helper", Line: 5, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("app.py", "run", 3)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonImportedFunction, site.Reason)
	assert.Equal(t, 0.8, site.Confidence)
	assert.Equal(t, FunctionID("lib.py", "helper", 1), site.CalleeID)
}

func TestBuilder_Resolve_FuzzyName(t *testing.T) {
	t.Parallel()

	// Test: Bare-name fallback is fuzzy with capped candidates
	b := NewBuilder("/proj")
	for _, file := range []string{"a.py", "b.py", "c.py", "d.py"} {
		b.AddFile(extraction.FileExtraction{
			FilePath:  file,
			Language:  extraction.LangPython,
			Functions: []extraction.FunctionInfo{simpleFunc("util", 1, 3)},
		})
	}
	b.AddFile(extraction.FileExtraction{
		FilePath:  "main.py",
		Language:  extraction.LangPython,
		Functions: []extraction.FunctionInfo{simpleFunc("run", 1, 5)},
		Calls: []extraction.Call{
			{Callee: "util", Line: 2, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("main.py", "run", 1)).Calls[0]
	assert.True(t, site.Resolved)
	assert.Equal(t, ReasonFuzzyName, site.Reason)
	assert.Equal(t, 0.3, site.Confidence)
	// Capped at three candidates, in registration order.
	require.Len(t, site.Candidates, 3)
	assert.Equal(t, FunctionID("a.py", "util", 1), site.Candidates[0])
	assert.Equal(t, FunctionID("b.py", "util", 1), site.Candidates[1])
	assert.Equal(t, FunctionID("c.py", "util", 1), site.Candidates[2])
}

func TestBuilder_Resolve_Unresolved(t *testing.T) {
	t.Parallel()

	// Test: A call matched by no strategy stays attached but unresolved
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath:  "app.py",
		Language:  extraction.LangPython,
		Functions: []extraction.FunctionInfo{simpleFunc("run", 1, 5)},
		Calls: []extraction.Call{
			{Callee: "missing", Line: 2, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	site := graph.Function(FunctionID("app.py", "run", 1)).Calls[0]
	assert.False(t, site.Resolved)
	assert.Equal(t, ReasonUnresolved, site.Reason)
	assert.Empty(t, site.CalleeID)
	assert.Empty(t, site.Candidates)
	assert.Equal(t, 1, graph.Stats.UnresolvedCalls)
}

func TestBuilder_InnermostContainingFunction(t *testing.T) {
	t.Parallel()

	// Test: Calls are tagged with the innermost containing function
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "nested.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("outer", 1, 20),
			{Name: "inner", QualifiedName: "outer.inner", StartLine: 5, EndLine: 10},
			simpleFunc("target", 22, 25),
		},
		Calls: []extraction.Call{
			{Callee: "target", Line: 7, ArgCount: 0},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	inner := graph.Function(FunctionID("nested.py", "outer.inner", 5))
	require.Len(t, inner.Calls, 1)
	assert.Empty(t, graph.Function(FunctionID("nested.py", "outer", 1)).Calls)
}

func TestBuilder_CallOutsideAnyFunctionIsDropped(t *testing.T) {
	t.Parallel()

	// Test: Calls outside any function are dropped
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath:  "app.py",
		Language:  extraction.LangPython,
		Functions: []extraction.FunctionInfo{simpleFunc("run", 10, 15)},
		Calls: []extraction.Call{
			{Callee: "run", Line: 1, ArgCount: 0}, // module level
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 0, graph.Stats.TotalCalls)
}

func TestBuilder_DuplicateFunctionIDSkipped(t *testing.T) {
	t.Parallel()

	// Test: Duplicate function ids are skipped
	b := NewBuilder("/proj")
	fx := extraction.FileExtraction{
		FilePath:  "app.py",
		Language:  extraction.LangPython,
		Functions: []extraction.FunctionInfo{simpleFunc("run", 1, 5), simpleFunc("run", 1, 5)},
	}
	b.AddFile(fx)

	graph, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, graph.Stats.TotalFunctions)
}

func TestBuilder_EntryPointClassification(t *testing.T) {
	t.Parallel()

	// Test: Entry points and data accessors are classified in registration order
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "api.py",
		Language: extraction.LangPython,
		Classes: []extraction.ClassInfo{
			{Name: "UserController", StartLine: 1, EndLine: 40},
		},
		Functions: []extraction.FunctionInfo{
			{Name: "exported_fn", QualifiedName: "exported_fn", IsExported: true, StartLine: 1, EndLine: 3},
			{Name: "_private_fn", QualifiedName: "_private_fn", StartLine: 5, EndLine: 7},
			{
				Name: "get_users", QualifiedName: "get_users",
				Decorators: []string{`app.get("/users")`},
				StartLine:  9, EndLine: 12,
			},
			{
				Name: "show", QualifiedName: "UserController.show", ClassName: "UserController",
				IsExported: true, StartLine: 14, EndLine: 18,
			},
			{
				Name: "__init__", QualifiedName: "UserController.__init__", ClassName: "UserController",
				IsExported: true, IsConstructor: true, StartLine: 20, EndLine: 22,
			},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	want := []string{
		FunctionID("api.py", "exported_fn", 1),
		FunctionID("api.py", "get_users", 9),
		FunctionID("api.py", "UserController.show", 14),
	}
	assert.Equal(t, want, graph.EntryPoints)
}

func TestBuilder_PHPControllerCrudAllowlist(t *testing.T) {
	t.Parallel()

	// Test: PHP controller methods outside the CRUD allowlist are not entry points
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "UserController.php",
		Language: extraction.LangPHP,
		Classes: []extraction.ClassInfo{
			{Name: "UserController", StartLine: 1, EndLine: 40},
		},
		Functions: []extraction.FunctionInfo{
			{
				Name: "index", QualifiedName: "UserController.index", ClassName: "UserController",
				IsExported: true, StartLine: 3, EndLine: 8,
			},
			{
				Name: "helper", QualifiedName: "UserController.helper", ClassName: "UserController",
				IsExported: true, StartLine: 10, EndLine: 15,
			},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{FunctionID("UserController.php", "UserController.index", 3)}, graph.EntryPoints)
}

func TestBuilder_DataAccessAssociation(t *testing.T) {
	t.Parallel()

	// Test: Data access points attach to the innermost containing function
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath:  "db.py",
		Language:  extraction.LangPython,
		Functions: []extraction.FunctionInfo{simpleFunc("load_users", 1, 10)},
	})
	b.AddDataAccess("db.py", []extraction.DataAccessPoint{
		{Table: "users", Fields: []string{"email"}, Operation: extraction.OpRead, File: "db.py", Line: 5},
		{Table: "users", Operation: extraction.OpRead, File: "db.py", Line: 50}, // outside any function
	})

	graph, err := b.Build()
	require.NoError(t, err)

	id := FunctionID("db.py", "load_users", 1)
	require.Len(t, graph.Function(id).DataAccess, 1)
	assert.Equal(t, []string{id}, graph.DataAccessors)
	assert.Equal(t, 1, graph.Stats.DataAccessors)
}

func TestBuilder_Stats(t *testing.T) {
	t.Parallel()

	// Test: Stats reflect resolution outcomes
	b := NewBuilder("/proj")
	b.AddFile(extraction.FileExtraction{
		FilePath: "app.py",
		Language: extraction.LangPython,
		Functions: []extraction.FunctionInfo{
			simpleFunc("a", 1, 5),
			simpleFunc("b", 7, 10),
		},
		Calls: []extraction.Call{
			{Callee: "b", Line: 2},
			{Callee: "nope", Line: 3},
		},
	})

	graph, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 2, graph.Stats.TotalFunctions)
	assert.Equal(t, 2, graph.Stats.TotalCalls)
	assert.Equal(t, 1, graph.Stats.ResolvedCalls)
	assert.Equal(t, 1, graph.Stats.UnresolvedCalls)
	assert.Equal(t, 0.5, graph.Stats.ResolutionRate)
	assert.Equal(t, map[string]int{"python": 2}, graph.Stats.ByLanguage)
}

func TestBuilder_BuildTwiceFails(t *testing.T) {
	t.Parallel()

	// Test: Build can run only once
	b := NewBuilder("/proj")
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}
