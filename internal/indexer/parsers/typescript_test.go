package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/drift/internal/extraction"
)

// Test Plan for the TypeScript parser:
// - Imports cover default, named, aliased, and namespace clauses
// - Exported declarations are flagged; plain ones are not
// - Class methods are qualified and private modifiers hide them
// - Arrow functions bound to a const are extracted
// - Calls, method calls, and new-expressions record callee and receiver
// - The same parser accepts plain JavaScript

const typescriptSample = `import express from "express";
import { findUser, save as persist } from "./repo";
import * as utils from "./utils";

export class UserController {
  constructor(private repo: Repo) {}

  async show(id: string) {
    const user = await findUser(id);
    return this.render(user);
  }

  private render(user: User) {
    return utils.format(user);
  }
}

export function makeApp() {
  return new UserController(repo);
}

const parse = (raw: string) => JSON.parse(raw);

function internal() {
  return 1;
}
`

func parseTypeScript(t *testing.T) *extraction.FileExtraction {
	t.Helper()
	parser, ok := For(extraction.LangTypeScript)
	require.True(t, ok)

	out, err := parser.Parse(context.Background(), "app.ts", []byte(typescriptSample))
	require.NoError(t, err)
	return out
}

func TestTypeScriptParser_Imports(t *testing.T) {
	t.Parallel()

	out := parseTypeScript(t)

	// Test: Imports cover default, named, aliased, and namespace clauses
	require.Len(t, out.Imports, 3)

	assert.Equal(t, "express", out.Imports[0].Source)
	assert.Equal(t, "express", out.Imports[0].Default)

	assert.Equal(t, "./repo", out.Imports[1].Source)
	assert.Equal(t, []string{"findUser", "persist"}, out.Imports[1].Named)

	assert.Equal(t, "./utils", out.Imports[2].Source)
	assert.Equal(t, "utils", out.Imports[2].Namespace)
}

func TestTypeScriptParser_Functions(t *testing.T) {
	t.Parallel()

	out := parseTypeScript(t)

	// Test: Exported declarations are flagged; plain ones are not
	makeApp := functionByName(out, "makeApp")
	require.NotNil(t, makeApp)
	assert.True(t, makeApp.IsExported)
	assert.Equal(t, "", makeApp.ClassName)

	internal := functionByName(out, "internal")
	require.NotNil(t, internal)
	assert.False(t, internal.IsExported)

	// Test: Class methods are qualified and private modifiers hide them
	show := functionByName(out, "show")
	require.NotNil(t, show)
	assert.Equal(t, "UserController.show", show.QualifiedName)
	assert.Equal(t, "UserController", show.ClassName)
	assert.True(t, show.IsExported)
	assert.True(t, show.IsAsync)

	render := functionByName(out, "render")
	require.NotNil(t, render)
	assert.False(t, render.IsExported)

	ctor := functionByName(out, "constructor")
	require.NotNil(t, ctor)
	assert.True(t, ctor.IsConstructor)

	// Test: Arrow functions bound to a const are extracted
	parse := functionByName(out, "parse")
	require.NotNil(t, parse)
	assert.False(t, parse.IsExported)
	require.Len(t, parse.Parameters, 1)
	assert.Equal(t, "raw", parse.Parameters[0].Name)
}

func TestTypeScriptParser_Classes(t *testing.T) {
	t.Parallel()

	out := parseTypeScript(t)

	require.Len(t, out.Classes, 1)
	cls := out.Classes[0]
	assert.Equal(t, "UserController", cls.Name)
	assert.True(t, cls.IsExported)
	assert.Contains(t, cls.Methods, "show")
	assert.Contains(t, cls.Methods, "render")
}

func TestTypeScriptParser_Calls(t *testing.T) {
	t.Parallel()

	out := parseTypeScript(t)

	// Test: Calls, method calls, and new-expressions record callee and receiver
	var findCall, renderCall, newCall *extraction.Call
	for i := range out.Calls {
		switch out.Calls[i].Callee {
		case "findUser":
			findCall = &out.Calls[i]
		case "render":
			renderCall = &out.Calls[i]
		case "UserController":
			newCall = &out.Calls[i]
		}
	}

	require.NotNil(t, findCall)
	assert.Empty(t, findCall.Receiver)
	assert.Equal(t, 1, findCall.ArgCount)

	require.NotNil(t, renderCall)
	assert.Equal(t, "this", renderCall.Receiver)

	require.NotNil(t, newCall)
	assert.Equal(t, 1, newCall.ArgCount)
}

func TestTypeScriptParser_PlainJavaScript(t *testing.T) {
	t.Parallel()

	// Test: The same parser accepts plain JavaScript
	parser, ok := For(extraction.LangJavaScript)
	require.True(t, ok)

	src := `function greet(name) { return "hi " + name; }
const shout = (s) => s.toUpperCase();
greet("dev");
`
	out, err := parser.Parse(context.Background(), "app.js", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, extraction.LangJavaScript, out.Language)

	greet := functionByName(out, "greet")
	require.NotNil(t, greet)
	require.Len(t, greet.Parameters, 1)
	assert.Equal(t, "name", greet.Parameters[0].Name)

	require.NotNil(t, functionByName(out, "shout"))
}
