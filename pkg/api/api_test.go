package api

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modpack-dev/modpack/pkg/plugin"
)

const reactMap = `{"imports": {"react": "https://esm.sh/react@18"}}`

func TestTransformDevelopment(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:      "/src/app.jsx",
		SourceText:    `import React from "react";` + "\nconst el = <div/>;",
		ImportMapJSON: reactMap,
		Mode:          ModeDevelopment,
	})

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, `import React from "https://esm.sh/react@18";`)
	assert.Contains(t, result.Code, `React.createElement("div", null)`)
	assert.NotEmpty(t, result.Map)

	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, "react", result.Dependencies[0].Specifier)
	assert.Equal(t, "https://esm.sh/react@18", result.Dependencies[0].Resolved)
}

func TestTransformProduction(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:   "/src/app.ts",
		SourceText: `import { helper } from "./util.ts";` + "\nexport const x = helper();",
		Mode:       ModeProduction,
	})

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, `"/src/util.js"`)
	assert.Empty(t, result.Map)
	assert.NotContains(t, result.Code, "$RefreshReg$")
}

func TestTransformMissingFilename(t *testing.T) {
	result := Transform(TransformOptions{SourceText: "let x = 1;"})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Text, "filename")
	assert.Empty(t, result.Code)
}

func TestTransformBadImportMap(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:      "/src/app.js",
		SourceText:    "let x = 1;",
		ImportMapJSON: `{"imports": {"a": "/a.js", "a": "/b.js"}}`,
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Text, "duplicate")
}

func TestTransformParseErrorHasLocation(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:   "/src/bad.js",
		SourceText: "const = ;",
	})

	require.NotEmpty(t, result.Errors)
	require.NotNil(t, result.Errors[0].Location)
	assert.Equal(t, "/src/bad.js", result.Errors[0].Location.File)
	assert.Equal(t, 1, result.Errors[0].Location.Line)
	assert.Empty(t, result.Code)
}

func TestTransformBareSpecifierWarning(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:   "/src/app.js",
		SourceText: `import x from "lodash";`,
	})

	require.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Text, "lodash")
	assert.Contains(t, result.Code, `"lodash"`)
}

func TestTransformPendingWithPluginResolvers(t *testing.T) {
	resolver := plugin.Plugin{
		Name: "test-resolver",
		Resolve: func(args plugin.ResolveArgs) (plugin.ResolveResult, bool) {
			return plugin.ResolveResult{}, false
		},
	}
	result := Transform(TransformOptions{
		Filename:   "/src/app.js",
		SourceText: `import x from "lodash";`,
		Plugins:    []plugin.Plugin{resolver},
	})

	require.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Dependencies, 1)
	assert.True(t, result.Dependencies[0].Pending)
}

func TestTransformCustomPragmas(t *testing.T) {
	result := Transform(TransformOptions{
		Filename:           "/src/view.jsx",
		SourceText:         "const el = <span/>;",
		JSXFactory:         "h",
		JSXFragmentFactory: "Fragment",
		Mode:               ModeProduction,
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, "const el = h(\"span\", null);\n", result.Code)
}

func TestTransformFromRequest(t *testing.T) {
	request := `{
		"filename": "/src/app.jsx",
		"sourceText": "import React from \"react\";\nexport function App() {\n  return <p>ok</p>;\n}",
		"importMap": {"imports": {"react": "https://esm.sh/react@18"}},
		"swcOptions": {"isDev": true}
	}`
	result := TransformFromRequest([]byte(request))

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, `"https://esm.sh/react@18"`)
	assert.Contains(t, result.Code, `$RefreshReg$(App, "App");`)
	assert.NotEmpty(t, result.Map)
}

func TestTransformFromRequestRejectsUnknownFields(t *testing.T) {
	result := TransformFromRequest([]byte(`{"filename": "a.js", "sourceText": "", "minify": true}`))
	require.Len(t, result.Errors, 1)
}

func TestLoaderFor(t *testing.T) {
	sass := plugin.Plugin{
		Name:   "sass",
		Filter: regexp.MustCompile(`\.scss$`),
		Load: func(args plugin.LoadArgs) (plugin.LoadResult, error) {
			return plugin.LoadResult{}, nil
		},
	}
	_, ok := plugin.LoaderFor([]plugin.Plugin{sass}, "/src/a.scss")
	assert.True(t, ok)
	_, ok = plugin.LoaderFor([]plugin.Plugin{sass}, "/src/a.js")
	assert.False(t, ok)
}
