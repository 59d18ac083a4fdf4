package transform

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modpack-dev/modpack/internal/config"
	"github.com/modpack-dev/modpack/internal/logger"
)

func testOptions(filename string, sourceText string, isDev bool, mapJSON string) config.Options {
	options := config.Default()
	options.Filename = filename
	options.SourceText = sourceText
	options.IsDev = isDev
	if mapJSON == "" {
		mapJSON = "{}"
	}
	request := fmt.Sprintf(`{"filename": %q, "sourceText": "", "importMap": %s}`, filename, mapJSON)
	decoded, err := config.Decode([]byte(request))
	if err != nil {
		panic(err)
	}
	options.ImportMap = decoded.ImportMap
	return options
}

const reactMap = `{"imports": {"react": "https://esm.sh/react@18"}}`

func TestRewritesStaticImports(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.js", `import React from "react";`, true, reactMap)

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "import React from \"https://esm.sh/react@18\";\n", result.Code)

	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, "react", result.Dependencies[0].Specifier)
	assert.Equal(t, "https://esm.sh/react@18", result.Dependencies[0].Resolved)
	assert.False(t, result.Dependencies[0].IsDynamic)
}

func TestRewritesExportFromAndStar(t *testing.T) {
	log := logger.NewLog()
	source := "export { a } from \"./a.ts\";\nexport * from \"./b.ts\";"
	options := testOptions("/src/index.ts", source, false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "export { a } from \"/src/a.js\";\nexport * from \"/src/b.js\";\n", result.Code)
	require.Len(t, result.Dependencies, 2)
}

func TestRewritesDynamicImport(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.ts", `const p = import("./lazy.ts");`, false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "const p = import(\"/src/lazy.js\");\n", result.Code)

	require.Len(t, result.Dependencies, 1)
	assert.True(t, result.Dependencies[0].IsDynamic)
}

func TestDynamicImportNonStringUntouched(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.js", `const p = import(name);`, false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "const p = import(name);\n", result.Code)
	assert.Len(t, result.Dependencies, 0)
}

func TestLowersJSXElement(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/view.jsx", `const el = <div id="a">hi</div>;`, false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "const el = React.createElement(\"div\", { id: \"a\" }, \"hi\");\n", result.Code)
}

func TestLowersJSXFragmentAndComponent(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/view.jsx", "const el = <><Widget x={1}/></>;", false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t,
		"const el = React.createElement(React.Fragment, null, React.createElement(Widget, { x: 1 }));\n",
		result.Code)
}

func TestJSXCustomPragmas(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/view.jsx", "const el = <span/>;", false, "")
	options.JSXFactory = "h"
	options.JSXFragmentFactory = "Fragment"

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "const el = h(\"span\", null);\n", result.Code)
}

func TestDevEmitsSourceMap(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.js", "let x = 1;", true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Contains(t, result.Map, "\"version\":3")
	assert.Contains(t, result.Map, "/src/app.js")
}

func TestProdEmitsNoSourceMap(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.js", "let x = 1;", false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "", result.Map)
}

func TestRefreshInstrumentsHookComponent(t *testing.T) {
	log := logger.NewLog()
	source := strings.Join([]string{
		`import { useState } from "react";`,
		`export function App() {`,
		`  const [x, setX] = useState(0);`,
		`  return <div>{x}</div>;`,
		`}`,
	}, "\n")
	options := testOptions("/src/App.jsx", source, true, reactMap)

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)

	sum := md5.Sum([]byte("useState(0);\n"))
	hash := hex.EncodeToString(sum[:])
	expected := strings.Join([]string{
		`var _s0 = $RefreshSig$();`,
		`import { useState } from "https://esm.sh/react@18";`,
		`export function App() {`,
		`  _s0();`,
		`  const [x, setX] = useState(0);`,
		`  return React.createElement("div", null, x);`,
		`}`,
		`_s0(App, "` + hash + `");`,
		`$RefreshReg$(App, "App");`,
	}, "\n") + "\n"
	assert.Equal(t, expected, result.Code)
}

func TestRefreshRegistersArrowComponent(t *testing.T) {
	log := logger.NewLog()
	source := "export const App = () => <div/>;"
	options := testOptions("/src/App.jsx", source, true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Contains(t, result.Code, `$RefreshReg$(App, "App");`)
	assert.NotContains(t, result.Code, "$RefreshSig$")
}

func TestRefreshRegistersClassComponent(t *testing.T) {
	log := logger.NewLog()
	source := strings.Join([]string{
		`export default class App extends React.Component {`,
		`  render() {`,
		`    return <div/>;`,
		`  }`,
		`}`,
	}, "\n")
	options := testOptions("/src/App.jsx", source, true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	expected := strings.Join([]string{
		`export default class App extends React.Component {`,
		`  render() {`,
		`    return React.createElement("div", null);`,
		`  }`,
		`}`,
		`$RefreshReg$(App, "App");`,
	}, "\n") + "\n"
	assert.Equal(t, expected, result.Code)
}

func TestRefreshSkipsUnexportedAndLowercase(t *testing.T) {
	log := logger.NewLog()
	source := strings.Join([]string{
		`function App() {`,
		`  return <div/>;`,
		`}`,
		`export function helper() {`,
		`  return 1;`,
		`}`,
	}, "\n")
	options := testOptions("/src/App.jsx", source, true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.NotContains(t, result.Code, "$RefreshReg$")
	assert.NotContains(t, result.Code, "$RefreshSig$")
}

func TestRefreshCustomHooks(t *testing.T) {
	log := logger.NewLog()
	source := strings.Join([]string{
		`export function App() {`,
		`  const theme = useTheme();`,
		`  return <div/>;`,
		`}`,
	}, "\n")
	options := testOptions("/src/App.jsx", source, true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Contains(t, result.Code, "false, function() {\n  return [useTheme];\n}")
}

func TestProdSkipsRefresh(t *testing.T) {
	log := logger.NewLog()
	source := strings.Join([]string{
		`export function App() {`,
		`  const [x, setX] = useState(0);`,
		`  return <div/>;`,
		`}`,
	}, "\n")
	options := testOptions("/src/App.jsx", source, false, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.NotContains(t, result.Code, "$RefreshReg$")
	assert.NotContains(t, result.Code, "$RefreshSig$")
}

func TestDevAndProdInstrumentationSplit(t *testing.T) {
	source := `import { x } from "foo";` + "\nexport const A = () => <div/>;"
	mapJSON := `{"imports": {"foo": "/deps/foo.js"}}`

	log := logger.NewLog()
	dev, err := Transpile(DefaultEngine, log, testOptions("/src/a.jsx", source, true, mapJSON), false)
	require.NoError(t, err)
	assert.Contains(t, dev.Code, `from "/deps/foo.js"`)
	assert.Contains(t, dev.Code, `React.createElement("div", null)`)
	assert.Contains(t, dev.Code, `$RefreshReg$(A, "A");`)

	log = logger.NewLog()
	prod, err := Transpile(DefaultEngine, log, testOptions("/src/a.jsx", source, false, mapJSON), false)
	require.NoError(t, err)
	assert.Contains(t, prod.Code, `from "/deps/foo.js"`)
	assert.NotContains(t, prod.Code, "$RefreshReg$")
}

func TestProdOutputIsStableOnRetranspile(t *testing.T) {
	source := `import { x } from "foo";` + "\nexport const y = x + 1;"
	mapJSON := `{"imports": {"foo": "/deps/foo.js"}}`

	log := logger.NewLog()
	first, err := Transpile(DefaultEngine, log, testOptions("/src/a.js", source, false, mapJSON), false)
	require.NoError(t, err)

	// The output has no JSX and no unmapped bare specifiers left, so running
	// it through again changes nothing.
	log = logger.NewLog()
	second, err := Transpile(DefaultEngine, log, testOptions("/src/a.js", first.Code, false, "{}"), false)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Empty(t, log.Msgs())
}

func TestParseErrorReturnsErrParse(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/bad.js", "const = ;", true, "")

	_, err := Transpile(DefaultEngine, log, options, false)
	require.ErrorIs(t, err, ErrParse)
	assert.True(t, log.HasErrors())
}

func TestBareSpecifierWarning(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.js", `import x from "lodash";`, true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "import x from \"lodash\";\n", result.Code)

	msgs := log.Msgs()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Warning, msgs[0].Kind)
}

func TestTypeOnlyImportNotResolved(t *testing.T) {
	log := logger.NewLog()
	options := testOptions("/src/app.ts", `import type { T } from "./types.ts";`+"\nlet x = 1;", true, "")

	result, err := Transpile(DefaultEngine, log, options, false)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;\n", result.Code)
	assert.Len(t, result.Dependencies, 0)
}
