package js_printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modpack-dev/modpack/internal/js_parser"
	"github.com/modpack-dev/modpack/internal/logger"
)

func expectPrintedWithOptions(t *testing.T, contents string, expected string, options js_parser.Options) {
	t.Helper()
	log := logger.NewLog()
	source := &logger.Source{
		KeyPath:    logger.Path{Text: "<test>"},
		PrettyPath: "<test>",
		Contents:   contents,
	}
	tree, ok := js_parser.Parse(log, source, options)
	require.True(t, ok, "parse failed: %v", log.Msgs())

	result, err := Print(&tree, Options{})
	require.NoError(t, err)
	assert.Equal(t, expected, string(result.JS))
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedWithOptions(t, contents, expected, js_parser.Options{})
}

func expectPrintedTS(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedWithOptions(t, contents, expected, js_parser.Options{TS: true})
}

func TestDeclarations(t *testing.T) {
	expectPrinted(t, "let x = 1;", "let x = 1;\n")
	expectPrinted(t, "const a = 1, b = 2;", "const a = 1, b = 2;\n")
	expectPrinted(t, "var x;", "var x;\n")
	expectPrinted(t, "const { a, b: c } = d;", "const { a, b: c } = d;\n")
	expectPrinted(t, "const [x, y] = z;", "const [x, y] = z;\n")
	expectPrinted(t, "const [, x] = z;", "const [, x] = z;\n")
	expectPrinted(t, "const { a = 1, ...rest } = d;", "const { a = 1, ...rest } = d;\n")
}

func TestExpressions(t *testing.T) {
	expectPrinted(t, "console.log(\"hi\");", "console.log(\"hi\");\n")
	expectPrinted(t, "a = b + c * d;", "a = b + c * d;\n")
	expectPrinted(t, "(a + b) * c;", "(a + b) * c;\n")
	expectPrinted(t, "a ? b : c;", "a ? b : c;\n")
	expectPrinted(t, "a ?? b;", "a ?? b;\n")
	expectPrinted(t, "a?.b;", "a?.b;\n")
	expectPrinted(t, "a?.[0];", "a?.[0];\n")
	expectPrinted(t, "a?.();", "a?.();\n")
	expectPrinted(t, "f(...args);", "f(...args);\n")
	expectPrinted(t, "new Foo;", "new Foo();\n")
	expectPrinted(t, "x = 0xFF;", "x = 0xFF;\n")
	expectPrinted(t, "x = `a${b}c`;", "x = `a${b}c`;\n")
	expectPrinted(t, "typeof x;", "typeof x;\n")
	expectPrinted(t, "i++;", "i++;\n")
	expectPrinted(t, "(-a) ** b;", "(-a) ** b;\n")
}

func TestTemplateLiterals(t *testing.T) {
	expectPrinted(t, "x = `plain`;", "x = `plain`;\n")
	expectPrinted(t, "x = `${b}`;", "x = `${b}`;\n")
	expectPrinted(t, "x = `a${b}c`;", "x = `a${b}c`;\n")
	expectPrinted(t, "x = `a${b}c${d}e`;", "x = `a${b}c${d}e`;\n")
	expectPrinted(t, "x = `${a}${b}`;", "x = `${a}${b}`;\n")
	expectPrinted(t, "x = tag`a${b}`;", "x = tag`a${b}`;\n")
	expectPrinted(t, "x = `outer${`inner${y}`}`;", "x = `outer${`inner${y}`}`;\n")
}

func TestObjectAtStatementStart(t *testing.T) {
	expectPrinted(t, "({ a: 1 });", "({ a: 1 });\n")
	expectPrinted(t, "x = { a: 1, ...b };", "x = { a: 1, ...b };\n")
	expectPrinted(t, "x = {};", "x = {};\n")
}

func TestFunctionsAndArrows(t *testing.T) {
	expectPrinted(t, "function f(a, b = 1, ...rest) {\n}", "function f(a, b = 1, ...rest) {\n}\n")
	expectPrinted(t, "async function f() {\n  await g();\n}", "async function f() {\n  await g();\n}\n")
	expectPrinted(t, "function* gen() {\n  yield 1;\n}", "function* gen() {\n  yield 1;\n}\n")
	expectPrinted(t, "const f = (x) => x + 1;", "const f = (x) => x + 1;\n")
	expectPrinted(t, "const f = x => x;", "const f = (x) => x;\n")
	expectPrinted(t, "const f = async () => 1;", "const f = async () => 1;\n")
	expectPrinted(t, "const f = () => {\n};", "const f = () => {\n};\n")
}

func TestControlFlow(t *testing.T) {
	expectPrinted(t, "if (a) {\n  b();\n}", "if (a) {\n  b();\n}\n")
	expectPrinted(t, "if (a) b(); else {\n  c();\n}", "if (a)\n  b();\nelse {\n  c();\n}\n")
	expectPrinted(t, "if (a) {\n} else if (b) {\n}", "if (a) {\n} else if (b) {\n}\n")
	expectPrinted(t, "while (a) {\n  b();\n}", "while (a) {\n  b();\n}\n")
	expectPrinted(t, "for (let i = 0; i < 10; i++) {\n}", "for (let i = 0; i < 10; i++) {\n}\n")
	expectPrinted(t, "for (const x of xs) {\n}", "for (const x of xs) {\n}\n")
	expectPrinted(t, "for (const k in o) {\n}", "for (const k in o) {\n}\n")
	expectPrinted(t, "try {\n} catch (e) {\n}", "try {\n} catch (e) {\n}\n")
	expectPrinted(t, "try {\n} finally {\n}", "try {\n} finally {\n}\n")
	expectPrinted(t, "switch (x) {\n  case 1:\n    a();\n  default:\n    b();\n}",
		"switch (x) {\n  case 1:\n    a();\n  default:\n    b();\n}\n")
	expectPrinted(t, "throw new Error(\"bad\");", "throw new Error(\"bad\");\n")
}

func TestClasses(t *testing.T) {
	expectPrinted(t,
		"class A extends B {\n  constructor() {\n    super();\n  }\n  static x = 1;\n  get y() {\n    return 2;\n  }\n}",
		"class A extends B {\n  constructor() {\n    super();\n  }\n  static x = 1;\n  get y() {\n    return 2;\n  }\n}\n")
}

func TestModules(t *testing.T) {
	expectPrinted(t, "import \"side-effect\";", "import \"side-effect\";\n")
	expectPrinted(t, "import a from \"m\";", "import a from \"m\";\n")
	expectPrinted(t, "import a, * as b from \"m\";", "import a, * as b from \"m\";\n")
	expectPrinted(t, "import { a, b as c } from \"m\";", "import { a, b as c } from \"m\";\n")
	expectPrinted(t, "export { a, b as c };", "export { a, b as c };\n")
	expectPrinted(t, "export { a } from \"m\";", "export { a } from \"m\";\n")
	expectPrinted(t, "export * from \"m\";", "export * from \"m\";\n")
	expectPrinted(t, "export * as ns from \"m\";", "export * as ns from \"m\";\n")
	expectPrinted(t, "export default function f() {\n}", "export default function f() {\n}\n")
	expectPrinted(t, "export default 1 + 2;", "export default 1 + 2;\n")
	expectPrinted(t, "export const x = 1;", "export const x = 1;\n")
	expectPrinted(t, "x = import(\"m\");", "x = import(\"m\");\n")
	expectPrinted(t, "x = import.meta.url;", "x = import.meta.url;\n")
}

func TestDirective(t *testing.T) {
	expectPrinted(t, "\"use strict\";\nlet x = 1;", "\"use strict\";\nlet x = 1;\n")
}

func TestStringEscapes(t *testing.T) {
	expectPrinted(t, "x = 'a\"b';", "x = \"a\\\"b\";\n")
	expectPrinted(t, "x = \"a\\nb\";", "x = \"a\\nb\";\n")
	expectPrinted(t, "x = \"a\\tb\";", "x = \"a\\tb\";\n")
}

func TestTypeScriptStripping(t *testing.T) {
	expectPrintedTS(t, "let x: number = 1;", "let x = 1;\n")
	expectPrintedTS(t, "let y = a as string;", "let y = a;\n")
	expectPrintedTS(t, "a!.b;", "a.b;\n")
	expectPrintedTS(t, "function f(a: string, b?: number): void {\n}", "function f(a, b) {\n}\n")
	expectPrintedTS(t, "interface Foo {\n  a: string;\n}\nlet x = 1;", "let x = 1;\n")
	expectPrintedTS(t, "type Alias = string;\nlet x = 1;", "let x = 1;\n")
	expectPrintedTS(t, "import type { T } from \"m\";\nlet x = 1;", "let x = 1;\n")
	expectPrintedTS(t, "import { type T, a } from \"m\";", "import { a } from \"m\";\n")
}

func TestPrintFailsOnJSX(t *testing.T) {
	log := logger.NewLog()
	source := &logger.Source{Contents: "let x = <div/>;"}
	tree, ok := js_parser.Parse(log, source, js_parser.Options{JSX: true})
	require.True(t, ok, "parse failed: %v", log.Msgs())

	_, err := Print(&tree, Options{})
	assert.Error(t, err)
}

func TestMappingsOnlyWithSource(t *testing.T) {
	log := logger.NewLog()
	contents := "let x = 1;\nlet y = 2;"
	source := &logger.Source{Contents: contents}
	tree, ok := js_parser.Parse(log, source, js_parser.Options{})
	require.True(t, ok)

	result, err := Print(&tree, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Mappings)

	result, err = Print(&tree, Options{SourceForSourceMap: source})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Mappings)
}
