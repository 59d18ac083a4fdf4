package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	options, err := Decode([]byte(`{"filename": "/src/app.jsx", "sourceText": "let x = 1;"}`))
	require.NoError(t, err)

	assert.Equal(t, "/src/app.jsx", options.Filename)
	assert.Equal(t, "let x = 1;", options.SourceText)
	assert.Equal(t, ES2020, options.Target)
	assert.Equal(t, DefaultJSXFactory, options.JSXFactory)
	assert.Equal(t, DefaultJSXFragmentFactory, options.JSXFragmentFactory)
	assert.True(t, options.IsDev)
	assert.NotNil(t, options.ImportMap)
}

func TestDecodeOverrides(t *testing.T) {
	options, err := Decode([]byte(`{
		"filename": "/src/app.tsx",
		"sourceText": "",
		"importMap": {"imports": {"react": "https://esm.sh/react@18"}},
		"swcOptions": {
			"target": "ES2022",
			"jsxFactory": "h",
			"jsxFragmentFactory": "Fragment",
			"isDev": false
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, ES2022, options.Target)
	assert.Equal(t, "h", options.JSXFactory)
	assert.Equal(t, "Fragment", options.JSXFragmentFactory)
	assert.False(t, options.IsDev)

	resolved, ok := options.ImportMap.Resolve("react", "/src/app.tsx")
	require.True(t, ok)
	assert.Equal(t, "https://esm.sh/react@18", resolved)
}

func TestDecodeEmptySourceTextIsValid(t *testing.T) {
	options, err := Decode([]byte(`{"filename": "a.js", "sourceText": ""}`))
	require.NoError(t, err)
	assert.Equal(t, "", options.SourceText)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing filename", `{"sourceText": ""}`},
		{"missing sourceText", `{"filename": "a.js"}`},
		{"unknown field", `{"filename": "a.js", "sourceText": "", "filenme": "b.js"}`},
		{"bad target", `{"filename": "a.js", "sourceText": "", "swcOptions": {"target": "es6"}}`},
		{"malformed json", `{"filename": `},
		{"bad import map", `{"filename": "a.js", "sourceText": "", "importMap": {"imports": {"x": ""}}}`},
		{"duplicate import map key", `{"filename": "a.js", "sourceText": "", "importMap": {"imports": {"a": "/a.js", "a": "/b.js"}}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode([]byte(c.data))
			require.Error(t, err)
			var configErr *ConfigError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget("ES2015")
	require.NoError(t, err)
	assert.Equal(t, ES2015, target)

	target, err = ParseTarget("esnext")
	require.NoError(t, err)
	assert.Equal(t, ESNext, target)

	_, err = ParseTarget("es5")
	assert.Error(t, err)
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "es2020", ES2020.String())
	assert.Equal(t, "esnext", ESNext.String())
}
