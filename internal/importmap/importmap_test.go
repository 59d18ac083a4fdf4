package importmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) *ImportMap {
	t.Helper()
	im, err := Parse([]byte(data))
	require.NoError(t, err)
	return im
}

func TestParseEmpty(t *testing.T) {
	im, err := Parse(nil)
	require.NoError(t, err)
	_, ok := im.Resolve("react", "/app.js")
	assert.False(t, ok)

	im, err = Parse([]byte("  \n "))
	require.NoError(t, err)
	_, ok = im.Resolve("react", "/app.js")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"duplicate key", `{"imports": {"react": "/a.js", "react": "/b.js"}}`},
		{"empty key", `{"imports": {"": "/a.js"}}`},
		{"empty value", `{"imports": {"react": ""}}`},
		{"empty scope key", `{"scopes": {"": {"react": "/a.js"}}}`},
		{"unknown field", `{"import": {"react": "/a.js"}}`},
		{"not json", `{`},
		{"scope repeats top-level", `{"imports": {"a": "/a.js"}, "scopes": {"/x/": {"a": "/a.js"}}}`},
		{"bare and slash key collide", `{"imports": {"a": "/bare", "a/": "/slash/"}}`},
		{"bare and slash key collide in scope", `{"scopes": {"/x/": {"a": "/bare", "a/": "/slash/"}}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.data))
			assert.Error(t, err)
		})
	}
}

func TestResolveExact(t *testing.T) {
	im := mustParse(t, `{"imports": {"react": "https://esm.sh/react@18"}}`)

	resolved, ok := im.Resolve("react", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "https://esm.sh/react@18", resolved)

	_, ok = im.Resolve("vue", "/app.js")
	assert.False(t, ok)
}

func TestResolveBareSubpath(t *testing.T) {
	im := mustParse(t, `{"imports": {"react": "https://esm.sh/react@18"}}`)

	resolved, ok := im.Resolve("react/jsx-runtime", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "https://esm.sh/react@18/jsx-runtime", resolved)
}

func TestResolveTrailingSlash(t *testing.T) {
	im := mustParse(t, `{"imports": {"lib/": "/vendor/lib/"}}`)

	resolved, ok := im.Resolve("lib/util.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "/vendor/lib/util.js", resolved)

	// The key has to match as a prefix, "lib" alone does not
	_, ok = im.Resolve("lib", "/app.js")
	assert.False(t, ok)
}

func TestResolveLongestPrefixWins(t *testing.T) {
	im := mustParse(t, `{"imports": {"lib/": "/a/", "lib/deep/": "/b/"}}`)

	resolved, ok := im.Resolve("lib/deep/x.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "/b/x.js", resolved)

	resolved, ok = im.Resolve("lib/x.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "/a/x.js", resolved)
}

func TestResolveExactBeatsPrefix(t *testing.T) {
	im := mustParse(t, `{"imports": {"lib/util.js": "/exact.js", "lib/": "/prefix/"}}`)

	resolved, ok := im.Resolve("lib/util.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "/exact.js", resolved)
}

func TestResolveScopes(t *testing.T) {
	im := mustParse(t, `{
		"imports": {"dep": "/top/dep.js"},
		"scopes": {
			"/admin/": {"dep": "/admin/dep.js"},
			"/admin/inner/": {"dep": "/inner/dep.js"}
		}
	}`)

	resolved, ok := im.Resolve("dep", "/admin/inner/page.js")
	require.True(t, ok)
	assert.Equal(t, "/inner/dep.js", resolved)

	resolved, ok = im.Resolve("dep", "/admin/page.js")
	require.True(t, ok)
	assert.Equal(t, "/admin/dep.js", resolved)

	resolved, ok = im.Resolve("dep", "/other/page.js")
	require.True(t, ok)
	assert.Equal(t, "/top/dep.js", resolved)
}

func TestResolveScopeFallsThroughToTopLevel(t *testing.T) {
	im := mustParse(t, `{
		"imports": {"other": "/top/other.js"},
		"scopes": {"/admin/": {"dep": "/admin/dep.js"}}
	}`)

	// The matching scope has no entry for "other", so the top-level
	// mapping still applies.
	resolved, ok := im.Resolve("other", "/admin/page.js")
	require.True(t, ok)
	assert.Equal(t, "/top/other.js", resolved)
}

func TestResolveURLLikeSpecifiers(t *testing.T) {
	im := mustParse(t, `{"imports": {
		"https://cdn.example/old.js": "https://cdn.example/new.js",
		"/src/legacy/": "/src/modern/"
	}}`)

	resolved, ok := im.Resolve("https://cdn.example/old.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/new.js", resolved)

	resolved, ok = im.Resolve("/src/legacy/a.js", "/app.js")
	require.True(t, ok)
	assert.Equal(t, "/src/modern/a.js", resolved)
}
