package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modpack-dev/modpack/internal/importmap"
	"github.com/modpack-dev/modpack/internal/logger"
)

func newTestResolver(t *testing.T, filename string, mapJSON string, isDev bool, hasPluginResolves bool) (*Resolver, *logger.Log) {
	t.Helper()
	im, err := importmap.Parse([]byte(mapJSON))
	require.NoError(t, err)
	log := logger.NewLog()
	source := &logger.Source{KeyPath: logger.Path{Text: filename}, PrettyPath: filename}
	return New(filename, im, isDev, hasPluginResolves, log, source), log
}

func TestResolveRelativeDev(t *testing.T) {
	r, log := newTestResolver(t, "/src/app.js", "", true, false)

	assert.Equal(t, "/src/util.ts", r.Resolve("./util.ts", logger.Loc{}, false))
	assert.Equal(t, "/shared/x", r.Resolve("../shared/x", logger.Loc{}, false))
	assert.Empty(t, log.Msgs())
}

func TestResolveRelativeProdRewritesExtension(t *testing.T) {
	r, _ := newTestResolver(t, "/src/app.js", "", false, false)

	assert.Equal(t, "/src/util.js", r.Resolve("./util.ts", logger.Loc{}, false))
	assert.Equal(t, "/src/comp.js", r.Resolve("./comp.tsx", logger.Loc{}, false))
	assert.Equal(t, "/src/other.js", r.Resolve("./other.jsx", logger.Loc{}, false))
	assert.Equal(t, "/src/mod.js", r.Resolve("./mod.mjs", logger.Loc{}, false))
	assert.Equal(t, "/shared/x.js", r.Resolve("../shared/x", logger.Loc{}, false))

	// Unknown extensions stay as written
	assert.Equal(t, "/src/data.json", r.Resolve("./data.json", logger.Loc{}, false))
}

func TestResolvePreservesQueryAndFragment(t *testing.T) {
	r, _ := newTestResolver(t, "/src/app.js", "", false, false)

	assert.Equal(t, "/src/a.js?raw=1", r.Resolve("./a.ts?raw=1", logger.Loc{}, false))
	assert.Equal(t, "/src/b.js#part", r.Resolve("./b.ts#part", logger.Loc{}, false))
}

func TestResolveAbsolute(t *testing.T) {
	r, _ := newTestResolver(t, "/src/app.js", "", true, false)

	assert.Equal(t, "/lib/a.js", r.Resolve("/lib/./a.js", logger.Loc{}, false))
	assert.Equal(t, "/a.js", r.Resolve("/lib/../a.js", logger.Loc{}, false))
}

func TestResolveRemotePassthrough(t *testing.T) {
	r, log := newTestResolver(t, "/src/app.js", "", true, false)

	assert.Equal(t, "https://cdn.example/x.js", r.Resolve("https://cdn.example/x.js", logger.Loc{}, false))
	assert.Equal(t, "//cdn.example/y.js", r.Resolve("//cdn.example/y.js", logger.Loc{}, false))
	assert.Empty(t, log.Msgs())
}

func TestResolveBareThroughImportMap(t *testing.T) {
	r, log := newTestResolver(t, "/src/app.js",
		`{"imports": {"react": "https://esm.sh/react@18"}}`, true, false)

	assert.Equal(t, "https://esm.sh/react@18", r.Resolve("react", logger.Loc{}, false))
	assert.Equal(t, "https://esm.sh/react@18/jsx-runtime", r.Resolve("react/jsx-runtime", logger.Loc{}, false))
	assert.Empty(t, log.Msgs())
}

func TestResolveBareUnmappedWarns(t *testing.T) {
	r, log := newTestResolver(t, "/src/app.js", "", true, false)

	assert.Equal(t, "lodash", r.Resolve("lodash", logger.Loc{}, false))

	msgs := log.Msgs()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Warning, msgs[0].Kind)
	assert.Contains(t, msgs[0].Data.Text, "lodash")
}

func TestResolveBarePendingWithPluginResolvers(t *testing.T) {
	r, log := newTestResolver(t, "/src/app.js", "", true, true)

	assert.Equal(t, "lodash", r.Resolve("lodash", logger.Loc{}, false))
	assert.Empty(t, log.Msgs())

	deps := r.Finalize()
	require.Len(t, deps, 1)
	assert.True(t, deps[0].Pending)
}

func TestResolveNormalizedBeforeImportMap(t *testing.T) {
	// The import map sees the normalized form of local specifiers.
	r, _ := newTestResolver(t, "/src/app.js",
		`{"imports": {"/src/legacy.js": "/src/modern.js"}}`, true, false)

	assert.Equal(t, "/src/modern.js", r.Resolve("./legacy.js", logger.Loc{}, false))
}

func TestFinalizeKeepsSourceOrder(t *testing.T) {
	r, _ := newTestResolver(t, "/src/app.js",
		`{"imports": {"react": "https://esm.sh/react@18"}}`, true, false)

	r.Resolve("react", logger.Loc{}, false)
	r.Resolve("./util.js", logger.Loc{}, false)
	r.Resolve("./lazy.js", logger.Loc{}, true)

	deps := r.Finalize()
	require.Len(t, deps, 3)
	assert.Equal(t, "react", deps[0].Specifier)
	assert.Equal(t, "https://esm.sh/react@18", deps[0].Resolved)
	assert.Equal(t, "./util.js", deps[1].Specifier)
	assert.Equal(t, "/src/util.js", deps[1].Resolved)
	assert.True(t, deps[2].IsDynamic)
	assert.True(t, r.Finalized())
}

func TestFinalizeEmpty(t *testing.T) {
	r, _ := newTestResolver(t, "/src/app.js", "", true, false)
	deps := r.Finalize()
	assert.NotNil(t, deps)
	assert.Len(t, deps, 0)
}
