package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	godartsass "github.com/bep/godartsass/v2"

	"github.com/modpack-dev/modpack/internal/logger"
)

// nodeModuleDirs walks upward from dir collecting every node_modules path a
// sass import could come from.
func nodeModuleDirs(dir string) []string {
	var result []string
	for {
		result = append(result, filepath.Join(dir, "node_modules"))
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return result
}

type sassSourceMap struct {
	Sources []string `json:"sources"`
}

// DartSassLoaderPlugin compiles .scss and .sass files with the dart-sass
// embedded compiler. binaryPath locates the sass executable; when empty the
// MODPACK_DART_SASS environment variable is tried, then plain "sass" from
// PATH. The compiler process is started lazily on the first load so
// constructing the plugin never fails.
func DartSassLoaderPlugin(binaryPath string) Plugin {
	if binaryPath == "" {
		binaryPath = os.Getenv("MODPACK_DART_SASS")
	}
	if binaryPath == "" {
		binaryPath = "sass"
	}

	var transpiler *godartsass.Transpiler
	var startErr error

	start := func() (*godartsass.Transpiler, error) {
		if transpiler != nil || startErr != nil {
			return transpiler, startErr
		}
		transpiler, startErr = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: binaryPath,
			Timeout:                  60 * time.Second,
			LogEventHandler: func(e godartsass.LogEvent) {
				logger.Debugf("dart-sass: %s", e.Message)
			},
		})
		return transpiler, startErr
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	includePaths := nodeModuleDirs(cwd)

	return Plugin{
		Name:   "DartSassLoaderPlugin",
		Filter: regexp.MustCompile(`\.(scss|sass)$`),
		Load: func(args LoadArgs) (LoadResult, error) {
			t, err := start()
			if err != nil {
				return LoadResult{}, err
			}
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return LoadResult{}, err
			}
			result, err := t.Execute(godartsass.Args{
				URL:             "file://" + args.Path,
				Source:          string(data),
				EnableSourceMap: true,
				IncludePaths:    includePaths,
			})
			if err != nil {
				return LoadResult{}, err
			}

			// The source map lists every file the compilation touched, which
			// is exactly the watch set.
			var sm sassSourceMap
			var watchFiles []string
			if json.Unmarshal([]byte(result.SourceMap), &sm) == nil {
				for _, s := range sm.Sources {
					watchFiles = append(watchFiles, strings.TrimPrefix(s, "file://"))
				}
			}

			return LoadResult{
				Contents:    result.CSS,
				ContentType: "text/css",
				WatchFiles:  watchFiles,
			}, nil
		},
	}
}
