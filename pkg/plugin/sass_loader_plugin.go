package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/wellington/go-libsass"
)

// Partial lookup order used by sass itself. "{{file}}" is replaced with the
// import name.
var sassPatternsUnderscore = [...]string{"{{file}}.css", "{{file}}.scss", "{{file}}.sass", "{{file}}/index.scss", "{{file}}/index.sass", "{{file}}/_index.scss", "{{file}}/_index.sass"}
var sassPatternsNormal = [...]string{"{{file}}.css", "{{file}}.scss", "{{file}}.sass", "_{{file}}.scss", "_{{file}}.sass", "{{file}}/index.scss", "{{file}}/index.sass", "{{file}}/_index.scss", "{{file}}/_index.sass"}

type sassImportResolver struct {
	// The file that contains the @import
	prev string

	// Extra roots to try after walking node_modules upward
	searchPaths []string
}

func (r *sassImportResolver) fileExists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, os.ErrNotExist)
}

func (r *sassImportResolver) tryResolveFile(base string, filename string) string {
	ext := path.Ext(filename)
	if ext == ".css" || ext == ".scss" || ext == ".sass" {
		resolved := path.Join(base, filename)
		if r.fileExists(resolved) {
			return resolved
		}
		return ""
	}
	patterns := sassPatternsNormal[:]
	if strings.HasPrefix(filename, "_") {
		patterns = sassPatternsUnderscore[:]
		filename = filename[1:]
	}
	for _, pattern := range patterns {
		maybe := path.Join(base, strings.ReplaceAll(pattern, "{{file}}", filename))
		if r.fileExists(maybe) {
			return maybe
		}
	}
	return ""
}

func (r *sassImportResolver) lookupFromNodeModules(url string) string {
	dir := r.prev
	filename := path.Base(url)
	for {
		dir = path.Dir(dir)
		resolved := r.tryResolveFile(path.Join(dir, "node_modules", path.Dir(url)), filename)
		if resolved != "" {
			return resolved
		}
		if dir == "/" || dir == "." {
			break
		}
	}
	for _, p := range r.searchPaths {
		resolved := r.tryResolveFile(path.Join(p, path.Dir(url)), filename)
		if resolved != "" {
			return resolved
		}
	}
	return ""
}

func (r *sassImportResolver) resolve(url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "file://"):
		return strings.TrimPrefix(url, "file://"), nil
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "//"):
		return "", fmt.Errorf("remote sass import %q is not supported", url)
	case strings.HasPrefix(url, "~"):
		if resolved := r.lookupFromNodeModules(url[1:]); resolved != "" {
			return resolved, nil
		}
	case strings.HasPrefix(url, "."):
		resolved := path.Join(path.Dir(r.prev), url)
		if r.fileExists(resolved) {
			return resolved, nil
		}
		if resolved := r.tryResolveFile(path.Dir(path.Join(path.Dir(r.prev), url)), path.Base(url)); resolved != "" {
			return resolved, nil
		}
	case strings.HasPrefix(url, "/"):
		return url, nil
	default:
		if resolved := r.lookupFromNodeModules(url); resolved != "" {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("cannot resolve sass import %q from %s", url, r.prev)
}

type sassCache struct {
	mutex    sync.Mutex
	contents map[string]string
	compiled map[string]string
}

func newSassCache() *sassCache {
	return &sassCache{
		contents: make(map[string]string),
		compiled: make(map[string]string),
	}
}

func (c *sassCache) get(path string, content string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	old, ok := c.contents[path]
	if !ok || old != content {
		return "", false
	}
	out, ok := c.compiled[path+"|"+content]
	return out, ok
}

func (c *sassCache) set(path string, content string, compiled string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if old, ok := c.contents[path]; ok {
		delete(c.compiled, path+"|"+old)
	}
	c.contents[path] = content
	c.compiled[path+"|"+content] = compiled
}

// SassLoaderPlugin compiles .scss and .sass files with libsass. Compiled
// output is cached per file and invalidated when the source text changes.
func SassLoaderPlugin(searchPaths []string) Plugin {
	cache := newSassCache()
	return Plugin{
		Name:   "SassLoaderPlugin",
		Filter: regexp.MustCompile(`\.(scss|sass)$`),
		Load: func(args LoadArgs) (LoadResult, error) {
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return LoadResult{}, err
			}
			content := string(data)

			if compiled, ok := cache.get(args.Path, content); ok {
				return LoadResult{Contents: compiled, ContentType: "text/css"}, nil
			}

			var watchFiles []string
			imports := libsass.NewImportsWithResolver(func(url, prev string) (string, string, bool) {
				resolver := &sassImportResolver{prev: prev, searchPaths: searchPaths}
				resolved, err := resolver.resolve(url)
				if err != nil {
					return url, "", false
				}
				body, err := os.ReadFile(resolved)
				if err != nil {
					return url, "", false
				}
				watchFiles = append(watchFiles, resolved)
				return resolved, string(body), true
			})

			output := new(bytes.Buffer)
			comp, err := libsass.New(output, strings.NewReader(content),
				libsass.Path(args.Path), libsass.ImportsOption(imports))
			if err != nil {
				return LoadResult{}, err
			}
			if err := comp.Run(); err != nil {
				return LoadResult{}, err
			}

			compiled := output.String()
			cache.set(args.Path, content, compiled)
			return LoadResult{
				Contents:    compiled,
				ContentType: "text/css",
				WatchFiles:  watchFiles,
			}, nil
		},
	}
}
