package plugin

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type HTMLIndexPluginOptions struct {
	// Template data available as {{.Key}} in the page. PROCESS_ENV is always
	// added on top with the server's environment.
	Data map[string]interface{}

	// Raw import map JSON to embed as <script type="importmap"> so the page
	// and the transformer agree on specifier mapping
	ImportMapJSON string

	// URL of the dev client script to inject, empty to skip
	ClientScriptURL string
}

func envMap() map[string]string {
	result := make(map[string]string)
	for _, env := range os.Environ() {
		if key, value, ok := strings.Cut(env, "="); ok {
			result[key] = value
		}
	}
	return result
}

func findNode(root *html.Node, a atom.Atom) *html.Node {
	var walk func(*html.Node) *html.Node
	walk = func(node *html.Node) *html.Node {
		if node.Type == html.ElementNode && node.DataAtom == a {
			return node
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if found := walk(child); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(root)
}

func scriptNode(attrs []html.Attribute, text string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     attrs,
	}
	if text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return node
}

// HTMLIndexPlugin renders HTML pages through text/template and injects the
// import map and the dev client script into <head>. The import map must come
// before any module script, and the client script before the application
// itself, so both go at the front of head.
func HTMLIndexPlugin(opts HTMLIndexPluginOptions) Plugin {
	if opts.Data == nil {
		opts.Data = make(map[string]interface{})
	}
	opts.Data["PROCESS_ENV"] = envMap()

	return Plugin{
		Name:   "HTMLIndexPlugin",
		Filter: regexp.MustCompile(`\.html?$`),
		Load: func(args LoadArgs) (LoadResult, error) {
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return LoadResult{}, err
			}

			tpl, err := template.New("page").Parse(string(data))
			if err != nil {
				return LoadResult{}, err
			}
			rendered := new(bytes.Buffer)
			if err := tpl.Execute(rendered, opts.Data); err != nil {
				return LoadResult{}, err
			}

			root, err := html.Parse(rendered)
			if err != nil {
				return LoadResult{}, err
			}

			head := findNode(root, atom.Head)
			if head != nil {
				if opts.ClientScriptURL != "" {
					node := scriptNode([]html.Attribute{{Key: "src", Val: opts.ClientScriptURL}}, "")
					head.InsertBefore(node, head.FirstChild)
				}
				if opts.ImportMapJSON != "" {
					node := scriptNode([]html.Attribute{{Key: "type", Val: "importmap"}}, opts.ImportMapJSON)
					head.InsertBefore(node, head.FirstChild)
				}
			}

			var out bytes.Buffer
			if err := html.Render(&out, root); err != nil {
				return LoadResult{}, err
			}
			return LoadResult{
				Contents:    out.String(),
				ContentType: "text/html; charset=utf-8",
				WatchFiles:  []string{args.Path},
			}, nil
		},
	}
}
