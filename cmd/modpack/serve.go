package main

import (
	"github.com/spf13/cobra"

	"github.com/modpack-dev/modpack/pkg/api"
	"github.com/modpack-dev/modpack/pkg/plugin"
)

var serveFlags struct {
	host               string
	port               uint16
	root               string
	importMapPath      string
	jsxFactory         string
	jsxFragmentFactory string
	dartSass           string
	useDartSass        bool
	useLibSass         bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development server",
	Long: `Serve transforms modules on demand from the root directory, watches
them for changes, and reloads connected pages over a websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var plugins []plugin.Plugin
		if serveFlags.useDartSass {
			plugins = append(plugins, plugin.DartSassLoaderPlugin(serveFlags.dartSass))
		} else if serveFlags.useLibSass {
			plugins = append(plugins, plugin.SassLoaderPlugin(nil))
		}
		plugins = append(plugins, plugin.HTMLIndexPlugin(plugin.HTMLIndexPluginOptions{
			ClientScriptURL: "/_modpack/client.js",
		}))

		return api.DevServe(api.DevServeOptions{
			Host:               serveFlags.host,
			Port:               serveFlags.port,
			Root:               serveFlags.root,
			ImportMapPath:      serveFlags.importMapPath,
			JSXFactory:         serveFlags.jsxFactory,
			JSXFragmentFactory: serveFlags.jsxFragmentFactory,
			Plugins:            plugins,
		})
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveFlags.host, "host", "0.0.0.0", "address to listen on")
	flags.Uint16Var(&serveFlags.port, "port", 8081, "port to listen on")
	flags.StringVar(&serveFlags.root, "root", ".", "directory to serve and transform")
	flags.StringVar(&serveFlags.importMapPath, "import-map", "", "import map path relative to root (default importmap.json)")
	flags.StringVar(&serveFlags.jsxFactory, "jsx-factory", "", "JSX factory expression")
	flags.StringVar(&serveFlags.jsxFragmentFactory, "jsx-fragment-factory", "", "JSX fragment expression")
	flags.StringVar(&serveFlags.dartSass, "dart-sass", "", "path to the dart-sass embedded binary")
	flags.BoolVar(&serveFlags.useDartSass, "sass", false, "compile .scss files with dart-sass")
	flags.BoolVar(&serveFlags.useLibSass, "libsass", false, "compile .scss files with libsass")
}
