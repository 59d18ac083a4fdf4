package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modpack-dev/modpack/internal/logger"
	"github.com/modpack-dev/modpack/pkg/api"
)

var transformFlags struct {
	importMapPath      string
	jsxFactory         string
	jsxFragmentFactory string
	target             string
	prod               bool
	output             string
	mapOutput          string
	printDeps          bool
}

var targetFlagTable = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var transformCmd = &cobra.Command{
	Use:   "transform <file>",
	Short: "Transform a single module and print or write the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		source, err := os.ReadFile(filename)
		if err != nil {
			return err
		}

		var importMapJSON string
		if transformFlags.importMapPath != "" {
			data, err := os.ReadFile(transformFlags.importMapPath)
			if err != nil {
				return err
			}
			importMapJSON = string(data)
		}

		mode := api.ModeDevelopment
		if transformFlags.prod {
			mode = api.ModeProduction
		}

		var target api.Target
		if transformFlags.target != "" {
			var ok bool
			target, ok = targetFlagTable[strings.ToLower(transformFlags.target)]
			if !ok {
				return fmt.Errorf("unknown target %q", transformFlags.target)
			}
		}

		result := api.Transform(api.TransformOptions{
			Filename:           filename,
			SourceText:         string(source),
			ImportMapJSON:      importMapJSON,
			Target:             target,
			JSXFactory:         transformFlags.jsxFactory,
			JSXFragmentFactory: transformFlags.jsxFragmentFactory,
			Mode:               mode,
		})

		for _, msg := range result.Warnings {
			printMessage("warning", msg)
		}
		if len(result.Errors) > 0 {
			for _, msg := range result.Errors {
				printMessage("error", msg)
			}
			return errors.New("transform failed")
		}

		if transformFlags.printDeps {
			for _, dep := range result.Dependencies {
				kind := "static"
				if dep.IsDynamic {
					kind = "dynamic"
				}
				if dep.Pending {
					kind += ", pending"
				}
				logger.Infof("%s -> %s (%s)", dep.Specifier, dep.Resolved, kind)
			}
		}

		if transformFlags.output == "" {
			fmt.Print(result.Code)
			return nil
		}
		if err := os.WriteFile(transformFlags.output, []byte(result.Code), 0644); err != nil {
			return err
		}
		if result.Map != "" {
			mapPath := transformFlags.mapOutput
			if mapPath == "" {
				mapPath = transformFlags.output + ".map"
			}
			if err := os.WriteFile(mapPath, []byte(result.Map), 0644); err != nil {
				return err
			}
		}
		return nil
	},
}

func printMessage(kind string, msg api.Message) {
	if msg.Location != nil {
		fmt.Fprintf(os.Stderr, "%s: %s:%d:%d: %s\n", kind,
			msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		if msg.Location.LineText != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", msg.Location.LineText)
		}
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", kind, msg.Text)
	}
}

func init() {
	flags := transformCmd.Flags()
	flags.StringVar(&transformFlags.importMapPath, "import-map", "", "path to an import map JSON file")
	flags.StringVar(&transformFlags.jsxFactory, "jsx-factory", "", "JSX factory expression (default React.createElement)")
	flags.StringVar(&transformFlags.jsxFragmentFactory, "jsx-fragment-factory", "", "JSX fragment expression (default React.Fragment)")
	flags.StringVar(&transformFlags.target, "target", "", "output target, es2015 through esnext")
	flags.BoolVar(&transformFlags.prod, "prod", false, "production mode: rewrite local extensions, no refresh, no map")
	flags.StringVarP(&transformFlags.output, "output", "o", "", "write output here instead of stdout")
	flags.StringVar(&transformFlags.mapOutput, "map-output", "", "write the source map here (default <output>.map)")
	flags.BoolVar(&transformFlags.printDeps, "deps", false, "print the dependency list")
}
