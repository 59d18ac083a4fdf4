package api

import (
	"github.com/modpack-dev/modpack/internal/config"
	"github.com/modpack-dev/modpack/internal/importmap"
	"github.com/modpack-dev/modpack/internal/logger"
	"github.com/modpack-dev/modpack/internal/resolver"
	"github.com/modpack-dev/modpack/internal/transform"
	"github.com/modpack-dev/modpack/pkg/plugin"
)

var targetTable = map[Target]config.Target{
	ES2015: config.ES2015,
	ES2016: config.ES2016,
	ES2017: config.ES2017,
	ES2018: config.ES2018,
	ES2019: config.ES2019,
	ES2020: config.ES2020,
	ES2021: config.ES2021,
	ES2022: config.ES2022,
	ESNext: config.ESNext,
}

func convertOptions(options TransformOptions) (config.Options, error) {
	cfg := config.Default()
	cfg.Filename = options.Filename
	cfg.SourceText = options.SourceText
	cfg.IsDev = options.Mode == ModeDevelopment

	if options.Filename == "" {
		return config.Options{}, &config.ConfigError{Msg: "\"filename\" is required"}
	}

	im, err := importmap.Parse([]byte(options.ImportMapJSON))
	if err != nil {
		return config.Options{}, &config.ConfigError{Msg: err.Error()}
	}
	cfg.ImportMap = im

	if options.Target != DefaultTarget {
		cfg.Target = targetTable[options.Target]
	}
	if options.JSXFactory != "" {
		cfg.JSXFactory = options.JSXFactory
	}
	if options.JSXFragmentFactory != "" {
		cfg.JSXFragmentFactory = options.JSXFragmentFactory
	}
	return cfg, nil
}

func convertLocation(loc *logger.MsgLocation) *Location {
	if loc == nil {
		return nil
	}
	return &Location{
		File:     loc.File,
		LineText: loc.LineText,
		Line:     loc.Line,
		Column:   loc.Column,
		Length:   loc.Length,
	}
}

func convertMessages(msgs []logger.Msg, kind logger.MsgKind) []Message {
	var result []Message
	for _, msg := range msgs {
		if msg.Kind != kind {
			continue
		}
		result = append(result, Message{
			Text:     msg.Data.Text,
			Location: convertLocation(msg.Data.Location),
		})
	}
	return result
}

func convertDependencies(deps []resolver.DependencyDescriptor) []Dependency {
	result := make([]Dependency, 0, len(deps))
	for _, dep := range deps {
		result = append(result, Dependency{
			Specifier: dep.Specifier,
			Resolved:  dep.Resolved,
			IsDynamic: dep.IsDynamic,
			Pending:   dep.Pending,
		})
	}
	return result
}

func errorResult(err error) TransformResult {
	return TransformResult{Errors: []Message{{Text: err.Error()}}}
}

func runTransform(cfg config.Options, hasPluginResolves bool) TransformResult {
	log := logger.NewLog()
	res, err := transform.Transpile(transform.DefaultEngine, log, cfg, hasPluginResolves)

	result := TransformResult{
		Errors:   convertMessages(log.Msgs(), logger.Error),
		Warnings: convertMessages(log.Msgs(), logger.Warning),
	}
	if err != nil {
		// Parse failures put their details on the log already. Anything
		// else carries its own text.
		if len(result.Errors) == 0 {
			result.Errors = []Message{{Text: err.Error()}}
		}
		return result
	}

	result.Code = res.Code
	result.Map = res.Map
	result.Dependencies = convertDependencies(res.Dependencies)
	return result
}

func transformImpl(options TransformOptions) TransformResult {
	cfg, err := convertOptions(options)
	if err != nil {
		return errorResult(err)
	}
	return runTransform(cfg, plugin.HasResolvers(options.Plugins))
}

func transformFromRequestImpl(request []byte, plugins []plugin.Plugin) TransformResult {
	cfg, err := config.Decode(request)
	if err != nil {
		return errorResult(err)
	}
	return runTransform(cfg, plugin.HasResolvers(plugins))
}
