// Package config decodes and validates a transform request. The wire format
// is strict: unknown fields, malformed import maps, and bad enum values are
// all rejected before any parsing starts.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modpack-dev/modpack/internal/importmap"
)

// ConfigError is a problem with the request itself, reported before the
// source text is ever parsed.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

type Target uint8

const (
	ES2015 Target = iota
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ES2022
	ESNext
)

var targetNames = map[Target]string{
	ES2015: "es2015",
	ES2016: "es2016",
	ES2017: "es2017",
	ES2018: "es2018",
	ES2019: "es2019",
	ES2020: "es2020",
	ES2021: "es2021",
	ES2022: "es2022",
	ESNext: "esnext",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return "es2020"
}

func ParseTarget(name string) (Target, error) {
	lower := strings.ToLower(name)
	for target, text := range targetNames {
		if text == lower {
			return target, nil
		}
	}
	return ES2020, configErrorf("unknown target %q", name)
}

// Options is the validated form of one transform request.
type Options struct {
	Filename           string
	ImportMap          *importmap.ImportMap
	Target             Target
	JSXFactory         string
	JSXFragmentFactory string
	IsDev              bool
	SourceText         string
}

const (
	DefaultJSXFactory         = "React.createElement"
	DefaultJSXFragmentFactory = "React.Fragment"
)

// Default returns the options applied when a field is absent from the wire.
func Default() Options {
	return Options{
		Target:             ES2020,
		JSXFactory:         DefaultJSXFactory,
		JSXFragmentFactory: DefaultJSXFragmentFactory,
		IsDev:              true,
	}
}

type swcOptionsWire struct {
	Target             string `json:"target"`
	JSXFactory         string `json:"jsxFactory"`
	JSXFragmentFactory string `json:"jsxFragmentFactory"`
	IsDev              *bool  `json:"isDev"`
}

type requestWire struct {
	Filename   string          `json:"filename"`
	ImportMap  json.RawMessage `json:"importMap"`
	SwcOptions *swcOptionsWire `json:"swcOptions"`
	SourceText *string         `json:"sourceText"`
}

// Decode parses a JSON transform request into validated options.
func Decode(data []byte) (Options, error) {
	var wire requestWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return Options{}, configErrorf("invalid request: %v", err)
	}

	options := Default()

	if wire.Filename == "" {
		return Options{}, configErrorf("\"filename\" is required")
	}
	options.Filename = wire.Filename

	if wire.SourceText == nil {
		return Options{}, configErrorf("\"sourceText\" is required")
	}
	options.SourceText = *wire.SourceText

	im, err := importmap.Parse(wire.ImportMap)
	if err != nil {
		return Options{}, &ConfigError{Msg: err.Error()}
	}
	options.ImportMap = im

	if wire.SwcOptions != nil {
		if wire.SwcOptions.Target != "" {
			target, err := ParseTarget(wire.SwcOptions.Target)
			if err != nil {
				return Options{}, err
			}
			options.Target = target
		}
		if wire.SwcOptions.JSXFactory != "" {
			options.JSXFactory = wire.SwcOptions.JSXFactory
		}
		if wire.SwcOptions.JSXFragmentFactory != "" {
			options.JSXFragmentFactory = wire.SwcOptions.JSXFragmentFactory
		}
		if wire.SwcOptions.IsDev != nil {
			options.IsDev = *wire.SwcOptions.IsDev
		}
	}

	return options, nil
}
