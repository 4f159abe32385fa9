// Package main generates the OpenAPI document for the ptxswitchd API from the
// shared route definitions, using stub handlers so no devices are needed.
//
// Usage:
//
//	go run ./cmd/ptxswitchd-openapi > openapi.json
//	go run ./cmd/ptxswitchd-openapi --yaml > openapi.yaml
//	go run ./cmd/ptxswitchd-openapi --output openapi.json
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ptxhome/ptxswitchd/internal/http/routes"
)

// version is set via ldflags at build time.
var version = "dev"

// generate renders the OpenAPI document as JSON or YAML.
func generate(asYAML bool, baseURL string) ([]byte, error) {
	api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(version, baseURL))
	routes.Register(api, routes.StubHandlers())

	data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling OpenAPI document: %w", err)
	}
	if !asYAML {
		return data, nil
	}

	// Round-trip through a generic value so the huma JSON field names survive.
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding OpenAPI document: %w", err)
	}
	return yaml.Marshal(doc)
}

func main() {
	outputFile := pflag.StringP("output", "o", "", "Output file path (default: stdout)")
	outputYAML := pflag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := pflag.String("base-url", "", "Base URL for the API server")
	showVersion := pflag.Bool("version", false, "Print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	data, err := generate(*outputYAML, *baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OpenAPI document written to %s\n", *outputFile)
		return
	}
	fmt.Print(string(data))
}
