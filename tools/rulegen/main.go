// Package main generates Prometheus recording and alert rules for the
// metrics rent-notifier pushes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/rent-notifier/tools/rulegen/rules"
)

const generatedHeader = "# Code generated by rulegen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	crd := flag.Bool("crd", false, "write PrometheusRule custom resources")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	cfg.CRD = *crd

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	sets := []rules.PrometheusRule{rules.RecordingRules(), rules.AlertRules()}

	for _, s := range sets {
		if err := checkExprs(s.Exprs(), KnownMetrics); err != nil {
			return fmt.Errorf("validating %s: %w", s.Metadata.Name, err)
		}
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, s := range sets {
		data, err := render(s, cfg.CRD)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.OutputDir, s.Metadata.Name+".yaml")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("rulegen: wrote %s\n", path)
	}
	return nil
}

func render(s rules.PrometheusRule, crd bool) ([]byte, error) {
	var v any = s.File()
	if crd {
		v = s
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", s.Metadata.Name, err)
	}
	return append([]byte(generatedHeader), data...), nil
}
