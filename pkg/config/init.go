package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// sectionOrder is the order of top-level sections in a generated file.
var sectionOrder = []string{"logging", "server", "listing", "cache", "api", "store", "recent", "search"}

// sectionComments are written above each top-level section.
var sectionComments = map[string]string{
	"logging": "Logging: level (DEBUG, INFO, WARN, ERROR), format (text, json),\noutput (stdout, stderr or a file path)",
	"server":  "Server-wide settings. The metrics endpoint serves Prometheus text at /metrics",
	"listing": "Listing engine. Directories above streaming_threshold entries are\nstreamed one page at a time. overscan_limit is how many names past the\npage are counted before the scan stops (negative: count to the end).\nskip_mode is abort or continue",
	"cache":   "Listing result cache (FIFO eviction, per-entry TTL)",
	"api":     "HTTP API. write_timeout must exceed listing.stream_timeout.\nrate_limit values of 0 mean unlimited",
	"store":   "Bookmark and recent directory store: badger (persistent) or memory",
	"recent":  "Recently visited directories",
	"search":  "Name search limits (max_limit cannot exceed 1000)",
}

const fileHeader = `# DittoList Configuration File
#
# Every key can be overridden with an environment variable:
# DITTOLIST_<SECTION>_<KEY>, e.g. DITTOLIST_LOGGING_LEVEL=DEBUG
`

// InitConfig writes a sample configuration file to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration file to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateYAMLWithComments renders cfg as YAML using the mapstructure key
// names, with a comment above each top-level section.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var tree map[string]any
	if err := mapstructure.Decode(cfg, &tree); err != nil {
		return "", fmt.Errorf("failed to convert config: %w", err)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range sectionOrder {
		value, ok := tree[section]
		if !ok {
			continue
		}

		var valueNode yaml.Node
		if err := valueNode.Encode(value); err != nil {
			return "", fmt.Errorf("failed to encode section %s: %w", section, err)
		}

		doc.Content = append(doc.Content,
			&yaml.Node{
				Kind:        yaml.ScalarNode,
				Value:       section,
				HeadComment: sectionComments[section],
			},
			&valueNode,
		)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	return buf.String(), nil
}
