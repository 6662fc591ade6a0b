/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const maxIncludeDepth = 16

// LoadConfig is the ConfigTree ingestion step that sits in front of
// SemanticValidator: it resolves `include: "path"` directives
// recursively (depth-limited to guard against cycles), decodes the
// merged document through viper with a mapstructure decoder keyed on
// the `yaml` tag, and normalizes the legacy primary/secondary synonyms
// (§9) so the rest of the core never has to special-case them again.
func LoadConfig(path string) (*Config, error) {
	merged, err := loadIncludeTree(path, 0, map[string]bool{})
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(merged)); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var cfg Config
	decoderOpts := func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.ErrorUnused = false
		dc.WeaklyTypedInput = true
	}
	if err := v.Unmarshal(&cfg, decoderOpts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	cfg.Internal.CfgFile = path
	normalizeLegacySynonyms(&cfg)

	if err := applyTemplates(&cfg); err != nil {
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyTemplates(cfg *Config) error {
	if len(cfg.Templates) == 0 {
		return nil
	}
	byName := make(map[string]TemplateConf, len(cfg.Templates))
	for _, t := range cfg.Templates {
		byName[normalizeKeyword(t.Name)] = t
	}
	expand := func(zones []ZoneConf) error {
		for i := range zones {
			if zones[i].Template == "" {
				continue
			}
			out, err := ExpandTemplateChain(&zones[i], byName)
			if err != nil {
				return fmt.Errorf("zone %q: %w", zones[i].Name, err)
			}
			zones[i] = *out
		}
		return nil
	}
	if err := expand(cfg.Zones); err != nil {
		return err
	}
	for i := range cfg.Views {
		if err := expand(cfg.Views[i].Zones); err != nil {
			return err
		}
	}
	return nil
}

// loadIncludeTree reads path and recursively splices the content of any
// `include: "<path>";`-style line (one per line, BIND-conf-ish but
// tolerated as YAML-adjacent since the grammar surface in §6 is
// normative-only) in place, relative to the including file's directory.
func loadIncludeTree(path string, depth int, seen map[string]bool) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("include depth exceeded at %s (possible cycle)", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if seen[abs] {
		return "", fmt.Errorf("include cycle detected at %s", path)
	}
	seen[abs] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var out strings.Builder
	dir := filepath.Dir(path)
	for _, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "include:") {
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "include:"))
			rest = strings.Trim(rest, `"; `)
			if rest == "" {
				return "", fmt.Errorf("%s: empty include directive", path)
			}
			incPath := rest
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(dir, incPath)
			}
			// Each include gets its own copy of seen, so a diamond include
			// (A includes B and C, both include D) is allowed; only a true
			// cycle (D eventually including A or itself) is rejected.
			branch := make(map[string]bool, len(seen))
			for k := range seen {
				branch[k] = true
			}
			incContent, err := loadIncludeTree(incPath, depth+1, branch)
			if err != nil {
				return "", err
			}
			out.WriteString(incContent)
			out.WriteString("\n")
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String(), nil
}

var legacyValidate = validator.New()

func init() {
	legacyValidate.RegisterValidation("certkey", validateCertKey)
}

// validateCertKey backs the `certkey` tag, after ValidateCertAndKeyFiles:
// a tagged field is valid when it is empty or names a file that exists.
// It looks at that one path only; it does not check for a paired key
// file and does not parse either file.
func validateCertKey(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func validateStruct(cfg *Config) error {
	if err := legacyValidate.Struct(cfg); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return nil
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// normalizeLegacySynonyms folds master->primary, slave->secondary, and
// masters->primaries into their canonical forms (§9) at load time, so
// every later pass only ever sees the canonical keyword.
func normalizeLegacySynonyms(cfg *Config) {
	normalizeZoneSlice(cfg.Zones)
	for i := range cfg.Views {
		normalizeZoneSlice(cfg.Views[i].Zones)
	}
	for i := range cfg.Templates {
		normalizeZone(&cfg.Templates[i].ZoneConf)
	}
}

func normalizeZoneSlice(zones []ZoneConf) {
	for i := range zones {
		normalizeZone(&zones[i])
	}
}

func normalizeZone(z *ZoneConf) {
	switch normalizeKeyword(z.Type) {
	case "master":
		z.Type = "primary"
	case "slave":
		z.Type = "secondary"
	}
	if len(z.Masters) > 0 && len(z.Primaries) == 0 {
		z.Primaries = z.Masters
		z.Masters = nil
	}
}

// unmarshalYAMLInclude is kept for callers that already hold a raw YAML
// document in memory (e.g. tests) and want the same decode path as
// LoadConfig without going through the filesystem-based include
// resolver.
func unmarshalYAMLInclude(doc string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		return nil, err
	}
	normalizeLegacySynonyms(&cfg)
	return &cfg, nil
}
