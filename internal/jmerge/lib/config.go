package lib

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is a loaded configuration document. References have been resolved
// against the document's directory and every declaration that could not be
// honoured is listed in Warnings.
type Config struct {
	Debug    bool
	Policy   ManifestPolicy
	Inputs   []string
	Excludes []string
	Output   string
	Warnings []error
}

// document is the format-independent shape of a configuration document.
type document struct {
	Debug    bool
	Keep     string
	Existing []propertyDecl
	New      []types.Attribute
	Files    []string
	Excludes []string
	Output   string
}

type propertyDecl struct {
	Key  string
	Keep string
}

// --- XML ---

type xmlDocument struct {
	XMLName  xml.Name     `xml:"properties"`
	Debug    *xmlValue    `xml:"debug"`
	Manifest *xmlManifest `xml:"manifest"`
	Files    []xmlURL     `xml:"files>file"`
	Excludes []xmlPattern `xml:"exclude"`
	Output   *xmlURL      `xml:"output"`
}

type xmlValue struct {
	Value string `xml:"value,attr"`
}

type xmlManifest struct {
	Keep     string        `xml:"keep,attr"`
	Existing []xmlExisting `xml:"existingProperty"`
	New      []xmlNew      `xml:"newProperty"`
}

type xmlExisting struct {
	Key  string `xml:"key,attr"`
	Keep string `xml:"keep,attr"`
}

type xmlNew struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type xmlURL struct {
	URL string `xml:"url,attr"`
}

type xmlPattern struct {
	Pattern string `xml:"pattern,attr"`
}

func decodeXML(data []byte) (*document, error) {
	var x xmlDocument
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&x); err != nil {
		return nil, err
	}
	doc := &document{}
	if x.Debug != nil {
		doc.Debug = x.Debug.Value == "true"
	}
	if x.Manifest != nil {
		doc.Keep = x.Manifest.Keep
		for _, e := range x.Manifest.Existing {
			doc.Existing = append(doc.Existing, propertyDecl{Key: e.Key, Keep: e.Keep})
		}
		for _, n := range x.Manifest.New {
			doc.New = append(doc.New, types.Attribute{Name: n.Key, Value: n.Value})
		}
	}
	for _, f := range x.Files {
		doc.Files = append(doc.Files, f.URL)
	}
	for _, e := range x.Excludes {
		doc.Excludes = append(doc.Excludes, e.Pattern)
	}
	if x.Output != nil {
		doc.Output = x.Output.URL
	}
	return doc, nil
}

// --- YAML ---

type yamlDocument struct {
	Debug    bool `yaml:"debug"`
	Manifest struct {
		Keep     string `yaml:"keep"`
		Existing []struct {
			Key  string `yaml:"key"`
			Keep string `yaml:"keep"`
		} `yaml:"existing"`
		New []types.Attribute `yaml:"new"`
	} `yaml:"manifest"`
	Files    []string `yaml:"files"`
	Excludes []string `yaml:"exclude"`
	Output   string   `yaml:"output"`
}

func decodeYAML(data []byte) (*document, error) {
	var y yamlDocument
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, err
	}
	doc := &document{
		Debug:    y.Debug,
		Keep:     y.Manifest.Keep,
		New:      y.Manifest.New,
		Files:    y.Files,
		Excludes: y.Excludes,
		Output:   y.Output,
	}
	for _, e := range y.Manifest.Existing {
		doc.Existing = append(doc.Existing, propertyDecl{Key: e.Key, Keep: e.Keep})
	}
	return doc, nil
}

// LoadConfig reads the configuration document at path. YAML is used for
// .yaml and .yml files, XML otherwise. The returned error is a
// *types.ConfigParseError and only reports a document that cannot be read
// or decoded at all; problems with single declarations end up in
// Config.Warnings.
func LoadConfig(ctx context.Context, path string, selector *Selector) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigParseError{Decl: path, Reason: "cannot read configuration", Err: err}
	}

	var doc *document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = decodeYAML(data)
	default:
		doc, err = decodeXML(data)
	}
	if err != nil {
		return nil, &types.ConfigParseError{Decl: path, Reason: "malformed configuration", Err: err}
	}

	return doc.resolve(ctx, filepath.Dir(path), selector), nil
}

// resolve turns a decoded document into a Config, collecting a warning for
// every declaration it has to skip.
func (doc *document) resolve(ctx context.Context, baseDir string, selector *Selector) *Config {
	cfg := &Config{Debug: doc.Debug}
	warn := func(decl, reason string, err error) {
		cfg.Warnings = append(cfg.Warnings, &types.ConfigParseError{Decl: decl, Reason: reason, Err: err})
	}

	if doc.Keep != "" {
		r, err := ParseRetention(doc.Keep)
		if err != nil {
			warn("manifest", "invalid default retention", err)
		} else {
			cfg.Policy.Default = r
		}
	}
	for _, p := range doc.Existing {
		if p.Key == "" {
			warn("existingProperty", "missing key", nil)
			continue
		}
		r, err := ParseRetention(p.Keep)
		if err != nil {
			warn(p.Key, "invalid retention", err)
			continue
		}
		cfg.Policy.SetOverride(p.Key, r)
	}
	for _, attr := range doc.New {
		if !ValidAttributeName(attr.Name) {
			warn(attr.Name, "invalid attribute name", nil)
			continue
		}
		cfg.Policy.NewAttributes = append(cfg.Policy.NewAttributes, attr)
	}

	for _, ref := range doc.Files {
		files, err := selector.Resolve(ctx, baseDir, ref)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, err)
			continue
		}
		if len(files) == 0 {
			selector.logger.Debug("pattern selected no archives", zap.String("pattern", ref))
		}
		cfg.Inputs = append(cfg.Inputs, files...)
	}

	cfg.Excludes = append(cfg.Excludes, doc.Excludes...)

	if out := strings.TrimSpace(doc.Output); out != "" {
		if strings.Contains(out, Wildcard) {
			warn(out, "output must not contain a wildcard", nil)
		} else {
			cfg.Output = ResolvePath(baseDir, out)
		}
	}
	return cfg
}

// String renders the loaded configuration for the debug log.
func (c *Config) String() string {
	return fmt.Sprintf("inputs=%d output=%q excludes=%d default=%s overrides=%d new=%d warnings=%d",
		len(c.Inputs), c.Output, len(c.Excludes), c.Policy.Default, c.Policy.Overrides(), len(c.Policy.NewAttributes), len(c.Warnings))
}
