// Package catalog loads command templates from YAML or JSON documents and
// indexes them by template ID.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/jobscript/internal/logging"
	"github.com/me/jobscript/internal/resolve"
	"github.com/me/jobscript/internal/transform"
	"github.com/me/jobscript/pkg/jobtmpl"
)

// identPattern matches names usable as environment variable names once
// uppercased.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Loader parses and validates template documents.
type Loader struct {
	logger *slog.Logger
	schema *schemaValidator
}

// NewLoader creates a Loader. A nil logger discards diagnostics.
func NewLoader(logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	schema, err := newSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &Loader{logger: logger.With("component", "catalog"), schema: schema}, nil
}

// Parse decodes one document. The document is either a single template or a
// mapping with a "templates" list. source names the document in errors.
func (l *Loader) Parse(data []byte, source string) ([]*jobtmpl.CommandTemplate, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: YAML parse error: %w", source, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty document", source)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a mapping at the top level", source)
	}

	entries := []*yaml.Node{root}
	if list := mappingValue(root, "templates"); list != nil {
		if list.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%s: templates must be a list", source)
		}
		entries = list.Content
	}

	templates := make([]*jobtmpl.CommandTemplate, 0, len(entries))
	for i, n := range entries {
		where := source
		if len(entries) > 1 || n != root {
			where = fmt.Sprintf("%s: templates[%d]", source, i)
		}
		t, err := l.parseTemplate(n, where)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded template", "template", t.TemplateID, "source", source)
		templates = append(templates, t)
	}
	return templates, nil
}

func (l *Loader) parseTemplate(n *yaml.Node, where string) (*jobtmpl.CommandTemplate, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	fieldErrs, err := l.schema.validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	if len(fieldErrs) > 0 {
		return nil, newValidationError(where, "template does not match schema", fieldErrs...)
	}

	var t jobtmpl.CommandTemplate
	if err := n.Decode(&t); err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	if errs := Validate(&t); len(errs) > 0 {
		return nil, newValidationError(where, fmt.Sprintf("template %s is invalid", t.TemplateID), errs...)
	}
	return &t, nil
}

// Validate checks the parts of a template the schema cannot express:
// transform names, source paths, and variable names.
func Validate(t *jobtmpl.CommandTemplate) []FieldError {
	var errs []FieldError
	for _, name := range sortedKeys(t.Variables.Dynamic) {
		def := t.Variables.Dynamic[name]
		field := "variables.dynamic." + name
		if !identPattern.MatchString(name) {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("%q is not a valid variable name", name)})
		}
		if _, err := resolve.ParseSource(def.Source); err != nil {
			errs = append(errs, FieldError{Field: field + ".source", Message: err.Error()})
		}
		if _, err := transform.ParseChain(def.Transform); err != nil {
			errs = append(errs, FieldError{Field: field + ".transform", Message: err.Error()})
		}
	}
	for _, name := range sortedKeys(t.Variables.InputFiles) {
		def := t.Variables.InputFiles[name]
		field := "variables.input_files." + name
		if !identPattern.MatchString(name) {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("%q is not a valid variable name", name)})
		}
		if !identPattern.MatchString(def.FileKey) {
			errs = append(errs, FieldError{Field: field + ".file_key", Message: fmt.Sprintf("%q is not a valid file key", def.FileKey)})
		}
	}
	return errs
}

// Load reads a template file, or every *.yaml, *.yml and *.json file in a
// directory, into a Catalog.
func (l *Loader) Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog directory: %w", err)
		}
		files = files[:0]
		for _, e := range entries {
			if e.IsDir() || !isTemplateFile(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
		sort.Strings(files)
	}

	c := New()
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		templates, err := l.Parse(data, f)
		if err != nil {
			return nil, err
		}
		for _, t := range templates {
			if err := c.Add(t); err != nil {
				return nil, fmt.Errorf("%s: %w", f, err)
			}
		}
	}
	l.logger.Info("catalog loaded", "path", path, "templates", c.Len())
	return c, nil
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Catalog indexes templates by ID.
type Catalog struct {
	templates map[string]*jobtmpl.CommandTemplate
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{templates: make(map[string]*jobtmpl.CommandTemplate)}
}

// Add inserts t. Template IDs must be unique.
func (c *Catalog) Add(t *jobtmpl.CommandTemplate) error {
	if _, exists := c.templates[t.TemplateID]; exists {
		return fmt.Errorf("duplicate template_id %q", t.TemplateID)
	}
	c.templates[t.TemplateID] = t
	return nil
}

// Get returns the template with the given ID.
func (c *Catalog) Get(id string) (*jobtmpl.CommandTemplate, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// List returns every template sorted by ID.
func (c *Catalog) List() []*jobtmpl.CommandTemplate {
	out := make([]*jobtmpl.CommandTemplate, 0, len(c.templates))
	for _, id := range sortedKeys(c.templates) {
		out = append(out, c.templates[id])
	}
	return out
}

// ByCategory returns the templates tagged with cat, sorted by ID.
func (c *Catalog) ByCategory(cat jobtmpl.Category) []*jobtmpl.CommandTemplate {
	var out []*jobtmpl.CommandTemplate
	for _, t := range c.List() {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
