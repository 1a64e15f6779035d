// Package catalog loads the declarative form definitions from forms.yaml,
// checks them against schema.json and compiles them into form schemas.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/carmarket/carmarket/internal/form"
)

//go:embed forms.yaml
var formsYAML []byte

//go:embed schema.json
var schemaJSON []byte

// ErrUnknownForm is returned by Lookup for names missing from the catalog.
var ErrUnknownForm = errors.New("catalog: unknown form")

// Form is one compiled catalog entry.
type Form struct {
	Name    string
	Title   string
	Method  string
	Path    string
	Success string
	Next    string
	Schema  *form.Schema
}

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// ResolvePath fills {param} placeholders in the request path. Every
// placeholder must be supplied.
func (f *Form) ResolvePath(params map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(f.Path, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := params[key]
		if !ok || v == "" {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("form %s: missing path params %s", f.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

// NextPath fills {field} placeholders in the success route from the
// top-level fields of the response body. It returns "" when the form has no
// next route or the response lacks a referenced field.
func (f *Form) NextPath(result json.RawMessage) string {
	if f.Next == "" {
		return ""
	}
	if !placeholder.MatchString(f.Next) {
		return f.Next
	}
	var body map[string]any
	if err := json.Unmarshal(result, &body); err != nil {
		return ""
	}
	ok := true
	out := placeholder.ReplaceAllStringFunc(f.Next, func(m string) string {
		v, found := body[m[1:len(m)-1]]
		if !found || v == nil {
			ok = false
			return m
		}
		return url.PathEscape(form.Stringify(v))
	})
	if !ok {
		return ""
	}
	return out
}

// NewSession starts a form session for this entry.
func (f *Form) NewSession() *form.Session {
	return form.NewSession(f.Schema)
}

// Catalog is an immutable set of compiled forms.
type Catalog struct {
	forms map[string]*Form
	order []string
}

// Lookup returns the form called name.
func (c *Catalog) Lookup(name string) (*Form, error) {
	f, ok := c.forms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}
	return f, nil
}

// Names returns form names in file order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Forms returns every form in file order.
func (c *Catalog) Forms() []*Form {
	out := make([]*Form, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.forms[name])
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(formsYAML)
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for program start-up; it panics on a broken
// embedded catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// document mirrors forms.yaml.
type document struct {
	Forms []formDef `yaml:"forms"`
}

type formDef struct {
	Name     string     `yaml:"name"`
	Title    string     `yaml:"title"`
	Method   string     `yaml:"method"`
	Path     string     `yaml:"path"`
	Fallback string     `yaml:"fallback"`
	Success  string     `yaml:"success"`
	Next     string     `yaml:"next"`
	Confirm  string     `yaml:"confirm"`
	Fields   []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Key         string      `yaml:"key"`
	Label       string      `yaml:"label"`
	Kind        string      `yaml:"kind"`
	Required    bool        `yaml:"required"`
	Placeholder string      `yaml:"placeholder"`
	MaxLength   int         `yaml:"max_length"`
	DigitsOnly  bool        `yaml:"digits_only"`
	Omit        bool        `yaml:"omit"`
	Default     any         `yaml:"default"`
	Options     []optionDef `yaml:"options"`
	Rules       []ruleDef   `yaml:"rules"`
}

type optionDef struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// ruleDef accepts either a bare rule string or {rule, message}.
type ruleDef struct {
	Rule    string `yaml:"rule"`
	Message string `yaml:"message"`
}

func (r *ruleDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Rule = node.Value
		return nil
	}
	type plain ruleDef
	return node.Decode((*plain)(r))
}

// Parse validates and compiles a catalog document.
func Parse(data []byte) (*Catalog, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{forms: make(map[string]*Form, len(doc.Forms))}
	for _, def := range doc.Forms {
		if _, dup := c.forms[def.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate form %q", def.Name)
		}
		f, err := compile(def)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", def.Name, err)
		}
		c.forms[def.Name] = f
		c.order = append(c.order, def.Name)
	}
	return c, nil
}

func compile(def formDef) (*Form, error) {
	fields := make([]form.Field, 0, len(def.Fields))
	for _, fd := range def.Fields {
		f, err := compileField(fd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Key, err)
		}
		fields = append(fields, f)
	}

	opts := []form.SchemaOption{form.WithFallback(def.Fallback)}
	if def.Confirm != "" {
		opts = append(opts, form.WithConfirmation(def.Confirm))
	}
	schema, err := form.NewSchema(def.Name, fields, opts...)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(def.Method)
	if method == "" {
		method = "POST"
	}
	return &Form{
		Name:    def.Name,
		Title:   def.Title,
		Method:  method,
		Path:    def.Path,
		Success: def.Success,
		Next:    def.Next,
		Schema:  schema,
	}, nil
}

func compileField(fd fieldDef) (form.Field, error) {
	f := form.Field{
		Key:         fd.Key,
		Label:       fd.Label,
		Kind:        form.Kind(fd.Kind),
		Required:    fd.Required,
		Placeholder: fd.Placeholder,
		MaxLength:   fd.MaxLength,
		DigitsOnly:  fd.DigitsOnly,
		Omit:        fd.Omit,
		Default:     fd.Default,
	}
	if f.Kind == "" {
		f.Kind = form.KindText
	}
	for _, o := range fd.Options {
		f.Options = append(f.Options, form.Option{Value: o.Value, Label: o.Label})
	}

	rules := make([]form.ValidateFunc, 0, len(fd.Rules))
	for _, rd := range fd.Rules {
		rule, err := ParseRule(rd.Rule, rd.Message)
		if err != nil {
			return f, err
		}
		rules = append(rules, rule)
	}
	switch len(rules) {
	case 0:
	case 1:
		f.Validate = rules[0]
	default:
		f.Validate = form.All(rules...)
	}
	return f, nil
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compiledErr    error
)

const schemaURL = "schema://carmarket/forms.json"

func documentSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compiledErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compiledErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledErr
}

// validateDocument checks the YAML against schema.json. The YAML is
// round-tripped through JSON so the validator sees plain JSON values.
func validateDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode catalog: %w", err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return fmt.Errorf("catalog to json: %w", err)
	}

	schema, err := documentSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// Summary is a one-line description per form, sorted by name.
func (c *Catalog) Summary() []string {
	lines := make([]string, 0, len(c.forms))
	for _, f := range c.forms {
		confirm := ""
		if f.Schema.RequiresConfirmation() {
			confirm = " (confirm)"
		}
		lines = append(lines, fmt.Sprintf("%-20s %-6s %-40s %d fields%s",
			f.Name, f.Method, f.Path, f.Schema.Len(), confirm))
	}
	sort.Strings(lines)
	return lines
}
