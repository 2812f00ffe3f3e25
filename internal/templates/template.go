// Package templates loads binding templates.
//
// A template is a single text/template source file. Every
// {{define "file:<relative path>"}} block in it produces one output file
// when the template is applied. A template without any such block renders
// its body into a single file named after the template file with its
// ".tmpl" suffix removed.
//
// Templates have the sprig function library available, plus:
//
//	toYaml   marshals a value to YAML
//	header   returns a "generated code" banner behind the given comment prefix
package templates

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// filePrefix marks a named template as an output file.
const filePrefix = "file:"

// Template is a parsed template file. Executing it is safe from multiple
// goroutines at once.
type Template struct {
	// Name is the base name of the template file, e.g. "go.tmpl".
	Name string

	// Path is the absolute path the template was loaded from.
	Path string

	tmpl *template.Template

	// files maps each output path (slash separated, relative to the
	// output directory) to the name of the template that renders it.
	files map[string]string
}

// Import reads and parses the template file at path.
func Import(path string) (*Template, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve template path %s", path)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read template %s", abs)
	}
	return Parse(abs, src)
}

// Parse parses template source as if it had been read from path.
func Parse(path string, src []byte) (*Template, error) {
	name := filepath.Base(path)
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(funcMap()).
		Parse(string(src))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", path)
	}

	t := &Template{Name: name, Path: path, tmpl: tmpl, files: make(map[string]string)}
	for _, defined := range tmpl.Templates() {
		out, ok := strings.CutPrefix(defined.Name(), filePrefix)
		if !ok {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(out)) {
			return nil, errors.Errorf("template %s: output file %q must be a relative path inside the output directory", path, out)
		}
		t.files[out] = defined.Name()
	}
	if len(t.files) == 0 {
		t.files[strings.TrimSuffix(name, ".tmpl")] = name
	}
	return t, nil
}

// Files returns the output paths the template produces, sorted.
func (t *Template) Files() []string {
	files := make([]string, 0, len(t.files))
	for f := range t.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Render executes the part of the template that produces file and writes
// the result to w.
func (t *Template) Render(w io.Writer, file string, data any) error {
	name, ok := t.files[file]
	if !ok {
		return errors.Errorf("template %s does not produce %q", t.Name, file)
	}
	if err := t.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "failed to render %s from template %s", file, t.Name)
	}
	return nil
}

func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["toYaml"] = toYaml
	funcs["header"] = header
	return funcs
}

func toYaml(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

func header(commentPrefix string) string {
	return fmt.Sprintf("%s Code generated by realm-bindgen. DO NOT EDIT.", commentPrefix)
}
