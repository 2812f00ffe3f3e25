// Package generator applies a template to a parsed specification and
// writes the resulting files into an output directory.
//
// Generation of one template happens in two phases:
//  1. Every output file is rendered into memory. Rendering has no side
//     effects, so files are rendered concurrently.
//  2. The rendered files are written to disk one at a time, in sorted
//     order. Nothing is written when any file fails to render.
//
// Files written by an earlier call are never removed, even when a later
// call fails.
package generator

import (
	"bytes"
	"context"
	"go/format"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/realm/realm-bindgen/internal/debug"
	"github.com/realm/realm-bindgen/internal/spec"
	"github.com/realm/realm-bindgen/internal/templates"
)

// Context is everything one generation run needs. The same RawSpec and
// OptInSpec may be shared by many runs; Generate never modifies them.
type Context struct {
	RawSpec *spec.Spec

	// OptInSpec is optional.
	OptInSpec *spec.OptInList

	Template *templates.Template

	// OutputPath is the directory files are written to. It is created if
	// it does not exist.
	OutputPath string
}

// Data is the value templates are executed with.
type Data struct {
	// Spec is a freshly bound view of RawSpec with opt-in flags applied.
	Spec *spec.BoundSpec

	RawSpec *spec.Spec
	OptIn   *spec.OptInList

	// Template is the template's file name.
	Template string

	OutputPath string
}

// Generate applies gen.Template to gen.RawSpec and writes the output files
// under gen.OutputPath.
func Generate(ctx context.Context, gen Context) error {
	log := debug.FromContext(ctx)

	if gen.RawSpec == nil {
		return errors.New("no spec to generate from")
	}
	if gen.Template == nil {
		return errors.New("no template to generate with")
	}

	bound := spec.Bind(gen.RawSpec)
	if gen.OptInSpec != nil {
		if err := bound.ApplyOptInList(gen.OptInSpec); err != nil {
			return errors.WithMessagef(err, "template %s", gen.Template.Name)
		}
	}

	data := &Data{
		Spec:       bound,
		RawSpec:    gen.RawSpec,
		OptIn:      gen.OptInSpec,
		Template:   gen.Template.Name,
		OutputPath: gen.OutputPath,
	}

	files := gen.Template.Files()
	log.Debug("Generating", "template", gen.Template.Path, "files", len(files), "output", gen.OutputPath)

	rendered, err := renderAll(ctx, gen.Template, files, data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(gen.OutputPath, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", gen.OutputPath)
	}
	for i, file := range files {
		target := filepath.Join(gen.OutputPath, filepath.FromSlash(file))
		if err := writeFile(target, rendered[i]); err != nil {
			return err
		}
		log.Debug("Wrote file", "path", target, "bytes", len(rendered[i]))
	}
	return nil
}

// renderAll renders every file of t concurrently. The result has one
// entry per file, in the order of files.
func renderAll(ctx context.Context, t *templates.Template, files []string, data *Data) ([][]byte, error) {
	rendered := make([][]byte, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			// Another file already failed.
			if ctx.Err() != nil {
				return nil
			}
			out, err := render(t, file, data)
			if err != nil {
				return err
			}
			rendered[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rendered, nil
}

// render renders a single file. Go sources are gofmt'ed.
func render(t *templates.Template, file string, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Render(&buf, file, data); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(file, ".go") {
		return buf.Bytes(), nil
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format %s from template %s", file, t.Name)
	}
	return formatted, nil
}

// writeFile writes data to path, creating missing parent directories.
// Existing files are overwritten.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
