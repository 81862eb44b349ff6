package library

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/canvas/internal/model"
)

// LoadDir loads every CUE file in dir as one instance and compiles the
// components it declares, in declaration order. Compile errors are
// collected so that one bad component does not hide the others.
func LoadDir(dir string) ([]*model.Component, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("library directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library directory: not a directory: %s", dir)
	}
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	return Components(ctx.BuildInstance(inst))
}

// Compile compiles a single CUE source. filename is used for positions.
func Compile(filename string, src []byte) ([]*model.Component, error) {
	ctx := cuecontext.New()
	return Components(ctx.CompileBytes(src, cue.Filename(filename)))
}

// Components compiles every component declared under the top-level
// "component" field of v.
func Components(v cue.Value) ([]*model.Component, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	componentsVal := v.LookupPath(cue.ParsePath("component"))
	if !componentsVal.Exists() {
		return nil, &CompileError{Field: "component", Message: "no components declared", Pos: v.Pos()}
	}
	iter, err := componentsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []*model.Component
	var errs []error
	for iter.Next() {
		c, err := CompileComponent(iter.Label(), iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("component %s: %w", iter.Label(), err))
			continue
		}
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return out, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
