// Package policy checks inspection reports against CUE constraints.
//
// A policy is a CUE file. The report is filled in at the path "report" and
// the whole value must then validate as concrete; every unification
// failure becomes a violation. Policies may also declare "name" and
// "description" strings.
package policy

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/elfpeek/internal/report"
)

//go:embed builtin/*.cue
var builtinFS embed.FS

var reportPath = cue.ParsePath("report")

// Policy is a compiled CUE policy.
type Policy struct {
	Name        string
	Description string

	value cue.Value
}

// Result is the outcome of checking one report.
type Result struct {
	Policy     string      `json:"policy" yaml:"policy"`
	Passed     bool        `json:"passed" yaml:"passed"`
	Violations []Violation `json:"violations" yaml:"violations"`
}

// Violation is one failed constraint.
type Violation struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Load compiles src as a policy. filename is used in error positions and
// as the policy name when src declares none.
func Load(src []byte, filename string) (*Policy, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile policy %s: %s", filename, cueerrors.Details(err, nil))
	}

	p := &Policy{
		Name:  strings.TrimSuffix(filepath.Base(filename), ".cue"),
		value: v,
	}
	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		name, err := nv.String()
		if err != nil {
			return nil, fmt.Errorf("policy %s: name: %w", filename, err)
		}
		p.Name = name
	}
	if dv := v.LookupPath(cue.ParsePath("description")); dv.Exists() {
		desc, err := dv.String()
		if err != nil {
			return nil, fmt.Errorf("policy %s: description: %w", filename, err)
		}
		p.Description = desc
	}
	return p, nil
}

// LoadFile reads and compiles the policy at path.
func LoadFile(path string) (*Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return Load(src, path)
}

// Builtin returns a policy shipped with the binary.
func Builtin(name string) (*Policy, error) {
	src, err := builtinFS.ReadFile("builtin/" + name + ".cue")
	if err != nil {
		return nil, fmt.Errorf("unknown builtin policy %q (available: %s)", name, strings.Join(Builtins(), ", "))
	}
	return Load(src, name+".cue")
}

// Builtins lists the built-in policy names.
func Builtins() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".cue"))
	}
	return names
}

// Check fills r into the policy and validates the result.
func (p *Policy) Check(r *report.Report) Result {
	res := Result{Policy: p.Name, Violations: []Violation{}}

	filled := p.value.FillPath(reportPath, r)
	err := filled.Validate(cue.Concrete(true))
	if err == nil {
		res.Passed = true
		return res
	}

	seen := map[Violation]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if !seen[v] {
			seen[v] = true
			res.Violations = append(res.Violations, v)
		}
	}
	slices.SortFunc(res.Violations, func(a, b Violation) int {
		return strings.Compare(a.String(), b.String())
	})
	return res
}
