// Package solfront contains a driver for lexing, parsing, resolving, and
// lowering a set of source files into control-flow graphs ready for a
// codegen backend.
package solfront

import (
	"fmt"

	"github.com/dekarrin/solfront/internal/cfg"
	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/sema"
	"github.com/dekarrin/solfront/internal/source"
	"github.com/dekarrin/solfront/internal/types"
)

// Session holds everything needed to compile a set of source files against
// one target: the shared Namespace every file's symbols and diagnostics
// land in, the lexer built once and reused for every file, and the list of
// files added so far.
type Session struct {
	ns     *namespace.Namespace
	lx     lex.Lexer
	target types.Target

	units   []sema.Unit
	running bool
}

// New creates a new Session ready to have source files added to it. If the
// zero Target is given, EVM() is used.
func New(target types.Target) *Session {
	if target.Name == "" {
		target = types.EVM()
	}
	return &Session{
		ns:     namespace.New(target),
		lx:     lex.BuildLexer(),
		target: target,
	}
}

// AddFile lexes and parses contents as one source file, recording the file
// and its parse diagnostics on the Session's Namespace. It returns the
// FileID assigned to it, for use in later diagnostic lookups.
func (s *Session) AddFile(path string, contents []byte) (source.FileID, error) {
	f := s.ns.AddFile(path, contents)

	result, err := parse.Parse(f.ID, s.lx, contents)
	if err != nil {
		return f.ID, fmt.Errorf("lex %s: %w", path, err)
	}

	for _, d := range result.Diagnostics {
		sev := namespace.SeverityError
		if d.Severity == parse.SeverityWarning {
			sev = namespace.SeverityWarning
		} else if d.Severity == parse.SeverityInfo {
			sev = namespace.SeverityInfo
		}
		s.ns.Diagnose(sev, d.Span, d.Message)
	}

	s.units = append(s.units, sema.Unit{File: f.ID, Tree: result.Tree, Comments: result.Comments})
	return f.ID, nil
}

// Compile runs semantic resolution over every file added so far and, if
// that leaves the Namespace free of errors, lowers every resolved function
// and modifier body to a ControlFlowGraph. It returns the Namespace holding
// every resolved symbol, diagnostic, and (if resolution succeeded) IR, plus
// an error only if Compile is called a second time on the same Session or
// with no files added.
func (s *Session) Compile() (*namespace.Namespace, error) {
	if s.running {
		return nil, fmt.Errorf("compile already in progress on this session")
	}
	if len(s.units) == 0 {
		return nil, fmt.Errorf("no source files added")
	}

	s.running = true
	defer func() {
		s.running = false
	}()

	sema.ResolveProgram(s.ns, s.units)
	cfg.BuildProgram(s.ns)

	return s.ns, nil
}

// Diagnostics returns every diagnostic raised so far, in the order they were
// recorded: parse errors from AddFile interleaved by file, then every
// semantic diagnostic ResolveProgram raised during the last Compile.
func (s *Session) Diagnostics() []namespace.Diagnostic {
	return s.ns.Diagnostics
}

// HasErrors reports whether any diagnostic recorded so far is an error,
// meaning the last Compile (if any) did not produce IR (see
// cfg.BuildProgram's I3 gate).
func (s *Session) HasErrors() bool {
	return s.ns.HasErrors()
}
