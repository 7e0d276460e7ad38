package peg

import (
	"log"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// DefaultMaxDepth is the default bound on rule recursion. Exceeding it
// is a grammar error, not a parse failure.
const DefaultMaxDepth = 100

type options struct {
	trace     bool
	traceRule string
	short     bool
	start     string
	maxDepth  int
	ext       map[string]Extension
	logger    logr.Logger
	loggerSet bool
}

func defaultOptions() options {
	return options{maxDepth: DefaultMaxDepth}
}

// Option configures Compile or Parse. Options given to Compile become
// the parser's defaults; options given to Parse apply to that call.
type Option func(*options)

// Trace switches the step trace on or off.
func Trace(on bool) Option {
	return func(o *options) { o.trace = on }
}

// TraceRule switches the step trace on for invocations of one rule.
func TraceRule(name string) Option {
	return func(o *options) { o.trace = true; o.traceRule = name }
}

// Short makes Parse return the result of a partial match instead of a
// "fell short" failure when input remains unconsumed.
func Short(on bool) Option {
	return func(o *options) { o.short = on }
}

// Start overrides the entry rule (the default is the first rule).
func Start(rule string) Option {
	return func(o *options) { o.start = rule }
}

// MaxDepth overrides the rule recursion bound.
func MaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Extensions adds host extensions callable via <name args> in the
// grammar. User extensions shadow the built-ins of the same name.
func Extensions(m map[string]Extension) Option {
	return func(o *options) {
		if o.ext == nil {
			o.ext = make(map[string]Extension, len(m))
		}
		for k, v := range m {
			o.ext[k] = v
		}
	}
}

// Logger routes the step trace to the given logger instead of the
// default stderr sink.
func Logger(l logr.Logger) Option {
	return func(o *options) { o.logger = l; o.loggerSet = true }
}

// Parser applies one compiled grammar program to input strings. A
// Parser is immutable and safe for concurrent use.
type Parser struct {
	prog *Program
	opts options
}

// Compile translates grammar text into a Parser. The grammar is parsed
// with the engine's own bootstrap program, then compiled to a fresh
// instruction program. Errors are grammar errors: syntax faults in the
// grammar text, duplicate or undefined rules, or missing extensions.
func Compile(grammar string, opts ...Option) (*Parser, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	t, err := bootParser().parse(grammar, defaultOptions())
	if err != nil {
		return nil, errors.WithMessage(err, "grammar parse failed")
	}
	prog, err := compileTree(t)
	if err != nil {
		return nil, err
	}
	if err := checkExtensions(prog, o.ext); err != nil {
		return nil, err
	}
	return &Parser{prog: prog, opts: o}, nil
}

// Parse applies the grammar to the input and returns the parse tree.
// A failure of the input comes back as a *ParseError holding the full
// fault report; a defect in the grammar (recursion bound, missing
// extension) comes back as a grammar error.
func (p *Parser) Parse(input string, opts ...Option) (*Ptree, error) {
	o := p.opts
	if len(opts) > 0 {
		// Clone the extension table so per-call Extensions do not
		// leak into the parser's defaults.
		ext := make(map[string]Extension, len(o.ext))
		for k, v := range o.ext {
			ext[k] = v
		}
		o.ext = ext
		for _, f := range opts {
			f(&o)
		}
	}
	return p.parse(input, o)
}

// Grammar returns the compiled program listed one rule per line.
func (p *Parser) Grammar() string {
	return p.prog.Listing()
}

// Program returns the parser's compiled program.
func (p *Parser) Program() *Program {
	return p.prog
}

func (p *Parser) parse(input string, o options) (*Ptree, error) {
	startIdx := p.prog.Start
	if o.start != "" {
		idx, ok := p.prog.Names[o.start]
		if !ok {
			return nil, errors.Mark(errors.Newf("Undefined rule: %s", o.start), ErrUndefinedRule)
		}
		startIdx = idx
	}
	lg := o.logger
	if !o.loggerSet {
		if o.trace {
			lg = stdr.New(log.New(os.Stderr, "", 0))
		} else {
			lg = logr.Discard()
		}
	}
	x := &Execution{
		P:         p.prog,
		Input:     []rune(input),
		depth:     -1,
		maxDepth:  o.maxDepth,
		faultPos:  -1,
		ext:       o.ext,
		traceOn:   o.trace,
		traceRule: o.traceRule,
		log:       lg,
	}
	ok, err := x.eval(&ID{Index: startIdx, Name: p.prog.Rules[startIdx].Name})
	if err != nil {
		return nil, err
	}
	if !ok {
		if len(x.Input) == 0 {
			return nil, &ParseError{Report: "empty input string", Line: 1, Col: 1}
		}
		return nil, x.failError()
	}
	if x.Pos < len(x.Input) && !o.short {
		return nil, x.fellShortError()
	}
	if len(x.Tree) != 1 {
		return nil, errors.Mark(errors.Newf("parse produced %d tree roots", len(x.Tree)), ErrBadPtree)
	}
	return x.Tree[0], nil
}

// checkExtensions verifies at compile time that every <name args> in
// the program resolves to a user extension or a built-in.
func checkExtensions(prog *Program, ext map[string]Extension) error {
	var walk func(Op) error
	walk = func(op Op) error {
		switch v := op.(type) {
		case *Alt:
			for _, sub := range v.Subs {
				if err := walk(sub); err != nil {
					return err
				}
			}
		case *Seq:
			for _, sub := range v.Subs {
				if err := walk(sub); err != nil {
					return err
				}
			}
		case *Rep:
			return walk(v.Sub)
		case *Pre:
			return walk(v.Sub)
		case *Extn:
			name := v.Spec
			if f := strings.Fields(v.Spec); len(f) > 0 {
				name = f[0]
			}
			if ext[name] == nil && builtins[name] == nil {
				return errors.Mark(errors.Newf("Missing extension: %s", name), ErrMissingExtension)
			}
		}
		return nil
	}
	for _, r := range prog.Rules {
		if err := walk(r.Body); err != nil {
			return err
		}
	}
	return nil
}
