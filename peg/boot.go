package peg

import (
	"sync"
)

// PPEGGrammar is the grammar language defined in itself. Compile
// bootstraps from a hand-coded ptree for this exact text, so compiling
// PPEGGrammar must reproduce the bootstrap program (see the
// self-hosting test).
const PPEGGrammar = `
Peg   = " " (rule " ")+
rule  = id " = " alt

alt   = seq (" / " seq)*
seq   = rep (" " rep)*
rep   = pre sfx?
pre   = pfx? term
term  = call / sq / dq / chs / group / extn

id    = [a-zA-Z_] [a-zA-Z0-9_]*
pfx   = [&!~]
sfx   = [+?] / '*' range?
range = num (dots num?)?
num   = [0-9]+
dots  = '..'

call  = id !" ="
sq    = "'" ~"'"* "'" 'i'?
dq    = '"' ~'"'* '"' 'i'?
chs   = '[' ~']'* ']'
group = "( " alt " )"
extn  = '<' ~'>'* '>'

_space_ = ('#' ~[\n\r]* / [ \t\n\r]+)*
`

var (
	bootOnce sync.Once
	bootProg *Program
)

// bootParser returns a parser for the grammar language itself, built
// from the hand-coded bootstrap ptree. The bootstrap compiles through
// the regular compiler, so it carries the same foldings and guards as
// any user program.
func bootParser() *Parser {
	bootOnce.Do(func() {
		prog, err := compileTree(bootPtree())
		if err != nil {
			// The bootstrap ptree is part of the engine; failing to
			// compile it is a defect, not a runtime condition.
			panic(err)
		}
		bootProg = prog
	})
	return &Parser{prog: bootProg, opts: defaultOptions()}
}

// bootPtree builds the parse tree that parsing PPEGGrammar with the
// bootstrap program itself produces. Kept in the compact post-elision
// form the compiler consumes.
func bootPtree() *Ptree {
	rule := func(name string, body *Ptree) *Ptree {
		return Branch("rule", []*Ptree{Leaf("id", name), body})
	}
	id := func(name string) *Ptree { return Leaf("id", name) }
	sq := func(text string) *Ptree { return Leaf("sq", text) }
	dq := func(text string) *Ptree { return Leaf("dq", text) }
	chs := func(text string) *Ptree { return Leaf("chs", text) }
	sfx := func(text string) *Ptree { return Leaf("sfx", text) }
	pfx := func(text string) *Ptree { return Leaf("pfx", text) }
	seq := func(kids ...*Ptree) *Ptree { return Branch("seq", kids) }
	alt := func(kids ...*Ptree) *Ptree { return Branch("alt", kids) }
	rep := func(body, suffix *Ptree) *Ptree { return Branch("rep", []*Ptree{body, suffix}) }
	pre := func(sign string, body *Ptree) *Ptree {
		return Branch("pre", []*Ptree{pfx(sign), body})
	}

	return Branch("Peg", []*Ptree{
		// Peg = " " (rule " ")+
		rule("Peg", seq(
			dq(`" "`),
			rep(seq(id("rule"), dq(`" "`)), sfx("+")),
		)),
		// rule = id " = " alt
		rule("rule", seq(id("id"), dq(`" = "`), id("alt"))),

		// alt = seq (" / " seq)*
		rule("alt", seq(
			id("seq"),
			rep(seq(dq(`" / "`), id("seq")), sfx("*")),
		)),
		// seq = rep (" " rep)*
		rule("seq", seq(
			id("rep"),
			rep(seq(dq(`" "`), id("rep")), sfx("*")),
		)),
		// rep = pre sfx?
		rule("rep", seq(id("pre"), rep(id("sfx"), sfx("?")))),
		// pre = pfx? term
		rule("pre", seq(rep(id("pfx"), sfx("?")), id("term"))),
		// term = call / sq / dq / chs / group / extn
		rule("term", alt(
			id("call"), id("sq"), id("dq"), id("chs"), id("group"), id("extn"),
		)),

		// id = [a-zA-Z_] [a-zA-Z0-9_]*
		rule("id", seq(
			chs("[a-zA-Z_]"),
			rep(chs("[a-zA-Z0-9_]"), sfx("*")),
		)),
		// pfx = [&!~]
		rule("pfx", chs("[&!~]")),
		// sfx = [+?] / '*' range?
		rule("sfx", alt(
			chs("[+?]"),
			seq(sq(`'*'`), rep(id("range"), sfx("?"))),
		)),
		// range = num (dots num?)?
		rule("range", seq(
			id("num"),
			rep(seq(id("dots"), rep(id("num"), sfx("?"))), sfx("?")),
		)),
		// num = [0-9]+
		rule("num", rep(chs("[0-9]"), sfx("+"))),
		// dots = '..'
		rule("dots", sq(`'..'`)),

		// call = id !" ="
		rule("call", seq(id("id"), pre("!", dq(`" ="`)))),
		// sq = "'" ~"'"* "'" 'i'?
		rule("sq", seq(
			dq(`"'"`),
			rep(pre("~", dq(`"'"`)), sfx("*")),
			dq(`"'"`),
			rep(sq(`'i'`), sfx("?")),
		)),
		// dq = '"' ~'"'* '"' 'i'?
		rule("dq", seq(
			sq(`'"'`),
			rep(pre("~", sq(`'"'`)), sfx("*")),
			sq(`'"'`),
			rep(sq(`'i'`), sfx("?")),
		)),
		// chs = '[' ~']'* ']'
		rule("chs", seq(
			sq(`'['`),
			rep(pre("~", sq(`']'`)), sfx("*")),
			sq(`']'`),
		)),
		// group = "( " alt " )"
		rule("group", seq(dq(`"( "`), id("alt"), dq(`" )"`))),
		// extn = '<' ~'>'* '>'
		rule("extn", seq(
			sq(`'<'`),
			rep(pre("~", sq(`'>'`)), sfx("*")),
			sq(`'>'`),
		)),

		// _space_ = ('#' ~[\n\r]* / [ \t\n\r]+)*
		rule("_space_", rep(
			alt(
				seq(sq(`'#'`), rep(pre("~", chs(`[\n\r]`)), sfx("*"))),
				rep(chs(`[ \t\n\r]`), sfx("+")),
			),
			sfx("*"),
		)),
	})
}
