// Package peg compiles portable PEG grammars and parses input with them.
//
// A grammar is an ordinary string of named rules:
//
//	Date  = year '-' month '-' day
//	year  = [0-9]*4
//	month = [0-9]*2
//	day   = [0-9]*2
//
// Compile translates the grammar into an immutable instruction program,
// and the resulting Parser applies that program to input strings:
//
//	p, err := peg.Compile(grammar)
//	if err != nil { ... }
//	t, err := p.Parse("2021-04-05")
//	// t.String() == `["Date",[["year","2021"],["month","04"],["day","05"]]]`
//
// The engine is self-hosting: the grammar language is itself defined by
// a pPEG grammar, and Compile parses user grammars with a precompiled
// program for that grammar before compiling them to fresh programs.
//
// # Grammar language
//
//	name = expression       rule; the first rule is the start rule
//	name                    rule call
//	'abc'  'abc'i           literal, case-insensitive literal
//	"abc"  "abc"i           literal with implicit whitespace at spaces
//	[a-z0-9_]               character class (ranges and singletons)
//	x y                     sequence
//	x / y                   ordered choice
//	x* x+ x?                repetition
//	x*N x*N.. x*N..M        bounded repetition
//	&x !x ~x                lookahead; ~x consumes one codepoint
//	(x)                     grouping
//	<name args>             host extension call
//	# ...                   comment to end of line
//
// Escapes inside literals and classes: \t \n \r \\ \uHHHH. A rule named
// "_space_" overrides the whitespace matcher used by "..." literals.
// Rule names beginning with "_" are omitted from the parse tree; rule
// names beginning with a capital letter always produce a tree node.
//
// A Program is read-only after compilation and may be shared by any
// number of concurrent parses; each Parse call owns its own Execution.
package peg
