package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/peterh/liner"

	"github.com/pcanz/pPEG/peg"
)

const (
	historyFile = ".ppeg_history"
	prompt      = "peg> "
)

var usageText = `usage: ppeg -g grammar.peg [options] [input files...]

Compiles the grammar and parses each input file, printing the parse
tree (or the fault report) for each. With no input files, reads lines
interactively and parses each line.

options:
`

func main() {
	grammarPath := flag.String("g", "", "grammar file (required)")
	startRule := flag.String("s", "", "start rule (default: the grammar's first rule)")
	trace := flag.Bool("t", false, "step trace to stderr")
	short := flag.Bool("short", false, "allow partial matches")
	watch := flag.Bool("w", false, "watch the grammar file and recompile on change")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))
	if *grammarPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var opts []peg.Option
	if *trace {
		opts = append(opts, peg.Trace(true))
	}
	if *short {
		opts = append(opts, peg.Short(true))
	}
	if *startRule != "" {
		opts = append(opts, peg.Start(*startRule))
	}

	parser, err := compileFile(*grammarPath, opts)
	if err != nil {
		logger.Error(err, "failed compile grammar", "path", *grammarPath)
		os.Exit(1)
	}

	var current atomic.Pointer[peg.Parser]
	current.Store(parser)

	if *watch {
		closeWatch, err := watchGrammar(*grammarPath, opts, &current, logger)
		if err != nil {
			logger.Error(err, "failed watch grammar", "path", *grammarPath)
			os.Exit(1)
		}
		defer closeWatch()
	}

	if flag.NArg() > 0 {
		code := 0
		for _, path := range flag.Args() {
			if err := parseFile(current.Load(), path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				code = 1
			}
		}
		os.Exit(code)
	}

	repl(&current, logger)
}

func compileFile(path string, opts []peg.Option) (*peg.Parser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.WithMessagef(err, "failed read grammar '%s'", path)
	}
	return peg.Compile(string(b), opts...)
}

func parseFile(p *peg.Parser, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return cerrors.WithMessagef(err, "failed read input '%s'", path)
	}
	t, err := p.Parse(string(b))
	if err != nil {
		return cerrors.WithMessagef(err, "%s", path)
	}
	fmt.Println(t.String())
	return nil
}

// watchGrammar recompiles the grammar whenever the file changes and
// swaps the new parser in for subsequent parses.
func watchGrammar(path string, opts []peg.Option, current *atomic.Pointer[peg.Parser], logger logr.Logger) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logger.Info("grammar changed", "event", e.Op.String(), "path", e.Name)
				p, err := compileFile(path, opts)
				if err != nil {
					logger.Error(err, "failed recompile grammar")
					continue
				}
				current.Store(p)
				logger.Info("grammar recompiled")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error(err, "watcher error")
			}
		}
	}()
	return func() { watcher.Close() }, nil
}

// repl reads input lines and parses each with the current grammar.
func repl(current *atomic.Pointer[peg.Parser], logger logr.Logger) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("type a line to parse it; :grammar lists the rules; :quit exits")
	for {
		in, err := line.Prompt(prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println()
			break
		}
		if err != nil {
			logger.Error(err, "read failed")
			break
		}
		if strings.TrimSpace(in) == "" {
			continue
		}
		line.AppendHistory(in)
		switch strings.TrimSpace(in) {
		case ":quit", ":q":
			saveHistory(line, histPath, logger)
			return
		case ":grammar":
			fmt.Print(current.Load().Grammar())
			continue
		}
		t, err := current.Load().Parse(in)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		fmt.Println(t.String())
	}
	saveHistory(line, histPath, logger)
}

func saveHistory(line *liner.State, histPath string, logger logr.Logger) {
	if histPath == "" {
		return
	}
	f, err := os.Create(histPath)
	if err != nil {
		logger.Error(err, "failed save history")
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
