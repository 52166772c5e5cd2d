package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrExit is returned by an Executor to end the loop.
var ErrExit = errors.New("repl: exit")

// Executor runs one parsed input line.
type Executor func(ctx context.Context, args []string) error

// PromptFunc returns the prompt shown before each line.
type PromptFunc func() string

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
	exec      Executor
	prompt    PromptFunc
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history. The default keeps history in memory only.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCompleter replaces the default command list.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithPrompt sets the prompt function.
func WithPrompt(fn PromptFunc) Option {
	return func(r *REPL) {
		r.prompt = fn
	}
}

// New creates a new REPL that hands every line to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(),
		history:   NewHistory(""),
		exec:      exec,
		prompt:    func() string { return "delivtrack> " },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the REPL history.
func (r *REPL) History() *History {
	return r.history
}

// Run reads lines until exit, EOF or ctx is done. Command errors are
// printed and the loop continues. Input is read only while the prompt is
// shown, so commands may read the terminal themselves.
func (r *REPL) Run(ctx context.Context) error {
	next := make(chan struct{})
	defer close(next)
	results := make(chan readResult)
	go r.read(ctx, next, results)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt())

		var res readResult
		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		}
		select {
		case res = <-results:
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		}
		if !res.ok {
			fmt.Fprintln(r.output)
			return res.err
		}

		line := strings.TrimSpace(res.line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		done, err := r.execute(ctx, line)
		if err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

type readResult struct {
	line string
	ok   bool
	err  error
}

func (r *REPL) read(ctx context.Context, next <-chan struct{}, results chan<- readResult) {
	for range next {
		line, err := ReadLine(r.input)
		res := readResult{line: line, ok: err == nil}
		if err != nil && err != io.EOF {
			res.err = err
		}
		select {
		case results <- res:
		case <-ctx.Done():
			return
		}
		if !res.ok {
			return
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) (bool, error) {
	switch {
	case line == "exit" || line == "quit":
		return true, nil
	case line == "history":
		for i := r.history.Len() - 1; i >= 0; i-- {
			fmt.Fprintf(r.output, "%5d  %s\n", r.history.Len()-i, r.history.Get(i))
		}
		return false, nil
	case strings.HasSuffix(line, "?"):
		prefix := strings.TrimSpace(strings.TrimSuffix(line, "?"))
		for _, s := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, s)
		}
		return false, nil
	}

	args, err := Split(line)
	if err != nil {
		return false, err
	}
	if !r.completer.Known(args[0]) {
		msg := fmt.Sprintf("unknown command %q", args[0])
		if s := r.completer.Complete(args[0]); len(s) > 0 {
			msg += ", did you mean: " + strings.Join(s, ", ")
		}
		return false, errors.New(msg)
	}

	err = r.exec(ctx, args)
	if errors.Is(err, ErrExit) {
		return true, nil
	}
	return false, err
}

// ReadLine reads one line from in without reading past its newline, so
// whatever follows stays available to the next reader of in. Commands
// that prompt read the same input as the loop.
func ReadLine(in io.Reader) (string, error) {
	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return strings.TrimSuffix(string(line), "\r"), nil
			}
			line = append(line, b[0])
		}
		if err == io.EOF && len(line) > 0 {
			return string(line), nil
		}
		if err != nil {
			return "", err
		}
	}
}
