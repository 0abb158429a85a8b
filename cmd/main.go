package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/lycantrope/fasta-filter/internal/config"
	"github.com/lycantrope/fasta-filter/internal/filter"
	"github.com/lycantrope/fasta-filter/internal/match"

	"github.com/charmbracelet/log"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

// Exit statuses.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// put the partial line back for the next write
			t.buf.WriteString(line)
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// newLogger builds the stderr logger, tee'd to logFile when one is configured.
// The returned close func releases the log file.
func newLogger(stderr io.Writer, logFile string) (*log.Logger, func(), error) {
	out := stderr
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closer, err
		}
		// write to both stderr and file so running interactively still shows logs
		out = io.MultiWriter(stderr, f)
		closer = func() { _ = f.Close() }
	}
	var w io.Writer = &timestampWriter{w: out}
	if f, ok := stderr.(*os.File); ok {
		w = &terminalWriter{w: w, fd: f.Fd()}
	}
	return log.NewWithOptions(w, log.Options{Prefix: "fasta-filter"}), closer, nil
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: fasta-filter <FASTA file|-> <search term> [search term...] [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Keep FASTA records whose header matches any search term (regular expressions).\n\n")
		fs.PrintDefaults()
	}
}

// parseInterspersed parses flags that appear before, between or after the
// positional arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		consumed := len(args) - fs.NArg()
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, fs.Args()...), nil
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fasta-filter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	var (
		outputFlag string
		wrapWidth  int
	)
	fs.StringVar(&outputFlag, "output", "", "save filtered FASTA to this file")
	fs.StringVar(&outputFlag, "o", "", "shorthand for -output")
	fs.IntVar(&wrapWidth, "wrap-width", 0, "sequence line width (default 80)")
	fs.IntVar(&wrapWidth, "w", 0, "shorthand for -wrap-width")
	ignoreCase := fs.Bool("i", false, "match search terms case-insensitively")
	literal := fs.Bool("F", false, "treat search terms as literal strings, not patterns")
	configFlag := fs.String("config", "", "path to fasta-filter.json (optional)")
	quiet := fs.Bool("quiet", false, "do not print kept records to stdout (requires -o)")
	verbose := fs.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := fs.Bool("version", false, "print version and exit")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *versionFlag {
		fmt.Fprintln(stdout, "fasta-filter", version)
		return exitOK
	}

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "fasta-filter: load config: %v\n", err)
		return exitUsage
	}

	// merge CLI flags into config (flags override config when provided)
	if len(positional) > 0 {
		cfg.InputFasta = positional[0]
	}
	if len(positional) > 1 {
		cfg.Terms = positional[1:]
	}
	if outputFlag != "" {
		cfg.OutputFasta = outputFlag
	}
	if wrapWidth != 0 {
		cfg.WrapWidth = wrapWidth
	}
	if *ignoreCase {
		cfg.IgnoreCase = true
	}
	if *literal {
		cfg.Literal = true
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	logger, closeLog, err := newLogger(stderr, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "fasta-filter: open log file: %v\n", err)
		return exitUsage
	}
	defer closeLog()

	lvl, ok := config.ParseLevel(cfg.LogLevel)
	logger.SetLevel(lvl)
	if !ok {
		logger.Warn("unknown log_level in config, defaulting to info", "provided", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	logger.Debug("loaded config", "input_fasta", cfg.InputFasta, "output_fasta", cfg.OutputFasta, "terms", cfg.Terms, "wrap_width", cfg.WrapWidth, "ignore_case", cfg.IgnoreCase, "literal", cfg.Literal, "log_file", cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return exitUsage
	}
	if *quiet && cfg.OutputFasta == "" {
		logger.Error("-quiet needs -o, otherwise nothing would be written")
		return exitUsage
	}

	opts := filter.Options{
		Terms:      cfg.Terms,
		WrapWidth:  cfg.WrapWidth,
		IgnoreCase: cfg.IgnoreCase,
		Literal:    cfg.Literal,
		Logger:     logger,
	}
	// compile before touching input or output so bad terms fail fast
	if _, err := opts.Predicate(); err != nil {
		var perr *match.PatternCompileError
		switch {
		case errors.Is(err, match.ErrNoTerms):
			logger.Error("no search term was provided")
			fs.Usage()
		case errors.As(err, &perr):
			logger.Error("invalid search term", "term", perr.Term, "err", perr.Err)
		default:
			logger.Error("compile search terms", "err", err)
		}
		return exitUsage
	}

	var in io.Reader = stdin
	name := "<stdin>"
	if cfg.InputFasta != "" && cfg.InputFasta != "-" {
		f, err := os.Open(cfg.InputFasta)
		if err != nil {
			logger.Error("failed to open input fasta", "path", cfg.InputFasta, "err", err)
			return exitError
		}
		defer f.Close()
		in = f
		name = cfg.InputFasta
	}

	var outs []io.Writer
	if !*quiet {
		outs = append(outs, stdout)
	}
	var outFile *os.File
	if cfg.OutputFasta != "" {
		outFile, err = os.Create(cfg.OutputFasta)
		if err != nil {
			logger.Error("failed to create output file", "path", cfg.OutputFasta, "err", err)
			return exitError
		}
		outs = append(outs, outFile)
		logger.Debug("output file open", "path", cfg.OutputFasta)
	}

	logger.Info("filtering", "input", name, "terms", len(cfg.Terms))
	sum, err := filter.Run(ctx, in, opts, outs...)
	if outFile != nil {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", cfg.OutputFasta, cerr)
		}
	}
	if err != nil {
		logger.Error("filter failed", "input", name, "records_written", sum.Records, "err", err)
		return exitError
	}
	if cfg.OutputFasta != "" {
		logger.Info("wrote filtered fasta", "path", cfg.OutputFasta, "records", sum.Records)
	}
	return exitOK
}
