package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lycantrope/fasta-filter/internal/fasta"
	"github.com/lycantrope/fasta-filter/internal/filter"
	"github.com/lycantrope/fasta-filter/internal/match"
)

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", srw.status,
			"bytes", srw.written,
			"duration", time.Since(start),
			"user_agent", r.UserAgent())
	})
}

// requestOptions reads filter options from the query string:
// term (repeatable), width, i (ignore case) and literal.
func requestOptions(r *http.Request) (filter.Options, error) {
	q := r.URL.Query()
	opts := filter.Options{
		Terms:      q["term"],
		WrapWidth:  fasta.DefaultWrapWidth,
		IgnoreCase: isTrue(q.Get("i")),
		Literal:    isTrue(q.Get("literal")),
	}
	if s := strings.TrimSpace(q.Get("width")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("%w: %q", fasta.ErrInvalidWidth, s)
		}
		opts.WrapWidth = n
	}
	return opts, nil
}

func isTrue(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// filterHandler streams the kept records of the request body back to the
// client. Terms are compiled before the body is read.
func filterHandler(logger *log.Logger, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		opts, err := requestOptions(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := opts.Predicate(); err != nil {
			var perr *match.PatternCompileError
			switch {
			case errors.Is(err, match.ErrNoTerms):
				http.Error(w, "no search term was provided", http.StatusBadRequest)
			case errors.As(err, &perr):
				http.Error(w, perr.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		opts.Logger = logger

		body := http.MaxBytesReader(w, r.Body, maxBody)
		defer body.Close()
		w.Header().Set("Content-Type", "text/x-fasta; charset=utf-8")
		sum, err := filter.Run(r.Context(), body, opts, w)
		if err != nil {
			// headers may already be sent; log and cut the response short
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) && sum.Records == 0 {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			logger.Error("filter request failed", "records_written", sum.Records, "err", err)
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func newMux(logger *log.Logger, maxBody int64) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/filter", filterHandler(logger, maxBody))
	mux.HandleFunc("/healthz", healthHandler)
	return mux
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	maxBody := flag.Int64("max-body", 256<<20, "maximum request body size in bytes")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stdout only")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatal("failed to open log file", "path", *logFile, "err", err)
		}
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.NewWithOptions(out, log.Options{ReportTimestamp: true, Prefix: "fasta-filter"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	handler := loggingMiddleware(logger, newMux(logger, *maxBody))
	srv := &http.Server{Addr: *addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving", "addr", *addr, "max_body", *maxBody)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", "err", err)
	}
}
