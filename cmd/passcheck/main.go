// Command passcheck verifies submission PDFs and writes a TSV report.
//
// Usage:
//
//	passcheck [flags] <PDF file>...
//
// Each PDF needs a "<file>.meta.yaml" manifest next to it; see package
// pdfmeta. Settings come from an optional YAML file (--config), .env
// files, PASSCHECK_* environment variables and flags, in increasing order
// of precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/passverify/passcheck"
	"github.com/passverify/passcheck/internal/config"
	"github.com/passverify/passcheck/internal/logging"
	"github.com/passverify/passcheck/pdfmeta"
	"github.com/passverify/passcheck/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Config holds the I/O streams and environment used by run.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
}

// DefaultConfig returns a Config using the process streams and environment.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

// usageError marks errors caused by the command line or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exitCode maps a run error to the process exit status: 1 for usage
// errors, 2 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return 1
	}
	return 2
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// seconds accepts a plain number of seconds or a Go duration.
type seconds time.Duration

func (s *seconds) String() string { return time.Duration(*s).String() }

func (s *seconds) Set(v string) error {
	if n, err := strconv.Atoi(v); err == nil {
		*s = seconds(time.Duration(n) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("want seconds or a duration, got %q", v)
	}
	*s = seconds(d)
	return nil
}

type flags struct {
	out           string
	jobs          stringList
	exportKey     string
	maxTimeDiff   seconds
	flagIdentical *bool
	configPath    string
	envFile       string
	concurrency   int
	metricsFile   string
	debug         bool
	version       bool
	set           map[string]bool
	files         []string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{set: map[string]bool{}}

	name := "passcheck"
	if len(args) > 0 {
		args = args[1:]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] <PDF file>...\n\nFlags:\n", name)
		fs.PrintDefaults()
	}

	for _, n := range []string{"o", "out"} {
		fs.StringVar(&f.out, n, "", "write the report to `file` instead of stdout")
	}
	for _, n := range []string{"j", "job"} {
		fs.Var(&f.jobs, n, "server export `file` to match submissions against (repeatable)")
	}
	fs.StringVar(&f.exportKey, "export-key", "", "require server exports signed with the ML-DSA-65 public key in `file`")
	for _, n := range []string{"m", "max-time-diff"} {
		fs.Var(&f.maxTimeDiff, n, "maximum `seconds` between creation and modification dates")
	}
	setFlagIdentical := func(v bool) func(string) error {
		return func(string) error {
			f.flagIdentical = &v
			return nil
		}
	}
	for _, n := range []string{"c", "flag-identical-checksums"} {
		fs.BoolFunc(n, "note documents sharing a checksum and hash over-long attachments", setFlagIdentical(true))
	}
	for _, n := range []string{"k", "noflag-identical-checksums"} {
		fs.BoolFunc(n, "do not note documents sharing a checksum", setFlagIdentical(false))
	}
	fs.StringVar(&f.configPath, "config", "", "YAML configuration `file`")
	fs.StringVar(&f.envFile, "env-file", "", "load environment variables from `file` instead of .env")
	fs.IntVar(&f.concurrency, "concurrency", 0, "number of documents checked in parallel")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to `file` after the run")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	for _, n := range []string{"v", "version"} {
		fs.BoolVar(&f.version, n, false, "print the version and exit")
	}

	// Flags and files may be interleaved.
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, &usageError{err: err}
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		f.files = append(f.files, args[0])
		args = args[1:]
	}

	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

func (f *flags) isSet(names ...string) bool {
	for _, n := range names {
		if f.set[n] {
			return true
		}
	}
	return false
}

// settings merges configuration sources into one config.Config.
func loadSettings(f *flags, getenv func(string) string) (*config.Config, error) {
	var err error
	if f.envFile != "" {
		err = config.LoadEnv(f.envFile)
	} else {
		err = config.LoadEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("load config: %w", err)}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, &usageError{err: err}
	}

	if f.isSet("o", "out") {
		cfg.Output = f.out
	}
	if len(f.jobs) > 0 {
		cfg.Events = f.jobs
	}
	if f.isSet("export-key") {
		cfg.ExportPublicKeyFile = f.exportKey
	}
	if f.isSet("m", "max-time-diff") {
		cfg.MaxTimeDiff = time.Duration(f.maxTimeDiff)
	}
	if f.flagIdentical != nil {
		cfg.FlagIdenticalChecksums = *f.flagIdentical
	}
	if f.isSet("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if f.isSet("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

func run(args []string, cfg Config) error {
	f, err := parseFlags(args, cfg.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if f.version {
		fmt.Fprintf(cfg.Stdout, "passcheck %s\n", version)
		return nil
	}
	if len(f.files) == 0 {
		return usagef("no PDF files given (see --help)")
	}

	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	settings, err := loadSettings(f, getenv)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Stderr, settings.Log)
	if err != nil {
		return &usageError{err: err}
	}

	mk, err := settings.LoadMasterKey()
	if err != nil {
		if errors.Is(err, passcheck.ErrMissingMasterKey) {
			return usagef("no master key configured: set master_key_file or %sMASTER_KEY_FILE", config.EnvPrefix)
		}
		return err
	}

	opts := []passcheck.Option{
		passcheck.WithMasterKey(mk),
		passcheck.WithOpener(pdfmeta.Opener{}),
		passcheck.WithLogger(log),
		passcheck.WithMaxTimeDiff(settings.MaxTimeDiff),
		passcheck.WithTrustedProducer(settings.TrustedProducer),
		passcheck.WithLenientAttachments(settings.FlagIdenticalChecksums),
		passcheck.WithFlagIdenticalChecksums(settings.FlagIdenticalChecksums),
		passcheck.WithConcurrency(settings.Concurrency),
	}

	if len(settings.Events) > 0 {
		events, err := loadEvents(settings)
		if err != nil {
			return err
		}
		log.Info("loaded submission log", "files", len(settings.Events), "events", events.Len())
		opts = append(opts, passcheck.WithEvents(events))
	}

	var reg *prometheus.Registry
	if settings.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		metrics, err := passcheck.NewMetrics(reg)
		if err != nil {
			return err
		}
		opts = append(opts, passcheck.WithMetrics(metrics))
	}

	checker, err := passcheck.New(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	records, checkErr := checker.CheckAll(ctx, f.files)

	if err := writeReport(cfg.Stdout, settings.Output, records, report.Options{
		RunID:    checker.RunID(),
		Matching: checker.Matching(),
	}); err != nil {
		return err
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(settings.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return checkErr
}

func loadEvents(settings *config.Config) (*passcheck.EventTable, error) {
	if settings.ExportPublicKeyFile == "" {
		return passcheck.LoadEvents(settings.Events...)
	}

	pub, err := passcheck.LoadExportPublicKey(settings.ExportPublicKeyFile)
	if err != nil {
		return nil, err
	}
	return passcheck.LoadSignedEvents(pub, settings.Events...)
}

func writeReport(stdout io.Writer, path string, records []*passcheck.Record, opts report.Options) error {
	if path == "" {
		return report.Write(stdout, records, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(f, records, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
