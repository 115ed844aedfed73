// Command csvexport converts JSON rows into a CSV file or S3 object.
//
// Input is either a JSON array of arrays or newline-delimited JSON arrays.
// The first row is not treated specially; include column names as the first
// row to get a header.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/go-data-exporter/csvexport"
	csvcodec "github.com/go-data-exporter/csvexport/codec/csv"
	"github.com/go-data-exporter/csvexport/scanner"
	"github.com/go-data-exporter/csvexport/sink"
)

var (
	Version = "0.0.0-dev"
)

type options struct {
	input     string
	output    string
	format    string
	delimiter string
	charset   string
	null      string
	filename  string
	workers   int
	s3Bucket  string
	s3Prefix  string
	logLevel  string
}

func newApp() (*kingpin.Application, *options) {
	o := &options{}
	app := kingpin.New("csvexport", "Convert JSON rows to CSV.")
	app.Version(Version)
	app.Arg("input", "JSON input file, - for stdin.").Default("-").StringVar(&o.input)
	app.Flag("output", "CSV output file, - for stdout.").Short('o').Default("-").StringVar(&o.output)
	app.Flag("format", "Input format.").Default("json").Envar("CSVEXPORT_FORMAT").EnumVar(&o.format, "json", "jsonl")
	app.Flag("delimiter", "Field delimiter: comma, semicolon, tab or a single character.").Default("comma").Envar("CSVEXPORT_DELIMITER").StringVar(&o.delimiter)
	app.Flag("charset", "Output charset.").Default(csvexport.DefaultOutputCharset).Envar("CSVEXPORT_CHARSET").StringVar(&o.charset)
	app.Flag("null", "Text written for null values.").Envar("CSVEXPORT_NULL").StringVar(&o.null)
	app.Flag("filename", "Download filename; defaults to the output file name.").Envar("CSVEXPORT_FILENAME").StringVar(&o.filename)
	app.Flag("workers", "Goroutines serializing rows.").Default("1").Envar("CSVEXPORT_WORKERS").IntVar(&o.workers)
	app.Flag("s3-bucket", "Upload to this S3 bucket instead of writing a file.").Envar("CSVEXPORT_S3_BUCKET").StringVar(&o.s3Bucket)
	app.Flag("s3-prefix", "Key prefix for S3 uploads.").Envar("CSVEXPORT_S3_PREFIX").StringVar(&o.s3Prefix)
	app.Flag("log-level", "Log level (debug, info, warn, error).").Default("info").Envar("CSVEXPORT_LOG_LEVEL").StringVar(&o.logLevel)
	return app, o
}

func main() {
	app, o := newApp()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := newLogger(os.Stderr, o.logLevel)
	if err != nil {
		app.Fatalf("%v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, o *options, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	delimiter, err := csvcodec.ParseDelimiter(o.delimiter)
	if err != nil {
		return err
	}

	in := stdin
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var rows scanner.Rows
	switch o.format {
	case "jsonl":
		rows = scanner.FromJSONLines(in)
	default:
		rows = scanner.FromJSONArray(in)
	}

	filename := o.filename
	if filename == "" && o.output != "-" {
		filename = filepath.Base(o.output)
	}
	if filename == "" {
		filename = csvexport.DefaultOutputFilename
	}

	enc, err := csvexport.New(scanner.Enumerate(rows),
		csvexport.WithDelimiter(string(delimiter)),
		csvexport.WithOutputCharset(o.charset),
		csvexport.WithNullText(o.null),
		csvexport.WithOutputFilename(filename),
		csvexport.WithConcurrency(o.workers),
		csvexport.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.input, err)
	}
	logger.Info("rows loaded", slog.String("input", o.input), slog.Int("rows", enc.Len()))

	if o.s3Bucket != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		key, err := sink.New(s3.NewFromConfig(cfg), o.s3Bucket, o.s3Prefix).WithLogger(logger).Upload(ctx, enc)
		if err != nil {
			return err
		}
		logger.Info("csv uploaded", slog.String("bucket", o.s3Bucket), slog.String("key", key))
		return nil
	}

	if o.output == "-" {
		_, err := enc.WriteTo(stdout)
		return err
	}
	if err := enc.WriteFile(o.output); err != nil {
		return err
	}
	logger.Info("csv written", slog.String("output", o.output))
	return nil
}
