// Command normalize rewrites a scene collection into a fixture database with
// a fixed number of scenes and endings.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"consequence/internal/logger"
	"consequence/internal/normalize"
	"consequence/stories"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	var (
		in       string
		out      string
		start    string
		endings  int
		total    int
		logLevel string
	)
	fs.StringVar(&in, "in", "", "scene collection to read (default: the bundled story)")
	fs.StringVar(&out, "out", "", "file to write (default: stdout)")
	fs.StringVar(&start, "start", normalize.DefaultStart, "preferred start scene id")
	fs.IntVar(&endings, "endings", normalize.DefaultEndings, "number of designated endings")
	fs.IntVar(&total, "total", normalize.DefaultTotal, "number of scenes in the output")
	fs.StringVar(&logLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: logLevel, Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src := stories.Consequence
	if in != "" {
		src, err = os.ReadFile(filepath.Clean(in))
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
	scenes, err := normalize.DecodeScenes(src)
	if err != nil {
		return err
	}

	db, report := normalize.Normalize(scenes, normalize.Options{Start: start, Endings: endings, Total: total})
	log.Info("Normalized scene collection",
		zap.Int("input", len(scenes)),
		zap.Int("output", len(db.Order)),
		zap.String("start", db.Meta.Start),
		zap.Strings("endings", db.Meta.Endings),
		zap.Stringer("report", report),
	)

	b, err := yaml.Marshal(db)
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	if out == "" {
		_, err = stdout.Write(b)
		return err
	}
	if err := os.WriteFile(filepath.Clean(out), b, 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
