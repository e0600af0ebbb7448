// labelconv derives the per-label channel container (.json) from one or more
// label tables without opening an editing session. Arguments may be plain
// paths or ** glob patterns.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cheggaaa/pb/v3"

	"labeledit/app/export"
)

func main() {
	logLevel := flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: labelconv [flags] <label_file_or_glob> [...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	files, err := expandArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no label files matched")
		os.Exit(2)
	}

	logger := newLogger(*logLevel)

	bar := pb.StartNew(len(files))
	failures := 0
	for _, file := range files {
		outPath, err := export.ConvertSecondary(file, logger)
		if err != nil {
			logger.Error("conversion failed", "path", file, "error", err)
			failures++
		} else {
			logger.Info("saved channel container file", "path", outPath)
		}
		bar.Increment()
	}
	bar.Finish()

	if failures > 0 {
		logger.Error("some conversions failed", "failed", failures, "total", len(files))
		os.Exit(1)
	}
}

// expandArgs resolves each argument to matching files. Arguments without glob
// metacharacters must name an existing file.
func expandArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("label file does not exist: %s", arg)
			}
			if !seen[arg] {
				seen[arg] = true
				files = append(files, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(filepath.ToSlash(arg))
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %s: %w", arg, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
