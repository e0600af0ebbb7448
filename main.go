// labeledit opens a video with its keypoint label table, lets the operator
// correct label positions frame by frame, and writes the corrected table plus
// a per-label channel container when the session ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"labeledit/app"
	"labeledit/app/cache"
	"labeledit/app/display"
	"labeledit/app/export"
	"labeledit/app/fileloader"
	"labeledit/app/render"
	"labeledit/app/settings"
	"labeledit/app/store"
	"labeledit/app/video"
)

func main() {
	cfg := settings.GetEffectiveSettings()

	colorName := flag.String("color", cfg.MarkerColor, "marker color (red, green, blue)")
	markerSize := flag.Int("size", cfg.MarkerSize, "marker size in pixels")
	markerThickness := flag.Int("thickness", cfg.MarkerThickness, "marker stroke thickness in pixels")
	logLevel := flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	labelFile := flag.Arg(0)
	videoFile := flag.Arg(1)

	markerColor, err := validateArgs(labelFile, videoFile, *colorName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(*logLevel)
	if eff, err := settings.EnsureInstanceID(); err != nil {
		logger.Warn("failed to persist instance id", "error", err)
	} else {
		logger.Debug("instance", "id", eff.InstanceID)
	}

	st, err := store.Load(labelFile, logger)
	if err != nil {
		logger.Error("failed to load label table", "error", err)
		os.Exit(1)
	}

	frameCache := cache.NewFrameCache(cfg.FrameCacheFrames)
	src, err := video.Open(videoFile, frameCache, logger)
	if err != nil {
		logger.Error("failed to open video", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	marker := render.Marker{
		Color:     markerColor,
		Size:      *markerSize,
		Thickness: *markerThickness,
	}

	width, height := src.Size()
	windowCfg := display.Config{
		Title:       labelFile,
		FrameWidth:  width,
		FrameHeight: height,
		FrameCount:  src.FrameCount(),
		Labels:      st.Labels(),
	}

	ctx := context.Background()
	if err := display.Run(windowCfg, func(sink app.DisplaySink) {
		session := app.NewSession(st, src, sink, marker, logger)
		session.Run(ctx)
	}); err != nil {
		logger.Error("display failed", "error", err)
		os.Exit(1)
	}

	if err := export.New(logger).Run(st); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

// validateArgs checks the input files and color before any session state is
// constructed.
func validateArgs(labelFile, videoFile, colorName string) (markerColor color.RGBA, err error) {
	if _, statErr := os.Stat(labelFile); statErr != nil {
		return markerColor, fmt.Errorf("label file does not exist: %s", labelFile)
	}
	if _, statErr := os.Stat(videoFile); statErr != nil {
		return markerColor, fmt.Errorf("video file does not exist: %s", videoFile)
	}
	if format, _ := fileloader.DetectFormat(labelFile); format == fileloader.FormatUnknown {
		return markerColor, fmt.Errorf("label file is not *.csv or *.xlsx: %s", labelFile)
	}
	videoExt := strings.ToLower(filepath.Ext(videoFile))
	if videoExt != ".avi" && videoExt != ".mp4" {
		return markerColor, fmt.Errorf("video file is not *.avi or *.mp4: %s", videoFile)
	}
	return render.ParseColor(colorName)
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

func usage() {
	fmt.Fprintf(os.Stderr, "usage: labeledit [flags] <label_file> <video_file>\n\n")
	fmt.Fprintf(os.Stderr, "Keys: , / left = previous frame   . / right = next frame\n")
	fmt.Fprintf(os.Stderr, "      c = copy active coordinate  q / esc = quit and export\n\n")
	flag.PrintDefaults()
}
