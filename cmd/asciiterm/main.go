// Usage examples:
//
// # Play a video as colored blocks
// ffmpeg -loglevel quiet -i clip.mp4 -vf fps=10 -f image2pipe -vcodec png - | asciiterm
//
// # Glyph shading, 256 colors, redraw in place
// ffmpeg ... -f image2pipe -vcodec png - | asciiterm -mode glyph -color 256 -inplace
//
// # Debug log in ./logs and Prometheus metrics on :9108
// ffmpeg ... | asciiterm -debug -metrics :9108

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lixenwraith/asciiterm/config"
	"github.com/lixenwraith/asciiterm/frame"
	"github.com/lixenwraith/asciiterm/glyph"
	"github.com/lixenwraith/asciiterm/metrics"
	"github.com/lixenwraith/asciiterm/render"
	"github.com/lixenwraith/asciiterm/stream"
	"github.com/lixenwraith/asciiterm/terminal"
)

func main() {
	// Panic Recovery: leave the terminal usable even if a frame crashes the converter
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)

			fmt.Fprintf(os.Stderr, "\n\x1b[31mASCIITERM CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	// Interrupt mid-frame leaves a color selected; reset before exiting
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		io.WriteString(os.Stdout, terminal.ResetToken+"\n")
		os.Exit(130)
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, wires the pipeline and converts stdin until it ends. Returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("asciiterm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "TOML config file layered over the defaults")
		width       = fs.Int("width", config.DefaultWidth, "Output width in cells")
		height      = fs.Int("height", config.DefaultHeight, "Output height in rows")
		modeStr     = fs.String("mode", "block", "Render mode: 'block' or 'glyph'")
		colorStr    = fs.String("color", "ansi", "Color mode: 'ansi', '256', 'truecolor' or 'auto'")
		resampleStr = fs.String("resample", "nearest", "Resampling: 'nearest' or 'bilinear'")
		chunk       = fs.Int("chunk", stream.DefaultChunkSize, "Read size in bytes")
		maxPixels   = fs.Int("max-pixels", stream.DefaultMaxPixels, "Drop frames whose header declares more pixels")
		flushTail   = fs.Bool("flush-tail", false, "Render the last buffered frame at end of input")
		inPlace     = fs.Bool("inplace", false, "Redraw frames at the top of the terminal")
		metricsAddr = fs.String("metrics", "", "Serve Prometheus metrics on this address")
		debugLog    = fs.Bool("debug", false, "Write a diagnostic log under ./logs")
		printConfig = fs.Bool("print-config", false, "Print the effective config as TOML and exit")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "asciiterm reads frames from stdin; unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	if logFile := setupLogging(*debugLog); logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "asciiterm: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	// Flags given explicitly win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "mode":
			cfg.Mode = *modeStr
		case "color":
			cfg.Color = *colorStr
		case "resample":
			cfg.Resample = *resampleStr
		case "chunk":
			cfg.ChunkSize = *chunk
		case "max-pixels":
			cfg.MaxPixels = *maxPixels
		case "flush-tail":
			cfg.FlushTail = *flushTail
		case "inplace":
			cfg.InPlace = *inPlace
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		}
	})

	settings, err := cfg.Resolve()
	if err != nil {
		fmt.Fprintf(stderr, "asciiterm: %v\n", err)
		return 1
	}

	if *printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(stderr, "asciiterm: %v\n", err)
			return 1
		}
		stdout.Write(data)
		return 0
	}

	log.Printf("asciiterm starting: %dx%d mode=%s color=%s resample=%s chunk=%d",
		settings.Width, settings.Height, settings.Mode, settings.ColorMode, settings.Method, settings.ChunkSize)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	observer := metrics.New(reg)

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, reg)
		if err != nil {
			fmt.Fprintf(stderr, "asciiterm: %v\n", err)
			return 1
		}
		defer srv.Close()
	}

	renderer := render.NewRenderer(settings.Colorizer(), settings.Mode)
	if cfg.InPlace {
		if f, ok := stdout.(*os.File); ok && terminal.IsTerminal(f) {
			renderer.SetInPlace(true)
			io.WriteString(stdout, terminal.ClearToken)
		} else {
			log.Printf("in-place output disabled: stdout is not a terminal")
		}
	}

	driver := stream.New(stream.Options{
		Splitter:  frame.NewSplitter(frame.MarkerPNG),
		Mapper:    glyph.NewMapper(settings.Alphabet, settings.Width, settings.Height, settings.Method),
		Renderer:  renderer,
		Output:    stdout,
		ChunkSize: settings.ChunkSize,
		FlushTail: cfg.FlushTail,
		MaxPixels: settings.MaxPixels,
		Observer:  observer,
	})

	if err := driver.Run(stdin); err != nil {
		log.Printf("fatal: %v", err)
		fmt.Fprintf(stderr, "asciiterm: %v\n", err)
		return 1
	}
	return 0
}
