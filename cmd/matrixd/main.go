package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fkcurrie/omega-matrix-golang/internal/config"
	"github.com/fkcurrie/omega-matrix-golang/internal/display"
	"github.com/fkcurrie/omega-matrix-golang/internal/remote"
	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	pattern := flag.String("pattern", "", "override the player pattern (off, fill, checkerboard, text, svg)")
	text := flag.String("text", "", "override the scrolling text")
	svgPath := flag.String("svg", "", "override the svg file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", zap.String("path", *configPath), zap.Error(err))
		cfg = config.DefaultConfig()
	}
	if *pattern != "" {
		cfg.Player.Pattern = *pattern
	}
	if *text != "" {
		cfg.Player.Text = *text
	}
	if *svgPath != "" {
		cfg.Player.SVGPath = *svgPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("matrixd failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	drv, err := gpio.Open(cfg.Driver.Backend, cfg.Driver.Chip, logger.Named("gpio"))
	if err != nil {
		return fmt.Errorf("failed to open gpio driver: %w", err)
	}
	defer drv.Close()

	pins := cfg.Display.Pins
	renderer := shiftmatrix.New(drv,
		shiftmatrix.WithPins(shiftmatrix.Pins{
			Data:         pins.Data,
			Clock:        pins.Clock,
			Latch:        pins.Latch,
			RedButton:    pins.RedButton,
			YellowButton: pins.YellowButton,
		}),
		shiftmatrix.WithFPS(cfg.Display.FPS),
		shiftmatrix.WithLogger(logger.Named("renderer")),
	)

	sources, err := playlist(cfg)
	if err != nil {
		return err
	}
	player := display.NewPlayer(renderer, time.Duration(cfg.Player.Interval)*time.Millisecond,
		logger.Named("player"), sources...)

	var server *remote.Server
	if cfg.Remote.Enabled {
		server = remote.NewServer(renderer, logger.Named("remote"))
	}

	// Red steps forward through the playlist, yellow steps back
	handler := func(e shiftmatrix.Event) {
		logger.Info("button event", zap.Stringer("event", e))
		switch e {
		case shiftmatrix.RedDown:
			player.Next()
		case shiftmatrix.YellowDown:
			player.Prev()
		}
		if server != nil {
			server.Broadcast(e)
		}
	}

	if err := renderer.Start(handler); err != nil {
		return fmt.Errorf("failed to start renderer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Player.Pattern != "off" {
		g.Go(func() error { return player.Start(ctx) })
	}
	if server != nil {
		g.Go(func() error { return server.ListenAndServe(ctx, cfg.Remote.Listen) })
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	err = g.Wait()
	logger.Info("shutting down")
	if stopErr := renderer.Stop(); stopErr != nil {
		logger.Error("failed to stop renderer", zap.Error(stopErr))
	}

	st := renderer.Stats()
	logger.Info("renderer stats",
		zap.Uint64("passes", st.Passes),
		zap.Uint64("overruns", st.Overruns),
		zap.Uint64("io_errors", st.IOErrors),
		zap.Uint64("events", st.Events),
		zap.Uint64("delivered", st.Delivered))
	return err
}

// playlist builds the player sources, starting with the configured pattern
func playlist(cfg *config.Config) ([]display.Source, error) {
	all := map[string]display.Source{
		"fill":         display.Fill(true),
		"checkerboard": display.Checkerboard(4),
		"text":         display.ScrollText(cfg.Player.Text),
	}
	order := []string{"checkerboard", "text", "fill"}

	if cfg.Player.SVGPath != "" {
		svg, err := display.LoadSVG(cfg.Player.SVGPath)
		if err != nil {
			return nil, err
		}
		all["svg"] = svg
		order = append(order, "svg")
	}

	first := cfg.Player.Pattern
	if _, ok := all[first]; !ok {
		return []display.Source{display.Fill(false)}, nil
	}
	sources := []display.Source{all[first]}
	for _, name := range order {
		if name != first {
			sources = append(sources, all[name])
		}
	}
	return sources, nil
}
