package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cocosip/go-pixel-golden/codec"
	_ "github.com/cocosip/go-pixel-golden/codec/dicom"
	_ "github.com/cocosip/go-pixel-golden/codec/raster"
	"github.com/cocosip/go-pixel-golden/scenario"
)

const (
	defaultConfigPath = "testdata/harness.yaml"
	defaultSuitePath  = "testdata/suite.yaml"
)

const (
	exitOK = iota
	exitFailed
	exitConfig
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", defaultConfigPath, "Path to harness configuration file")
	suitePath := flag.String("suite", defaultSuitePath, "Path to scenario suite file")
	policy := flag.String("policy", "", "Frame policy override: collect-all or fail-fast")
	parallel := flag.Int("parallel", 0, "Scenarios run at once (0 = from config)")
	verbose := flag.Bool("v", false, "Print per-frame results")
	list := flag.Bool("list", false, "List registered decoders and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("goldencheck", version)
		return exitOK
	}
	if *list {
		for _, d := range codec.List() {
			fmt.Printf("%-8s %v\n", d.Name(), d.Extensions())
		}
		return exitOK
	}

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := scenario.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		return exitConfig
	}
	if *policy != "" {
		cfg.FramePolicy = *policy
	}
	if *parallel > 0 {
		cfg.Parallelism = *parallel
	}

	runner, err := scenario.NewRunner(*cfg, scenario.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		return exitConfig
	}

	scenarios, err := scenario.LoadSuite(*suitePath)
	if err != nil {
		slog.Error("failed to load suite", "path", *suitePath, "error", err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Debug("running suite",
		"suite", *suitePath,
		"scenarios", len(scenarios),
		"parallelism", cfg.Parallelism,
		"frame_policy", cfg.FramePolicy,
	)

	reports := runner.RunAll(ctx, scenarios)
	for _, rep := range reports {
		if *verbose || rep.Failed() {
			fmt.Println(rep.Details())
		} else {
			fmt.Println(rep.String())
		}
	}

	sum := scenario.Summarize(reports)
	fmt.Println(sum)
	if !sum.OK() {
		return exitFailed
	}
	return exitOK
}
