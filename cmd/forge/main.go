package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/chain"
	"github.com/systemstart/forge/pkg/logging"
	"github.com/systemstart/forge/pkg/processing"
	"github.com/systemstart/forge/pkg/steps"
)

var version = "dev"

const (
	_ = iota
	exitLoggingSetupFailed
	exitDotenvError
	exitBuildStepNotSpecified
	exitLoadConfigurationFileFailed
	exitBuildFailed
)

// eventList collects repeated -event flags.
type eventList []string

func (e *eventList) String() string { return strings.Join(*e, ",") }

func (e *eventList) Set(value string) error {
	*e = append(*e, value)
	return nil
}

var (
	buildStep      string
	rootPath       string
	buildFolder    string
	events         eventList
	clearBuildPath bool
	configFile     string
	loggingType    string
	logLevel       string
	showVersion    bool
)

func init() {
	flag.StringVar(
		&buildStep,
		"build",
		steps.StepStart,
		"build step to run")
	flag.StringVar(
		&rootPath,
		"path",
		".",
		"project root path (empty = headless)")
	flag.StringVar(
		&buildFolder,
		"build-in",
		"build",
		"build output folder name under the root path")
	flag.Var(
		&events,
		"event",
		"event tag gating conditional successors (repeatable)")
	flag.BoolVar(
		&clearBuildPath,
		"clear-build-path",
		false,
		"delete and recreate the build path before building")
	flag.StringVar(
		&configFile,
		"config",
		"",
		"orchestrator-level config file")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Initialize(loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoggingSetupFailed)
	}

	includeEnv()

	if buildStep == "" {
		slog.Error("-build not set")
		os.Exit(exitBuildStepNotSpecified)
	}

	orchestrator := processing.New(steps.New, loadOrchestratorConfig())

	req := chain.Request{
		Build:          buildStep,
		Path:           rootPath,
		BuildIn:        buildFolder,
		Events:         api.Events(events),
		ClearBuildPath: clearFlagValue(),
	}

	if err := orchestrator.Dispatch(req); err != nil {
		slog.Error("build chain failed", "build", buildStep, "error", err)
		os.Exit(exitBuildFailed)
	}

	slog.Info("done", "steps", orchestrator.Dispatched())
}

// clearFlagValue returns the -clear-build-path value only when the flag was
// given explicitly. Clearing is destructive; an unset flag must stay
// distinguishable from false so config can still decide.
func clearFlagValue() *bool {
	var set bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "clear-build-path" {
			set = true
		}
	})
	if !set {
		return nil
	}
	return &clearBuildPath
}

func loadOrchestratorConfig() api.Config {
	if configFile == "" {
		return nil
	}

	cfg, err := api.LoadConfigFile(configFile)
	if err != nil {
		slog.Error("failed to load config file", "filename", configFile, "error", err)
		os.Exit(exitLoadConfigurationFileFailed)
	}
	return cfg
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Info("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}
