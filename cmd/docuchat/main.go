package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/app"
	"github.com/docuchat/docuchat/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	userID       = flag.String("user", "", "User the command acts on behalf of (required for document commands)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: docuchat [flags] <command> [args]

Commands:
  ingest <file>     Upload and index a document
  query <question>  Ask a question against your documents
  list              List your documents
  delete <doc-id>   Delete a document and everything derived from it

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Docuchat version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	if len(configFiles) == 0 {
		if _, err := os.Stat("docuchat.toml"); err == nil {
			configFiles = append(configFiles, "docuchat.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	if err := dispatch(application, args[0], args[1:]); err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(application *app.App, command string, args []string) error {
	switch command {
	case "ingest":
		return runIngest(application, args)
	case "query":
		return runQuery(application, args)
	case "list":
		return runList(application)
	case "delete":
		return runDelete(application, args)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// requireUser returns the -user flag value or fails.
func requireUser() (string, error) {
	if *userID == "" {
		return "", fmt.Errorf("the -user flag is required for this command")
	}
	return *userID, nil
}
