package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/richxcame/lead-forensics/pkg/logger"
)

// Exit codes. Scored batches exit with their refund tier.
const (
	exitNoRefund      = 0
	exitPartialRefund = 1
	exitFullRefund    = 2
	exitError         = 3
)

const usage = `Usage: forensics <command> [options]

Commands:
  score <input.csv> [--vendor V] [--cost 5.00] [--batch-id ID] [--no-db] [--out DIR]
        Score a lead file, print the report and write the result files.
        Exits 2 for a full refund, 1 for a partial refund, 0 otherwise.
  vendors                          List vendors with their fraud totals
  vendor <name>                    Show one vendor's fraud history
  high-fraud [--threshold N] [--limit N]
                                   List batches at or above N percent fraud
  summary                          Show the overall fraud summary
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return exitError
		}
		return exitNoRefund
	}

	cfg, err := config.Load("forensics")
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}
	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitError
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "score":
		return runScore(ctx, cfg, rest, stdout, stderr)
	case "vendors", "vendor", "high-fraud", "summary":
		return runHistory(ctx, cfg, cmd, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitError
	}
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positionals in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}
