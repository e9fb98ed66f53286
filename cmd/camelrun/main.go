// Command camelrun loads a CaMeL program from a file or stdin, evaluates it
// against a chosen policy profile, and prints the resulting value or a
// rendered traceback (spec §6's driver surface).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"goa.design/clue/log"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter"
	"github.com/jbhoffman613/camel-prompt-injection/internal/library"
	"github.com/jbhoffman613/camel-prompt-injection/internal/namespace"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy/profiles"
	"github.com/jbhoffman613/camel-prompt-injection/internal/telemetry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/toolregistry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/traceback"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func main() {
	// Define command line flags.
	var (
		fileF    = flag.String("file", "", "path to a .py/.md file to run; '-' or unset reads stdin")
		envF     = flag.String("env", "workspace", "policy profile: banking, workspace, travel, slack")
		dbgF     = flag.Bool("debug", false, "enable clue debug logging on the command's context")
		maxStmtF = flag.Int("max-statements", 10000, "statement budget for one run; 0 disables it")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	code, err := readSource(*fileF)
	if err != nil {
		fmt.Fprintln(os.Stderr, "camelrun:", err)
		os.Exit(1)
	}

	engine, err := policyForEnv(*envF)
	if err != nil {
		fmt.Fprintln(os.Stderr, "camelrun:", err)
		os.Exit(1)
	}

	interp := interpreter.New(toolregistry.NewRegistry(), library.Methods())
	interp.Logger = telemetry.ClueLogger{}
	interp.Tracer = telemetry.NewClueTracer()
	interp.MaxStatements = *maxStmtF

	ns := library.NamespaceWithBuiltins()
	ns = ns.WithVariables(map[string]value.Value{
		"user_prompt": value.NewStrFromRaw("", capabilities.Capabilities{
			Sources: capabilities.NewSourceSet(capabilities.FromPrincipal(capabilities.User)),
			Readers: capabilities.Public(),
		}, nil),
	})

	result, _, calls, _ := interpreter.Run(ctx, interp, code, ns, nil, interpreter.EvalArgs{
		Policy: engine,
		Mode:   interpreter.ModeNormal,
	})

	log.Print(ctx, log.KV{K: "tool_calls", V: len(calls)})

	if !result.IsOk() {
		fmt.Fprintln(os.Stderr, traceback.Render(code, result.Err))
		os.Exit(1)
	}
	fmt.Println(result.Value.String())
}

func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func policyForEnv(env string) (policy.Engine, error) {
	switch env {
	case "banking":
		return profiles.Banking(), nil
	case "workspace":
		return profiles.Workspace(), nil
	case "travel":
		return profiles.Travel(), nil
	case "slack":
		return profiles.Slack(), nil
	default:
		return nil, fmt.Errorf("unknown -env %q (want banking, workspace, travel, or slack)", env)
	}
}
