// Command mcpcli drives MCP tool servers from the command line.
//
// Usage:
//
//	mcpcli tools <server> [tool]           list tools, or show one tool's parameters
//	mcpcli call <server> <tool> [k=v...]   invoke a tool
//	mcpcli run <server> <step> [step...]   run a batch script on one connection
//	mcpcli alias add|remove|list           manage saved server commands
//
// <server> is an alias from the config file or a literal executable.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/stoicstudio/McpCli/internal/args"
	"github.com/stoicstudio/McpCli/internal/batch"
	"github.com/stoicstudio/McpCli/internal/client"
	"github.com/stoicstudio/McpCli/internal/config"
	"github.com/stoicstudio/McpCli/internal/format"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	_ = godotenv.Load()

	if len(argv) == 0 {
		usage(os.Stderr)

		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, rest := argv[0], argv[1:]

	switch cmd {
	case "tools":
		return cmdTools(ctx, rest)
	case "call":
		return cmdCall(ctx, rest)
	case "run":
		return cmdRun(ctx, rest)
	case "alias":
		return cmdAlias(rest)
	case "help", "-h", "--help":
		usage(os.Stdout)

		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage(os.Stderr)

		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `mcpcli - command-line client for MCP tool servers

Commands:
  tools <server> [tool]            list tools, or show one tool's parameters
  call <server> <tool> [k=v...]    invoke a tool with key=value arguments
  run <server> <step> [step...]    run steps in order; "wait:<ms>" pauses
  alias add <name> <cmd> [arg...]  save a server command under a name
  alias remove <name>              delete a saved server
  alias list                       show saved servers

Flags (per command):
  -timeout       per-call timeout (default %s, env MCPCLI_CALL_TIMEOUT)
  -init-timeout  handshake timeout (default %s, env MCPCLI_INIT_TIMEOUT)
  -config        alias file path (env MCPCLI_CONFIG)
  -cwd           working directory for the server process
  -v             debug logging to stderr
`, config.DefaultCallTimeout, config.DefaultInitTimeout)
}

// commonFlags are the flags shared by the connection-opening commands.
type commonFlags struct {
	fs          *flag.FlagSet
	timeout     time.Duration
	initTimeout time.Duration
	verbose     bool
	configPath  string
	cwd         string
}

func newCommonFlags(name string) *commonFlags {
	c := &commonFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}

	c.fs.DurationVar(&c.timeout, "timeout",
		envDuration("MCPCLI_CALL_TIMEOUT", config.DefaultCallTimeout), "per-call timeout")
	c.fs.DurationVar(&c.initTimeout, "init-timeout",
		envDuration("MCPCLI_INIT_TIMEOUT", config.DefaultInitTimeout), "handshake timeout")
	c.fs.BoolVar(&c.verbose, "v", false, "enable debug logging")
	c.fs.StringVar(&c.configPath, "config", envOr("MCPCLI_CONFIG", ""), "alias file path")
	c.fs.StringVar(&c.cwd, "cwd", "", "working directory for the server process")

	return c
}

func (c *commonFlags) logger() *slog.Logger {
	if c.verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c *commonFlags) aliasPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}

	return config.DefaultAliasPath()
}

// connect spawns the named server and completes the handshake. The caller
// owns the returned client and must Close it.
func (c *commonFlags) connect(ctx context.Context, server string) (*client.Client, error) {
	path, err := c.aliasPath()
	if err != nil {
		return nil, err
	}

	aliases, err := config.LoadAliases(path)
	if err != nil {
		return nil, err
	}

	command, cmdArgs := aliases.Resolve(server, nil)

	cl := client.New(&config.Options{
		Logger:      c.logger(),
		InitTimeout: c.initTimeout,
		CallTimeout: c.timeout,
		WorkDir:     c.cwd,
	})

	if err := cl.StartServer(ctx, command, cmdArgs); err != nil {
		_ = cl.Close()

		return nil, err
	}

	if err := cl.Initialize(ctx); err != nil {
		_ = cl.Close()

		return nil, err
	}

	return cl, nil
}

func cmdTools(ctx context.Context, argv []string) int {
	flags := newCommonFlags("tools")
	if err := flags.fs.Parse(argv); err != nil {
		return exitUsage
	}

	rest := flags.fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		fmt.Fprintln(os.Stderr, "usage: mcpcli tools [flags] <server> [tool]")

		return exitUsage
	}

	cl, err := flags.connect(ctx, rest[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}
	defer cl.Close()

	tools, err := cl.ListTools(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}

	renderer := format.NewRenderer(os.Stdout)

	if len(rest) == 2 {
		for _, tool := range tools {
			if tool.Name == rest[1] {
				renderer.ToolHelp(tool)

				return exitOK
			}
		}

		fmt.Fprintf(os.Stderr, "tool %q not found\n", rest[1])

		return exitError
	}

	renderer.ToolTable(tools)

	return exitOK
}

func cmdCall(ctx context.Context, argv []string) int {
	flags := newCommonFlags("call")
	if err := flags.fs.Parse(argv); err != nil {
		return exitUsage
	}

	rest := flags.fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mcpcli call [flags] <server> <tool> [key=value...]")

		return exitUsage
	}

	arguments, err := args.Parse(rest[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitUsage
	}

	cl, err := flags.connect(ctx, rest[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}
	defer cl.Close()

	result, err := cl.CallTool(ctx, rest[1], arguments)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}

	format.NewRenderer(os.Stdout).CallResult(result)

	if result.IsError {
		return exitError
	}

	return exitOK
}

func cmdRun(ctx context.Context, argv []string) int {
	flags := newCommonFlags("run")
	if err := flags.fs.Parse(argv); err != nil {
		return exitUsage
	}

	rest := flags.fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mcpcli run [flags] <server> <step> [step...]")

		return exitUsage
	}

	cl, err := flags.connect(ctx, rest[0])
	if err != nil {
		// A connection-level failure before any step aborts the batch.
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}
	defer cl.Close()

	renderer := format.NewRenderer(os.Stdout)
	runner := batch.NewRunner(flags.logger(), cl, format.NewBatchSink(renderer))

	if err := runner.Run(ctx, rest[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}

	return exitOK
}

func cmdAlias(argv []string) int {
	flags := newCommonFlags("alias")
	if err := flags.fs.Parse(argv); err != nil {
		return exitUsage
	}

	rest := flags.fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mcpcli alias add|remove|list ...")

		return exitUsage
	}

	path, err := flags.aliasPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}

	aliases, err := config.LoadAliases(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitError
	}

	switch rest[0] {
	case "add":
		if len(rest) < 3 {
			fmt.Fprintln(os.Stderr, "usage: mcpcli alias add <name> <command> [arg...]")

			return exitUsage
		}

		aliases.Set(rest[1], rest[2], rest[3:])

		if err := aliases.Save(path); err != nil {
			fmt.Fprintln(os.Stderr, err)

			return exitError
		}

		return exitOK

	case "remove":
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "usage: mcpcli alias remove <name>")

			return exitUsage
		}

		if !aliases.Remove(rest[1]) {
			fmt.Fprintf(os.Stderr, "no alias %q\n", rest[1])

			return exitError
		}

		if err := aliases.Save(path); err != nil {
			fmt.Fprintln(os.Stderr, err)

			return exitError
		}

		return exitOK

	case "list":
		for _, name := range aliases.Names() {
			alias := aliases.Servers[name]
			fmt.Printf("%s: %s %v\n", name, alias.Command, alias.Args)
		}

		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "unknown alias subcommand %q\n", rest[0])

		return exitUsage
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}

	return d
}
