package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jpoag/asmr/api"
	"github.com/jpoag/asmr/config"
	"github.com/jpoag/asmr/debugger"
	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/tools"
	"github.com/jpoag/asmr/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	// Command-line flags
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 0, "API server port (default: from config, 8080)")

		// Static analysis modes: operate on the source text and exit
		// without executing the program.
		lintMode    = flag.Bool("lint", false, "Lint the source file and exit")
		formatMode  = flag.Bool("format", false, "Print the formatted source and exit")
		formatWrite = flag.Bool("write", false, "Rewrite the file in place (used with -format)")
		xrefMode    = flag.Bool("xref", false, "Print a symbol cross-reference and exit")
	)

	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("asmr %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	// Show help
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// Start API server mode if requested; no source file needed.
	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	// All remaining modes need a source file.
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		fmt.Fprintln(os.Stderr, "Usage: asmr [options] <source-file>")
		fmt.Fprintln(os.Stderr, "Use -help for more information")
		os.Exit(1)
	}
	filePath := flag.Arg(0)

	switch {
	case *lintMode:
		os.Exit(runLint(filePath))
	case *formatMode:
		os.Exit(runFormat(filePath, *formatWrite))
	case *xrefMode:
		os.Exit(runXRef(filePath))
	}

	if *debugMode || *tuiMode {
		program, source, err := debugger.LoadProgramFile(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		dbg := debugger.NewDebugger(program, source)
		if cfg, cfgErr := config.Load(); cfgErr == nil && cfg.Debugger.HistorySize != debugger.DefaultHistorySize {
			dbg.History = debugger.NewCommandHistorySized(cfg.Debugger.HistorySize)
		}
		if *tuiMode {
			err = debugger.RunTUI(dbg)
		} else {
			err = debugger.RunCLI(dbg)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	// Plain run: parse the file, execute it, and exit with the low 8 bits
	// of eax.
	program, err := parser.ParseFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	exitCode, err := vm.Execute(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	os.Exit(int(exitCode))
}

// runAPIServer starts the HTTP/WebSocket server and blocks until a signal
// or parent-process death triggers a graceful shutdown.
func runAPIServer(port int) {
	if port == 0 {
		port = 8080
		if cfg, err := config.Load(); err == nil && cfg.API.Port != 0 {
			port = cfg.API.Port
		}
	}

	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Shutdown may be triggered by a signal or by the process monitor;
	// sync.Once keeps the two paths from racing.
	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		})
	}

	// Watch the parent process so a crashed GUI front-end doesn't leave an
	// orphaned server behind.
	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()
	defer monitor.Stop()

	go func() {
		<-sigChan
		performShutdown()
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
		os.Exit(1)
	}
}

// runLint lints filePath and prints each issue; exits non-zero when any
// error-level issue was found.
func runLint(filePath string) int {
	source, err := os.ReadFile(filePath) // #nosec G304 -- user-provided source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	linter := tools.NewLinter(tools.DefaultLintOptions())
	issues := linter.Lint(string(source))

	hasErrors := false
	for _, issue := range issues {
		fmt.Println(issue.String())
		if issue.Level == tools.LintError {
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// runFormat prints the canonically formatted source, or rewrites the file
// in place with -write.
func runFormat(filePath string, write bool) int {
	source, err := os.ReadFile(filePath) // #nosec G304 -- user-provided source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	formatted, err := tools.FormatString(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if write {
		if err := os.WriteFile(filePath, []byte(formatted), 0o644); err != nil { // #nosec G306 -- source file, not a secret
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	}

	fmt.Print(formatted)
	return 0
}

// runXRef prints a definition/use cross-reference for every label and
// variable in the file.
func runXRef(filePath string) int {
	source, err := os.ReadFile(filePath) // #nosec G304 -- user-provided source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	report, err := tools.GenerateXRef(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Print(report)
	return 0
}

func printHelp() {
	fmt.Printf(`asmr %s

Usage: asmr [options] <source-file>
       asmr -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -api-server        Start HTTP API server mode (no source file required)
  -port N            API server port (default: from config, 8080)
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -lint              Lint the source file and exit
  -format            Print the formatted source and exit
  -write             Rewrite the file in place (used with -format)
  -xref              Print a symbol cross-reference and exit

Examples:
  # Run a program directly; the process exit code is the low 8 bits of eax
  asmr program.asmr

  # Run with the line debugger
  asmr -debug program.asmr

  # Run with the full-screen TUI debugger
  asmr -tui program.asmr

  # Start the API server for GUI/editor front-ends
  asmr -api-server
  asmr -api-server -port 3000

  # Static analysis
  asmr -lint program.asmr
  asmr -format -write program.asmr
  asmr -xref program.asmr

Debugger Commands (when in -debug mode):
  run, r             Start/restart program execution
  continue, c        Continue execution
  step, s            Execute single line
  next, n            Step over calls
  break LINE         Set breakpoint at a line number or label
  watch EXPR         Watch a register or heap cell for changes
  info registers     Show all registers and flags
  print EXPR         Evaluate and print expression
  help               Show debugger help
`, Version)
}
