// Command pluginrun loads a compiled Thumb plugin image, wires it onto
// a vm.State using the LPC1114-style example host, and runs it to
// completion (or into an interactive debugger).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pluginhost/thumbvm/config"
	"github.com/pluginhost/thumbvm/debugger"
	"github.com/pluginhost/thumbvm/gui"
	"github.com/pluginhost/thumbvm/host"
	"github.com/pluginhost/thumbvm/loader"
	"github.com/pluginhost/thumbvm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		debugMode    = flag.Bool("debug", false, "Start in the command-line debugger")
		tuiMode      = flag.Bool("tui", false, "Start in the TUI (Text User Interface) debugger")
		guiMode      = flag.Bool("gui", false, "Open the desktop register/memory inspector while running")
		traceMode    = flag.Bool("trace", false, "Print a PC/registers line after every step")
		configPath   = flag.String("config", "", "Config file path (default: platform user config dir)")
		headerOffset = flag.Int("header-offset", 0x1000, "Byte offset of the plugin_api header within the image")
		entryFlag    = flag.String("entry", "", "Entry point address, hex or decimal (default: header's ProgramAddress + InitOffset)")
		maxSteps     = flag.Uint64("max-steps", 0, "Override the config's step budget (0: use config)")
		verbose      = flag.Bool("verbose", false, "Print the region layout, entry point and step budget before running")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("pluginrun %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	imagePath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *maxSteps != 0 {
		cfg.Execution.MaxSteps = *maxSteps
	}

	plugin, err := loader.Load(imagePath, *headerOffset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading plugin: %v\n", err)
		os.Exit(1)
	}

	api := host.NewServiceAPI(cfg.Execution.ServiceBase)
	machine := vm.New()
	loader.Wire(machine, plugin, api,
		cfg.Execution.ServiceBase, cfg.Execution.ServiceSize,
		cfg.Execution.ProgramSize, cfg.Execution.DataSize)

	entry := plugin.Header.ProgramAddress + plugin.Header.InitOffset
	if *entryFlag != "" {
		entry, err = parseAddress(*entryFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid entry point: %v\n", err)
			os.Exit(1)
		}
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "pluginrun: program=0x%X data=0x%X service=0x%X entry=0x%X max-steps=%d\n",
			cfg.Execution.ProgramBase, cfg.Execution.DataBase, cfg.Execution.ServiceBase, entry, cfg.Execution.MaxSteps)
	}

	machine.StartCall(entry)

	switch {
	case *debugMode:
		dbg := debugger.NewDebugger(machine)
		if err := debugger.RunCLI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
	case *tuiMode:
		dbg := debugger.NewDebugger(machine)
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
	case *guiMode:
		runWithInspector(machine, cfg, *traceMode)
	default:
		runToCompletion(machine, cfg, *traceMode)
	}

	for _, line := range api.DebugLog {
		fmt.Println(line)
	}
}

// runToCompletion drives the session on the calling goroutine until it
// returns, errors, or exhausts its step budget.
func runToCompletion(machine *vm.State, cfg *config.Config, trace bool) {
	const batch = 1000
	var total uint64
	for total < cfg.Execution.MaxSteps {
		n := batch
		if remaining := cfg.Execution.MaxSteps - total; uint64(n) > remaining {
			n = int(remaining)
		}
		if trace {
			for i := 0; i < n; i++ {
				result := machine.Step(1)
				total++
				fmt.Printf("PC=0x%08X R0=0x%08X R1=0x%08X SP=0x%08X\n",
					machine.PC(), machine.Register(0), machine.Register(1), machine.SP())
				if result != vm.StepRunning {
					reportResult(machine, result)
					return
				}
			}
			continue
		}
		result := machine.Step(n)
		total += uint64(n)
		if result != vm.StepRunning {
			reportResult(machine, result)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "pluginrun: step budget (%d) exhausted without returning\n", cfg.Execution.MaxSteps)
	os.Exit(1)
}

// runWithInspector runs the session on a background goroutine while the
// Fyne inspector window is open on the main goroutine, the arrangement
// every desktop GUI toolkit in the pack requires (UI event loop owns
// the thread it was created on).
func runWithInspector(machine *vm.State, cfg *config.Config, trace bool) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runToCompletion(machine, cfg, trace)
	}()

	insp := gui.New(machine)
	insp.Run()
	<-done
}

func reportResult(machine *vm.State, result vm.StepResult) {
	switch result {
	case vm.StepReturned:
		fmt.Printf("Plugin returned: R0=0x%08X\n", machine.ReturnValue())
	case vm.StepError:
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", machine.LastError)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func parseAddress(s string) (uint32, error) {
	var addr uint32
	if _, err := fmt.Sscanf(s, "0x%x", &addr); err == nil {
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err == nil {
		return addr, nil
	}
	return 0, fmt.Errorf("%q is neither a hex nor decimal address", s)
}

func printHelp() {
	fmt.Println(`pluginrun - run a sandboxed Thumb plugin image

Usage:
  pluginrun [flags] <plugin-image>

Flags:`)
	flag.PrintDefaults()
}
