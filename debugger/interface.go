package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pluginhost/thumbvm/vm"
)

// RunCLI runs the command-line debugger interface
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		// Print prompt
		fmt.Print("(arm-dbg) ")

		// Read command
		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		// Exit commands
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		// Execute command
		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		// Print any output from the debugger
		output := dbg.GetOutput()
		if output != "" {
			fmt.Print(output)
		}

		// If running, execute until breakpoint, return, or fault. The
		// stop check follows each instruction, so a step always executes
		// one instruction and continuing from a breakpoint moves past it.
		if dbg.Running {
			for dbg.Running {
				switch dbg.VM.Step(1) {
				case vm.StepReturned:
					dbg.Running = false
					fmt.Printf("Program returned, R0=0x%08X\n", dbg.VM.ReturnValue())

				case vm.StepError:
					dbg.Running = false
					fmt.Printf("Runtime error: %v\n", dbg.VM.LastError)

				case vm.StepRunning:
					if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
						dbg.Running = false
						fmt.Printf("Stopped: %s at PC=0x%08X\n", reason, dbg.VM.PC())
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the TUI (Text User Interface) debugger
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
