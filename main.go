// main.go - Emulator entry point

/*
main.go - Entry Point

Command-line surface of the emulator. The machine is selected by name
(only "micro:bit" exists), takes its RAM size and kernel image from
flags, and runs under one of three frontends: a window showing the LED
panel, an ANSI terminal view, or none. The Lua monitor can run alongside
any frontend, either as a stdin REPL or executing a script.

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	var (
		machineName   string
		cpuType       string
		ramSize       int
		kernel        string
		pflash        string
		frontend      string
		monitor       bool
		monitorScript string
		trace         string
	)

	rootCmd := &cobra.Command{
		Use:   "qemu-microbit",
		Short: "micro:bit (nRF51822) machine emulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if machineName != MACHINE_NAME {
				return fmt.Errorf("unknown machine %q (only %q is supported)", machineName, MACHINE_NAME)
			}
			if err := applyTraceMask(trace); err != nil {
				return err
			}

			m, err := NewMicrobitMachine(MachineConfig{
				CPUType:        cpuType,
				RAMSize:        ramSize,
				KernelFilename: kernel,
				PFlashFilename: pflash,
			})
			if err != nil {
				return err
			}

			interrupted := make(chan os.Signal, 1)
			signal.Notify(interrupted, os.Interrupt)

			var stopFrontend func()
			switch frontend {
			case "window":
				out, err := NewWindowOutput()
				if err != nil {
					return fmt.Errorf("starting video backend: %w", err)
				}
				if in, ok := out.(ButtonInput); ok {
					WireButtons(m, in)
				}
				if err := out.Start(); err != nil {
					return fmt.Errorf("starting video backend: %w", err)
				}
				m.AttachVideo(out)
				stopFrontend = func() { _ = out.Stop() }
			case "terminal":
				view := NewTerminalView(m)
				view.Start()
				buttons := NewButtonReader()
				WireButtons(m, buttons)
				if err := buttons.Start(); err != nil {
					// No key events on this stdin; view-only is fine.
					fmt.Fprintf(os.Stderr, "button input unavailable: %v\n", err)
					stopFrontend = view.Stop
				} else {
					go func() {
						<-buttons.InterruptCh
						interrupted <- os.Interrupt
					}()
					stopFrontend = func() {
						buttons.Stop()
						view.Stop()
					}
				}
			case "none":
				stopFrontend = func() {}
			default:
				return fmt.Errorf("unknown frontend %q (window, terminal or none)", frontend)
			}

			go m.Run()

			if monitorScript != "" || monitor {
				mon := NewMonitor(m)
				defer mon.Close()
				if monitorScript != "" {
					if err := mon.RunScript(monitorScript); err != nil {
						m.Stop()
						stopFrontend()
						return fmt.Errorf("monitor script: %w", err)
					}
				}
				if monitor {
					go func() {
						mon.REPL(os.Stdin)
						interrupted <- os.Interrupt
					}()
				}
			}

			<-interrupted
			m.Stop()
			stopFrontend()
			return nil
		},
	}

	rootCmd.Flags().StringVar(&machineName, "machine", MACHINE_NAME, "machine to emulate")
	rootCmd.Flags().StringVar(&cpuType, "cpu", DEFAULT_CPU_TYPE, "CPU type")
	rootCmd.Flags().IntVarP(&ramSize, "ram", "m", DEFAULT_RAM_SIZE, "RAM size in bytes (16384 or 32768)")
	rootCmd.Flags().StringVar(&kernel, "kernel", "", "raw kernel binary loaded into flash (required)")
	rootCmd.Flags().StringVar(&pflash, "pflash", "", "flash backing image loaded before the kernel")
	rootCmd.Flags().StringVar(&frontend, "frontend", "window", "display frontend: window, terminal or none")
	rootCmd.Flags().BoolVar(&monitor, "monitor", false, "run the Lua monitor REPL on stdin")
	rootCmd.Flags().StringVar(&monitorScript, "monitor-script", "", "run a Lua monitor script at startup")
	rootCmd.Flags().StringVar(&trace, "trace", "all", "guest access logging: all, guest, unimp or none")
	_ = rootCmd.MarkFlagRequired("kernel")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qemu-microbit: %v\n", err)
		os.Exit(1)
	}
}

func applyTraceMask(trace string) error {
	switch trace {
	case "all":
		SetGuestLogMask(LogGuestError | LogUnimp)
	case "guest":
		SetGuestLogMask(LogGuestError)
	case "unimp":
		SetGuestLogMask(LogUnimp)
	case "none":
		SetGuestLogMask(0)
	default:
		return fmt.Errorf("unknown trace level %q (all, guest, unimp or none)", trace)
	}
	return nil
}
