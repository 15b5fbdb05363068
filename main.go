// main.go - Command line entry point

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/ccemux
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func boilerPlate(w io.Writer) {
	fmt.Fprintln(w, "\n\033[38;2;255;20;147mCCEmuX-Go\033[0m "+emulatorVersion)
	fmt.Fprintln(w, "ComputerCraft terminal emulator")
	fmt.Fprintln(w, "https://github.com/IntuitionAmiga/ccemux")
	fmt.Fprintln(w, "License: GPLv3 or later")
}

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := newLogger(os.Stderr)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("ccemux failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		count      int
	)
	root := &cobra.Command{
		Use:           "ccemux",
		Short:         "Emulate ComputerCraft computers in a window or terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			if cfg.Renderer != "tty" && term.IsTerminal(int(os.Stdout.Fd())) {
				boilerPlate(cmd.OutOrStdout())
			}
			return runEmulator(cmd.Context(), cfg, count)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/ccemux/ccemux.yaml)")
	root.Flags().IntVar(&count, "count", 1, "computers to open at start")
	addConfigFlags(root.Flags())

	root.AddCommand(newConfigCmd(&configPath))
	root.AddCommand(newRenderersCmd(&configPath))
	root.AddCommand(newFontCmd())
	return root
}

func newConfigCmd(configPath *string) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			out, err := ConfigMap(cfg, defaults)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "include values left at their defaults")
	addConfigFlags(cmd.Flags())
	return cmd
}

func newRenderersCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "renderers",
		Short: "List available renderer backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := defaultRenderer
			if cfg, err := LoadConfig(*configPath, nil); err == nil {
				current = cfg.Renderer
			}
			printRenderers(cmd.OutOrStdout(), current)
			return nil
		},
	}
}

func newFontCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "font",
		Short: "Prepare glyph sheets for --font",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export OUT.png",
		Short: "Write the built-in glyph sheet as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := builtinTerminalFont().WritePNG(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "convert IN.png OUT.png",
		Short: "Make the black background of an opaque glyph sheet transparent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ConvertFontSheet(args[0], args[1])
			if err != nil {
				return err
			}
			w, h := f.GlyphSize()
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d glyphs)\n", args[1], w, h)
			return nil
		},
	})
	return cmd
}

// runEmulator opens count computers and hands the main goroutine to the
// renderer host until it exits.
func runEmulator(ctx context.Context, cfg EmuConfig, count int) error {
	log := loggerFrom(ctx)
	host, err := NewRendererHost(cfg.Renderer, cfg, log)
	if err != nil {
		return err
	}
	emu := NewEmulator(cfg, host, NewLuaComputer, withRenderer(log, cfg.Renderer))
	emu.Start()
	for range count {
		if _, err := emu.CreateComputer(); err != nil {
			emu.Stop()
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go emu.Loop(ctx)

	runErr := host.Run(ctx, emu)
	emu.Stop()
	cancel()
	<-emu.Done()
	for _, inst := range emu.Instances() {
		emu.RemoveComputer(inst.ID())
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
