// Command shaderlink reflects and links the stages of a shader program and
// prints the resulting uniform and block tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/richinsley/goshaderlink/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shaderlink",
		Short:         "Link shader stages and print their reflection",
		Long:          `shaderlink reflects each stage of a shader program (WGSL with naga, GLSL/ESSL with the ANGLE translator), links them and prints active uniforms, buffer variables and interface blocks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")

	root.AddCommand(newLinkCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shaderlink:", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag for output written to out.
func useColor(cmd *cobra.Command, out *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return out != nil && isTerminal(out), nil
	}
	return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", colorFlag)
}
