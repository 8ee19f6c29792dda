package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version can be overridden at build time via -ldflags.
var version = "0.1.0-dev"

type versionPayload struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version,omitempty"`
	Deps      map[string]string `json:"deps,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var format string
	var deps bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the shaderlink version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := collectVersion(deps)
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "pretty":
				out := cmd.OutOrStdout()
				f, _ := out.(*os.File)
				colored, err := useColor(cmd, f)
				if err != nil {
					return err
				}
				renderVersionPretty(out, payload, colored)
				return nil
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&deps, "deps", false, "list the versions of the shader front ends")
	return cmd
}

func collectVersion(withDeps bool) versionPayload {
	p := versionPayload{Tool: "shaderlink", Version: version}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return p
	}
	p.GoVersion = info.GoVersion
	if withDeps {
		p.Deps = make(map[string]string)
		for _, dep := range info.Deps {
			switch dep.Path {
			case "github.com/gogpu/naga", "github.com/tetratelabs/wazero":
				p.Deps[dep.Path] = dep.Version
			}
		}
	}
	return p
}

func renderVersionPretty(out io.Writer, p versionPayload, colored bool) {
	name := color.New(color.FgCyan, color.Bold)
	if colored {
		name.EnableColor()
	} else {
		name.DisableColor()
	}
	name.Fprint(out, p.Tool)
	fmt.Fprintf(out, " %s", p.Version)
	if p.GoVersion != "" {
		fmt.Fprintf(out, " (%s)", p.GoVersion)
	}
	fmt.Fprintln(out)
	for _, path := range slices.Sorted(maps.Keys(p.Deps)) {
		fmt.Fprintf(out, "  %s %s\n", path, p.Deps[path])
	}
}
