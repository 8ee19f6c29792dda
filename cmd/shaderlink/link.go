package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/richinsley/goshaderlink"
	"github.com/richinsley/goshaderlink/internal/config"
	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/wgslreflect"
)

type linkOptions struct {
	stages      map[string]string
	entryPoints map[string]string
	format      string
	output      string
	wasm        string
	spec        string
	glslOutput  string
	groupStride int
	jobs        int
}

func newLinkCmd() *cobra.Command {
	opts := linkOptions{}
	cmd := &cobra.Command{
		Use:   "link [stage=file ...]",
		Short: "Reflect and link shader stages",
		Long: `Reflect each stage, link them and print the program's reflection.

Stages are given as stage=file arguments or with --stage, e.g.
  shaderlink link vertex=lit.wgsl fragment=lit.wgsl
Files ending in .wgsl are reflected with naga; anything else is compiled by
the ANGLE translator, which needs --wasm or [translator].wasm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.stages == nil {
				opts.stages = make(map[string]string)
			}
			for _, arg := range args {
				name, path, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("argument %q is not of the form stage=file", arg)
				}
				opts.stages[name] = path
			}
			return runLink(cmd, opts)
		},
	}
	cmd.Flags().StringToStringVar(&opts.stages, "stage", nil, "stage source file, e.g. --stage vertex=a.vert (repeatable)")
	cmd.Flags().StringToStringVar(&opts.entryPoints, "entry", nil, "WGSL entry point per stage, e.g. --entry vertex=vs_main")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format (pretty|json|msgpack)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&opts.wasm, "wasm", "", "path to the ANGLE translator wasm module")
	cmd.Flags().StringVar(&opts.spec, "spec", "", "shader spec for the ANGLE translator (gles2|gles3|gles31|webgl|webgl2|...)")
	cmd.Flags().StringVar(&opts.glslOutput, "glsl-output", "", "object code format for the ANGLE translator (essl|glsl|glsl450|...)")
	cmd.Flags().IntVar(&opts.groupStride, "group-stride", 0, "binding distance between WGSL bind groups")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "stages reflected in parallel (0 = GOMAXPROCS)")
	return cmd
}

// stageJob is one stage to reflect.
type stageJob struct {
	stage      shadertype.Type
	path       string
	entryPoint string
}

func runLink(cmd *cobra.Command, opts linkOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	jobs, err := collectStages(cfg, opts)
	if err != nil {
		return err
	}
	logger := log.New(cmd.ErrOrStderr(), "shaderlink: ", 0)

	var translator *goshaderlink.ShaderTranslator
	if slices.ContainsFunc(jobs, func(j stageJob) bool { return !isWGSL(j.path) }) {
		wasm := cfg.Resolve(cfg.Translator.Wasm)
		if wasm == "" {
			return errors.New("GLSL stages need the ANGLE translator: set --wasm or [translator].wasm")
		}
		translator, err = goshaderlink.NewShaderTranslatorFromFile(cmd.Context(), wasm)
		if err != nil {
			return err
		}
		defer translator.Close()
	}

	stages, err := reflectStages(cmd.Context(), cfg, jobs, translator, logger, opts.jobs)
	if err != nil {
		return err
	}

	linker := &program.Linker{Limits: cfg.Limits, Logger: logger}
	p, err := linker.Link(stages...)
	if err != nil {
		return err
	}
	return writeProgram(cmd, cfg, p)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}

// applyFlags overrides the configuration with flags that were set. Paths
// given on the command line are relative to the working directory, not to
// the configuration file.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts linkOptions) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("wasm") {
		wasm := opts.wasm
		if wasm != "" {
			abs, err := filepath.Abs(wasm)
			if err != nil {
				return fmt.Errorf("--wasm: %w", err)
			}
			wasm = abs
		}
		cfg.Translator.Wasm = wasm
	}
	if flags.Changed("spec") {
		cfg.Translator.Spec = opts.spec
	}
	if flags.Changed("glsl-output") {
		cfg.Translator.Output = opts.glslOutput
	}
	if flags.Changed("group-stride") {
		cfg.WGSL.GroupStride = opts.groupStride
	}
	return nil
}

func collectStages(cfg *config.Config, opts linkOptions) ([]stageJob, error) {
	sources, err := cfg.StageSources()
	if err != nil {
		return nil, err
	}
	for name, path := range opts.stages {
		stage, err := shadertype.ParseType(name)
		if err != nil {
			return nil, err
		}
		sources[stage] = path
	}
	if len(sources) == 0 {
		return nil, errors.New("no stages given")
	}

	entries := make(map[shadertype.Type]string)
	for name, ep := range opts.entryPoints {
		stage, err := shadertype.ParseType(name)
		if err != nil {
			return nil, err
		}
		entries[stage] = ep
	}

	var jobs []stageJob
	for _, stage := range shadertype.AllTypes() {
		path, ok := sources[stage]
		if !ok {
			continue
		}
		ep, ok := entries[stage]
		if !ok {
			ep = cfg.EntryPoint(stage)
		}
		jobs = append(jobs, stageJob{stage: stage, path: path, entryPoint: ep})
	}
	return jobs, nil
}

func isWGSL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wgsl")
}

// reflectStages reflects every job concurrently. The translator serializes
// its own calls.
func reflectStages(ctx context.Context, cfg *config.Config, jobs []stageJob, translator *goshaderlink.ShaderTranslator, logger *log.Logger, limit int) ([]program.StageReflection, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]program.StageReflection, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(limit, len(jobs)))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(job.path)
			if err != nil {
				return fmt.Errorf("%s stage: %w", job.stage, err)
			}
			if isWGSL(job.path) {
				st, err := wgslreflect.Reflect(string(src), job.stage, job.entryPoint, wgslreflect.Options{
					GroupStride: cfg.WGSL.GroupStride,
					Logger:      logger,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", job.path, err)
				}
				results[i] = st
				return nil
			}
			shader, err := translator.TranslateShader(string(src), job.stage,
				goshaderlink.ShaderSpec(cfg.Translator.Spec), goshaderlink.OutputFormat(cfg.Translator.Output))
			if err != nil {
				return fmt.Errorf("%s: %w", job.path, err)
			}
			results[i] = shader.Reflection(job.stage)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeProgram(cmd *cobra.Command, cfg *config.Config, p *program.Program) (err error) {
	var out io.Writer = cmd.OutOrStdout()
	var file *os.File
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer closeOutput(f, &err)
		out, file = f, f
	} else if f, ok := out.(*os.File); ok {
		file = f
	}

	switch cfg.Output.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "msgpack":
		enc := msgpack.NewEncoder(out)
		enc.SetCustomStructTag("json")
		return enc.Encode(p)
	case "pretty", "":
		colored, err := useColor(cmd, file)
		if err != nil {
			return err
		}
		name := cfg.Program.Name
		if name == "" {
			name = "program"
		}
		return renderPretty(out, name, p, colored)
	}
	return fmt.Errorf("unsupported format %q (must be one of %s)", cfg.Output.Format, strings.Join(config.Formats, ", "))
}

// closeOutput closes c, reporting its error through err unless an earlier
// error is already there.
func closeOutput(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing output: %w", cerr)
	}
}
