package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/uniform"
)

type palette struct {
	title   *color.Color
	section *color.Color
	name    *color.Color
	typ     *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.FgCyan, color.Bold),
		section: color.New(color.FgYellow, color.Bold),
		name:    color.New(color.FgGreen),
		typ:     color.New(color.FgBlue),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.title, p.section, p.name, p.typ, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// renderPretty prints a human-readable summary of p.
func renderPretty(out io.Writer, name string, p *program.Program, colored bool) error {
	pal := newPalette(colored)
	w := &errWriter{w: out}

	pal.title.Fprintf(w, "%s", name)
	w.printf(" linked stages %s\n", p.LinkedStages)

	if p.DefaultBlockEnd > 0 {
		pal.section.Fprintln(w, "\nDefault uniforms")
		for i := 0; i < p.DefaultBlockEnd; i++ {
			renderUniform(w, pal, i, &p.Uniforms[i], kindOf(p, i))
		}
	}

	if len(p.UniformBlocks) > 0 {
		pal.section.Fprintln(w, "\nUniform blocks")
		for i := range p.UniformBlocks {
			b := &p.UniformBlocks[i]
			renderBlock(w, pal, i, b)
			for _, m := range b.MemberIndexes {
				renderUniform(w, pal, m, &p.Uniforms[m], "")
			}
		}
	}

	if len(p.ShaderStorageBlocks) > 0 {
		pal.section.Fprintln(w, "\nShader storage blocks")
		for i := range p.ShaderStorageBlocks {
			b := &p.ShaderStorageBlocks[i]
			renderBlock(w, pal, i, b)
			for _, m := range b.MemberIndexes {
				v := &p.BufferVariables[m]
				w.printf("    [%d] ", m)
				pal.name.Fprint(w, v.Name)
				w.printf(" ")
				pal.typ.Fprint(w, typeString(v.Type.String(), v.ArraySizes))
				w.printf(" offset=%d top_level_array_size=%s", v.BlockInfo.Offset, v.TopLevelArraySize)
				pal.dim.Fprintf(w, " %s\n", usageString(&v.Usage))
			}
		}
	}

	if len(p.AtomicCounterBuffers) > 0 {
		pal.section.Fprintln(w, "\nAtomic counter buffers")
		for i := range p.AtomicCounterBuffers {
			b := &p.AtomicCounterBuffers[i]
			w.printf("  [%d] binding=%d size=%d counters=%v", i, b.Binding, b.DataSize, b.MemberIndexes)
			pal.dim.Fprintf(w, " %s\n", usageString(&b.Usage))
		}
	}
	return w.err
}

func kindOf(p *program.Program, i int) string {
	switch {
	case p.SamplerRange.Contains(i):
		return "sampler"
	case p.ImageRange.Contains(i):
		return "image"
	case p.AtomicCounterRange.Contains(i):
		return "atomic counter"
	}
	return ""
}

func renderUniform(w *errWriter, pal palette, i int, u *uniform.LinkedUniform, kind string) {
	indent := "  "
	if !u.IsInDefaultBlock() && kind == "" {
		indent = "    "
	}
	w.printf("%s[%d] ", indent, i)
	pal.name.Fprint(w, u.Name)
	w.printf(" ")
	pal.typ.Fprint(w, typeString(u.Type.String(), u.ArraySizes))
	if kind != "" {
		w.printf(" (%s)", kind)
	}
	if u.Binding >= 0 {
		w.printf(" binding=%d", u.Binding)
	}
	if u.Location >= 0 {
		w.printf(" location=%d", u.Location)
	}
	if !u.BlockInfo.IsDefault() {
		w.printf(" offset=%d", u.BlockInfo.Offset)
	}
	pal.dim.Fprintf(w, " %s\n", usageString(&u.Usage))
}

func renderBlock(w *errWriter, pal palette, i int, b *uniform.InterfaceBlock) {
	w.printf("  [%d] ", i)
	pal.name.Fprint(w, b.NameWithArrayIndex())
	w.printf(" binding=%d size=%d members=%d", b.Binding, b.DataSize, b.NumActiveVariables())
	if b.IsReadOnly {
		w.printf(" readonly")
	}
	pal.dim.Fprintf(w, " %s\n", usageString(&b.Usage))
}

func typeString(t string, arraySizes []uint32) string {
	var sb strings.Builder
	sb.WriteString(t)
	for i := len(arraySizes) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "[%d]", arraySizes[i])
	}
	return sb.String()
}

func usageString(a *uniform.ActiveVariable) string {
	var parts []string
	for _, stage := range shadertype.AllTypes() {
		if !a.IsActive(stage) {
			continue
		}
		if id := a.StageID(stage); id != 0 {
			parts = append(parts, fmt.Sprintf("%s#%d", stage, id))
		} else {
			parts = append(parts, stage.String())
		}
	}
	if len(parts) == 0 {
		return "inactive"
	}
	return "active in " + strings.Join(parts, ", ")
}

// errWriter keeps the first write error so rendering code can ignore it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
