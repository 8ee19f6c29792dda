package wgslreflect

import "github.com/gogpu/naga/ir"

// usedGlobals returns the globals referenced by entry or any function it
// calls.
func usedGlobals(mod *ir.Module, entry ir.FunctionHandle) map[ir.GlobalVariableHandle]bool {
	used := make(map[ir.GlobalVariableHandle]bool)
	seen := make(map[ir.FunctionHandle]bool)
	queue := []ir.FunctionHandle{entry}

	for len(queue) > 0 {
		fh := queue[0]
		queue = queue[1:]
		if seen[fh] || int(fh) >= len(mod.Functions) {
			continue
		}
		seen[fh] = true

		fn := &mod.Functions[fh]
		for _, expr := range fn.Expressions {
			switch k := expr.Kind.(type) {
			case ir.ExprGlobalVariable:
				used[k.Variable] = true
			case ir.ExprCallResult:
				queue = append(queue, k.Function)
			}
		}
		queue = appendCallees(queue, fn.Body)
	}
	return used
}

func appendCallees(queue []ir.FunctionHandle, block []ir.Statement) []ir.FunctionHandle {
	for _, st := range block {
		switch k := st.Kind.(type) {
		case ir.StmtCall:
			queue = append(queue, k.Function)
		case ir.StmtBlock:
			queue = appendCallees(queue, k.Block)
		case ir.StmtIf:
			queue = appendCallees(queue, k.Accept)
			queue = appendCallees(queue, k.Reject)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				queue = appendCallees(queue, c.Body)
			}
		case ir.StmtLoop:
			queue = appendCallees(queue, k.Body)
			queue = appendCallees(queue, k.Continuing)
		}
	}
	return queue
}
