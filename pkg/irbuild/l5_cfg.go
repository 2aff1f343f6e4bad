// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/ssa"
)

// cfgBuilder accumulates BlockSpecs for one function while walking its
// body in program order.
type cfgBuilder struct {
	blocks []ssa.BlockSpec
	rules  LanguageRules
	source []byte
}

func (b *cfgBuilder) newBlock() ssa.BlockID {
	id := ssa.BlockID(len(b.blocks))
	b.blocks = append(b.blocks, ssa.BlockSpec{ID: id})
	return id
}

func (b *cfgBuilder) append(id ssa.BlockID, instr ssa.Instruction) {
	b.blocks[id].Instructions = append(b.blocks[id].Instructions, instr)
}

func (b *cfgBuilder) link(from, to ssa.BlockID) {
	b.blocks[from].Successors = append(b.blocks[from].Successors, to)
}

// BuildL5 constructs one function's control-flow graph by walking its body
// in program order, opening a new block at every if/loop boundary (spec
// §4.4 L5). Straight-line statement sequences collapse into a single
// block; a statement's Reads/Writes are the identifiers the teacher's own
// walkGoAST-style name scan finds under it, which is exactly what L6 (DFG
// + SSA) needs as input.
func BuildL5(fnNode *sitter.Node, rules LanguageRules, source []byte) (*ssa.CFG, map[ssa.BlockID]map[string]bool, error) {
	b := &cfgBuilder{rules: rules, source: source}
	entry := b.newBlock()

	body := fnNode.ChildByFieldName("body")
	if body == nil {
		body = fnNode
	}

	exit := walkStmts(b, body, entry)
	_ = exit // final block simply has no successors (implicit return)

	cfg, err := ssa.BuildCFG(b.blocks, entry)
	if err != nil {
		return nil, nil, err
	}

	defsPerBlock := make(map[ssa.BlockID]map[string]bool, len(b.blocks))
	for _, blk := range b.blocks {
		vars := make(map[string]bool)
		for _, instr := range blk.Instructions {
			for _, w := range instr.Writes {
				vars[w] = true
			}
		}
		defsPerBlock[blk.ID] = vars
	}
	return cfg, defsPerBlock, nil
}

// walkStmts walks statement children of n into cur, opening new blocks at
// branch points, and returns the block control falls through to after n.
func walkStmts(b *cfgBuilder, n *sitter.Node, cur ssa.BlockID) ssa.BlockID {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		t := child.Type()

		switch {
		case b.rules.IfTypes[t]:
			cur = emitBranch(b, child, cur)

		case b.rules.LoopTypes[t]:
			cur = emitLoop(b, child, cur)

		case b.rules.ReturnTypes[t]:
			collectInstr(b, cur, child)
			next := b.newBlock() // unreachable tail; kept so later statements still parse
			return next

		default:
			if isCompoundStatement(b.rules, child) {
				cur = walkStmts(b, child, cur)
			} else {
				collectInstr(b, cur, child)
			}
		}
	}
	return cur
}

func isCompoundStatement(rules LanguageRules, n *sitter.Node) bool {
	switch n.Type() {
	case "block", "statement_block", "compound_statement", "suite":
		return true
	}
	return false
}

func emitBranch(b *cfgBuilder, ifNode *sitter.Node, cur ssa.BlockID) ssa.BlockID {
	if cond := ifNode.ChildByFieldName("condition"); cond != nil {
		collectInstr(b, cur, cond)
	}
	thenBlock := b.newBlock()
	b.link(cur, thenBlock)
	merge := b.newBlock()

	if cons := ifNode.ChildByFieldName("consequence"); cons != nil {
		thenEnd := walkStmts(b, cons, thenBlock)
		b.link(thenEnd, merge)
	} else {
		b.link(thenBlock, merge)
	}

	if alt := ifNode.ChildByFieldName("alternative"); alt != nil {
		elseBlock := b.newBlock()
		b.link(cur, elseBlock)
		elseEnd := walkStmts(b, alt, elseBlock)
		b.link(elseEnd, merge)
	} else {
		b.link(cur, merge)
	}

	return merge
}

func emitLoop(b *cfgBuilder, loopNode *sitter.Node, cur ssa.BlockID) ssa.BlockID {
	header := b.newBlock()
	b.link(cur, header)
	if cond := loopNode.ChildByFieldName("condition"); cond != nil {
		collectInstr(b, header, cond)
	}

	bodyBlock := b.newBlock()
	b.link(header, bodyBlock)
	exit := b.newBlock()
	b.link(header, exit)

	if body := loopNode.ChildByFieldName("body"); body != nil {
		bodyEnd := walkStmts(b, body, bodyBlock)
		b.link(bodyEnd, header)
	} else {
		b.link(bodyBlock, header)
	}

	return exit
}

// collectInstr scans n for identifier reads/writes and appends one
// Instruction to block id, using the same write-on-assignment-LHS
// heuristic L2 uses to classify def vs. read. When n is a simple
// assignment whose right-hand side is a literal, identifier, or binary
// op of those, it also attaches an Eval closure so L7's SCCP pass can
// fold the write's value (spec §4.4 L7, §4.4's binary-op evaluation
// rules).
func collectInstr(b *cfgBuilder, id ssa.BlockID, n *sitter.Node) {
	instr := ssa.Instruction{}
	var writeNode *sitter.Node
	if b.rules.AssignTypes[n.Type()] {
		if lhs := n.ChildByFieldName("left"); lhs != nil {
			writeNode = lhs
			// A single target wrapped in a list node (Go's expression_list
			// on := and =) is itself the written name.
			if lhs.NamedChildCount() == 1 {
				writeNode = lhs.NamedChild(0)
			}
		} else if nm := n.ChildByFieldName("name"); nm != nil {
			writeNode = nm
		}
	}

	rhs := rhsNode(n)
	var readsBeforeRHS int
	var rhsEval evalFn
	rhsSeen := false

	var scan func(nd *sitter.Node)
	scan = func(nd *sitter.Node) {
		if nd == nil {
			return
		}
		if nd == rhs && !rhsSeen {
			rhsSeen = true
			readsBeforeRHS = len(instr.Reads)
			rhsEval = buildEval(nd, b.rules, b.source, writeNode)
		}
		if b.rules.IdentTypes[nd.Type()] {
			name := nd.Content(b.source)
			if nd == writeNode {
				instr.Writes = append(instr.Writes, name)
			} else {
				instr.Reads = append(instr.Reads, name)
			}
			return
		}
		for i := 0; i < int(nd.ChildCount()); i++ {
			scan(nd.Child(i))
		}
	}
	scan(n)

	if rhsEval != nil {
		offset := readsBeforeRHS
		instr.Eval = func(inputs []ir.ConstantValue) ir.ConstantValue {
			i := offset
			pop := func() ir.ConstantValue {
				if i >= len(inputs) {
					return ir.Bottom
				}
				v := inputs[i]
				i++
				return v
			}
			return rhsEval(pop)
		}
	}

	if len(instr.Reads) > 0 || len(instr.Writes) > 0 {
		b.append(id, instr)
	}
}

// rhsNode finds the value side of an assignment-shaped statement: "right"
// covers Go/Python assignments and JS/Java assignment expressions; "value"
// covers JS/Java variable_declarators, Rust let_declarations, and Kotlin
// property_declarations, none of which use a "right" field.
func rhsNode(n *sitter.Node) *sitter.Node {
	if rhs := n.ChildByFieldName("right"); rhs != nil {
		return rhs
	}
	return n.ChildByFieldName("value")
}

// evalFn replays one expression's structure, pulling SSA-renamed operand
// values from pop in the same left-to-right order collectInstr recorded
// them in Reads.
type evalFn func(pop func() ir.ConstantValue) ir.ConstantValue

// buildEval mirrors collectInstr's own read-collecting traversal so that
// pop() calls line up 1:1 with the Reads slice SCCP feeds back as inputs.
func buildEval(nd *sitter.Node, rules LanguageRules, source []byte, writeNode *sitter.Node) evalFn {
	if nd == nil || nd == writeNode {
		return nil
	}

	switch {
	case rules.LiteralTypes[nd.Type()]:
		v := evalLiteral(nd.Type(), nd.Content(source))
		return func(func() ir.ConstantValue) ir.ConstantValue { return v }

	case rules.IdentTypes[nd.Type()]:
		return func(pop func() ir.ConstantValue) ir.ConstantValue { return pop() }

	case rules.BinOpTypes[nd.Type()]:
		left, right, op := binOpParts(nd, source)
		leftFn := buildEval(left, rules, source, writeNode)
		rightFn := buildEval(right, rules, source, writeNode)
		return func(pop func() ir.ConstantValue) ir.ConstantValue {
			lv, rv := ir.Bottom, ir.Bottom
			if leftFn != nil {
				lv = leftFn(pop)
			}
			if rightFn != nil {
				rv = rightFn(pop)
			}
			return evalBinOp(op, lv, rv)
		}

	default:
		var children []evalFn
		for i := 0; i < int(nd.ChildCount()); i++ {
			if f := buildEval(nd.Child(i), rules, source, writeNode); f != nil {
				children = append(children, f)
			}
		}
		if len(children) == 0 {
			return nil
		}
		return func(pop func() ir.ConstantValue) ir.ConstantValue {
			result := ir.Bottom
			for _, f := range children {
				result = f(pop)
			}
			return result
		}
	}
}

// binOpParts extracts the left/right operands and operator token of a
// binary-op node. Most grammars expose "left"/"operator"/"right" fields;
// Kotlin's additive/multiplicative expressions do not, so a positional
// fallback covers the common left-op-right 3-child shape.
func binOpParts(n *sitter.Node, source []byte) (left, right *sitter.Node, op string) {
	left = n.ChildByFieldName("left")
	right = n.ChildByFieldName("right")
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = opNode.Content(source)
	}
	if (left == nil || right == nil || op == "") && n.ChildCount() == 3 {
		if left == nil {
			left = n.Child(0)
		}
		if right == nil {
			right = n.Child(2)
		}
		if op == "" {
			op = n.Child(1).Content(source)
		}
	}
	return left, right, op
}

// evalLiteral parses one literal token into its constant value, returning
// Bottom for anything this evaluator does not recognize (spec §4.4: an
// unevaluable literal shape is provably-not-a-single-known-constant, same
// as any other non-foldable expression).
func evalLiteral(nodeType, text string) ir.ConstantValue {
	switch nodeType {
	case "true":
		return ir.Const(true)
	case "false":
		return ir.Const(false)
	case "nil", "none", "null", "undefined", "null_literal":
		return ir.Const(nil)
	case "boolean_literal":
		switch text {
		case "true":
			return ir.Const(true)
		case "false":
			return ir.Const(false)
		}
		return ir.Bottom
	}

	if isStringLiteralType(nodeType) {
		return ir.Const(unquoteLiteral(text))
	}

	clean := strings.ReplaceAll(text, "_", "")
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return ir.Const(i)
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return ir.Const(f)
	}
	return ir.Bottom
}

func isStringLiteralType(t string) bool {
	switch t {
	case "interpreted_string_literal", "raw_string_literal", "string", "string_literal":
		return true
	}
	return false
}

func unquoteLiteral(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// evalBinOp folds a binary operator over two already-evaluated operands.
// An operand that is still Top (not yet decided) keeps the result Top
// rather than forcing Bottom, preserving SCCP's monotonic lattice walk;
// a Bottom operand, a division/modulo by a constant zero, or a type
// mismatch between operands all resolve permanently to Bottom (spec
// §4.4).
func evalBinOp(op string, a, b ir.ConstantValue) ir.ConstantValue {
	if a.IsBottom() || b.IsBottom() {
		return ir.Bottom
	}
	if a.IsTop() || b.IsTop() {
		return ir.Top
	}

	av, _ := a.Value()
	bv, _ := b.Value()

	if ai, aok := av.(int64); aok {
		if bi, bok := bv.(int64); bok {
			switch op {
			case "+":
				return ir.Const(ai + bi)
			case "-":
				return ir.Const(ai - bi)
			case "*":
				return ir.Const(ai * bi)
			case "/":
				if bi == 0 {
					return ir.Bottom
				}
				return ir.Const(ai / bi)
			case "%":
				if bi == 0 {
					return ir.Bottom
				}
				return ir.Const(ai % bi)
			}
			return ir.Bottom
		}
	}

	if af, aok := toFloatVal(av); aok {
		if bf, bok := toFloatVal(bv); bok {
			switch op {
			case "+":
				return ir.Const(af + bf)
			case "-":
				return ir.Const(af - bf)
			case "*":
				return ir.Const(af * bf)
			case "/":
				if bf == 0 {
					return ir.Bottom
				}
				return ir.Const(af / bf)
			}
			return ir.Bottom
		}
	}

	if as, aok := av.(string); aok {
		if bs, bok := bv.(string); bok && op == "+" {
			return ir.Const(as + bs)
		}
	}

	return ir.Bottom
}

func toFloatVal(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
