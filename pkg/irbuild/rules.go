// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package irbuild implements the Layered IR Builder (C4): nine ordered
// layers (L1-L9) that turn one parsed file into an IRDocument. Where the
// teacher's pkg/ingestion hand-writes one 1000+ line tree-walker per
// language (parser_go.go, parser_python.go, parser_javascript.go), this
// package generalizes the same switch-on-node.Type() walking idiom into a
// single table-driven walker, keyed by per-language LanguageRules, so the
// seven languages L1-L9 must cover share one code path instead of seven
// forked ones.
package irbuild

import "github.com/kraklabs/ccf/pkg/langparse"

// LanguageRules tells the generic walker which tree-sitter node type
// strings carry which L1 meaning for one language, and how to pull a name
// out of them.
type LanguageRules struct {
	FunctionTypes map[string]bool
	MethodTypes   map[string]bool
	ClassTypes    map[string]bool
	ImportTypes   map[string]bool
	CallTypes     map[string]bool
	IdentTypes    map[string]bool // leaf node types that count as a name occurrence
	AssignTypes   map[string]bool
	BinOpTypes    map[string]bool
	LiteralTypes  map[string]bool
	IfTypes       map[string]bool
	LoopTypes     map[string]bool
	ReturnTypes   map[string]bool

	// NameField is the field name holding a declaration's identifier, when
	// the grammar exposes one via ChildByFieldName (most do).
	NameField string
	// ReceiverField, when non-empty, is the field holding a method's
	// receiver/self type, used to build "Type.Method" qualified names.
	ReceiverField string
	// PrivateByConvention reports whether name looks private under this
	// language's convention (e.g. Python's leading underscore).
	PrivateByConvention func(name string) bool
}

func isLowerFirst(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'a' && r <= 'z'
}

func hasLeadingUnderscore(name string) bool {
	return len(name) > 0 && name[0] == '_'
}

var rulesByLanguage = map[langparse.Language]LanguageRules{
	langparse.LanguageGo: {
		FunctionTypes: set("function_declaration"),
		MethodTypes:   set("method_declaration"),
		ClassTypes:    set("type_declaration"),
		ImportTypes:   set("import_spec"),
		CallTypes:     set("call_expression"),
		IdentTypes:    set("identifier", "field_identifier"),
		AssignTypes:   set("short_var_declaration", "assignment_statement"),
		BinOpTypes:    set("binary_expression"),
		LiteralTypes:  set("int_literal", "float_literal", "interpreted_string_literal", "raw_string_literal", "true", "false", "nil"),
		IfTypes:       set("if_statement"),
		LoopTypes:     set("for_statement"),
		ReturnTypes:   set("return_statement"),
		NameField:     "name",
		ReceiverField: "receiver",
		PrivateByConvention: func(name string) bool {
			return isLowerFirst(name)
		},
	},
	langparse.LanguagePython: {
		FunctionTypes: set("function_definition"),
		MethodTypes:   set(), // methods are function_definition nested in a class; handled by nesting check
		ClassTypes:    set("class_definition"),
		ImportTypes:   set("import_statement", "import_from_statement"),
		CallTypes:     set("call"),
		IdentTypes:    set("identifier"),
		AssignTypes:   set("assignment"),
		BinOpTypes:    set("binary_operator"),
		LiteralTypes:  set("integer", "float", "string", "true", "false", "none"),
		IfTypes:       set("if_statement"),
		LoopTypes:     set("for_statement", "while_statement"),
		ReturnTypes:   set("return_statement"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return hasLeadingUnderscore(name)
		},
	},
	langparse.LanguageJavaScript: {
		FunctionTypes: set("function_declaration", "function", "arrow_function", "generator_function_declaration"),
		MethodTypes:   set("method_definition"),
		ClassTypes:    set("class_declaration"),
		ImportTypes:   set("import_statement"),
		CallTypes:     set("call_expression"),
		IdentTypes:    set("identifier", "property_identifier", "shorthand_property_identifier"),
		AssignTypes:   set("variable_declarator", "assignment_expression"),
		BinOpTypes:    set("binary_expression"),
		LiteralTypes:  set("number", "string", "true", "false", "null", "undefined"),
		IfTypes:       set("if_statement"),
		LoopTypes:     set("for_statement", "while_statement", "for_in_statement"),
		ReturnTypes:   set("return_statement"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return hasLeadingUnderscore(name)
		},
	},
	langparse.LanguageTypeScript: {
		FunctionTypes: set("function_declaration", "function", "arrow_function"),
		MethodTypes:   set("method_definition", "method_signature"),
		ClassTypes:    set("class_declaration", "interface_declaration"),
		ImportTypes:   set("import_statement"),
		CallTypes:     set("call_expression"),
		IdentTypes:    set("identifier", "property_identifier"),
		AssignTypes:   set("variable_declarator", "assignment_expression"),
		BinOpTypes:    set("binary_expression"),
		LiteralTypes:  set("number", "string", "true", "false", "null", "undefined"),
		IfTypes:       set("if_statement"),
		LoopTypes:     set("for_statement", "while_statement", "for_in_statement"),
		ReturnTypes:   set("return_statement"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return hasLeadingUnderscore(name)
		},
	},
	langparse.LanguageJava: {
		FunctionTypes: set(), // Java has no free functions; methods only
		MethodTypes:   set("method_declaration", "constructor_declaration"),
		ClassTypes:    set("class_declaration", "interface_declaration", "enum_declaration"),
		ImportTypes:   set("import_declaration"),
		CallTypes:     set("method_invocation"),
		IdentTypes:    set("identifier"),
		AssignTypes:   set("variable_declarator", "assignment_expression"),
		BinOpTypes:    set("binary_expression"),
		LiteralTypes:  set("decimal_integer_literal", "string_literal", "true", "false", "null_literal"),
		IfTypes:       set("if_statement"),
		LoopTypes:     set("for_statement", "while_statement", "enhanced_for_statement"),
		ReturnTypes:   set("return_statement"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return false // visibility is modifier-driven, not name-driven
		},
	},
	langparse.LanguageRust: {
		FunctionTypes: set("function_item"),
		MethodTypes:   set(), // impl-block functions are function_item too; nesting decides
		ClassTypes:    set("struct_item", "enum_item", "trait_item", "impl_item"),
		ImportTypes:   set("use_declaration"),
		CallTypes:     set("call_expression"),
		IdentTypes:    set("identifier", "field_identifier"),
		AssignTypes:   set("let_declaration", "assignment_expression"),
		BinOpTypes:    set("binary_expression"),
		LiteralTypes:  set("integer_literal", "float_literal", "string_literal", "boolean_literal"),
		IfTypes:       set("if_expression"),
		LoopTypes:     set("for_expression", "while_expression", "loop_expression"),
		ReturnTypes:   set("return_expression"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return hasLeadingUnderscore(name)
		},
	},
	langparse.LanguageKotlin: {
		FunctionTypes: set("function_declaration"),
		MethodTypes:   set(), // class-nested function_declaration; nesting decides
		ClassTypes:    set("class_declaration", "object_declaration"),
		ImportTypes:   set("import_header"),
		CallTypes:     set("call_expression"),
		IdentTypes:    set("simple_identifier"),
		AssignTypes:   set("property_declaration", "assignment"),
		BinOpTypes:    set("additive_expression", "multiplicative_expression"),
		LiteralTypes:  set("integer_literal", "real_literal", "string_literal", "boolean_literal", "null_literal"),
		IfTypes:       set("if_expression"),
		LoopTypes:     set("for_statement", "while_statement"),
		ReturnTypes:   set("jump_expression"),
		NameField:     "name",
		PrivateByConvention: func(name string) bool {
			return hasLeadingUnderscore(name)
		},
	},
}

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// RulesFor returns the walking rules for lang, and whether it is supported.
func RulesFor(lang langparse.Language) (LanguageRules, bool) {
	r, ok := rulesByLanguage[lang]
	return r, ok
}
