// Package lang is the front door to the Verse pipeline: it reads source
// text, scans and parses it (with a content-addressed cache), and runs the
// result with the tree-walking interpreter.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement* EOF
//	Statement   → Declaration | "block" Block | Expression
//	Declaration → FuncDecl | VarDecl
//	FuncDecl    → IDENT Spec* "(" Params? ")" Spec* ":" Type ( "=" Block )?
//	VarDecl     → "var"? IDENT Spec* ( ":=" Expr | ":" Type "=" Expr )
//	Spec        → "<" Type ">"
//	Type        → ( "[]" | "[" Type "]" )? "?"? IDENT
//	Block       → "{" Statement* "}"
//
// Statements are separated by newlines or semicolons. See package parser
// for the expression grammar.
//
// # Example
//
//	Print<native>(message: string): void
//	ToString<native>(character: string): string
//
//	greeting := "hello"
//
//	Main(): void = {
//	  Print(greeting)
//	  if (1 + 2 = 3) { Print(ToString("!")) }
//	}
//
// A program runs by calling its top-level Main function. Native functions
// are declared in source with the <native> specifier and implemented by
// the bridge in package native.
package lang
