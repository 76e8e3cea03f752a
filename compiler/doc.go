/*

Process of compilation

Program Text ->
	lex ->
Tokens ->
	parse, evaluate types ->
Abstract Syntax Tree (ast) ->
	back ->
LLVM IR Module ->
	target (llc or clang) ->
Binary Object (output.o) ->
	link (not ours) ->
Binary Executable

*/
package compiler
