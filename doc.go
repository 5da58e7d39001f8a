/* Package main implements the Language: a small, higher-order,
dynamically-typed, eagerly-evaluated, expression-oriented scripting
language.

A program is a single source file containing a sequence of statements.
Every expression denotes a value: integers, booleans, strings, 2-tuples,
and closures. There is no mutation of existing data, no module system,
and no I/O beyond a single `print` sink -- the closest thing to a side
effect is printing and assigning to an already-bound name.

The language has exactly one unusual but deliberate optimization baked
into its evaluator: a per-function memoization cache for functions proven,
by a cheap static scan performed once at definition time, to be pure and
integer-only. Calling such a function with the same arguments a second
time is an O(1) table lookup rather than a re-evaluation of its body.
Printing from inside a call disables memoization for the whole active
call chain, since observable output makes memoizing unsound.

The lexer, parser, and evaluator are one pass: source text is tokenized
once into a flat array, and a single cursor walks that array both to
parse and to evaluate -- there is no separate AST construction or
tree-walking step. An `if`'s branch boundaries are cached on its own
token the first time it executes, so a hot loop built from recursive
calls around `if` re-dispatches without re-scanning skipped branches.

See eval.go for the evaluator entry points, closure.go for function
values and the memoization cache's eligibility scan, frame.go for the
call-stack/scoping model, and cache.go for the memoization table itself.
*/
package main
