/*
Package exprengine is the expression-evaluation collaborator the update
executor and row default values run against. It parses a small infix
grammar into an AST and evaluates it against a property context:
literals, property names, arithmetic (+ - * /), comparison
(== != < <= > >=), and logical (&& ||) operators.

It exists to give the update executor's "apply updates" and "filter"
steps, and pkg/row's default-value evaluation, a real evaluator to run
against instead of a stub. It is not a general-purpose query language: no
function calls, no subqueries, no graph traversal.
*/
package exprengine
