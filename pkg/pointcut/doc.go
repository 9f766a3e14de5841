/*
Package pointcut decides which rules apply to a target.

Two kinds of pointcut are supported:

  - Structural: a dotted name pattern. "*" matches exactly one segment (and may
    be combined with literal text, "Create*"), ".." matches zero or more
    segments. "service..*" selects every method of every type below service.
  - Tag: the target declares a given label, e.g. "logged".

Expressions borrow the familiar pointcut designators:

	execution(* service..*(..))   structural, on the full qualified name
	within(controller..*)         structural, on the owner path only
	@annotation(logged)           tag
	@logged                       tag, short form
	service.UserService.*         bare pattern, same as execution

Return types and parameter lists inside execution() are accepted and ignored.
*/
package pointcut
