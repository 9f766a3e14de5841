/*
Package domain contains the core types of the weft interception engine.

It defines what the engine intercepts (Targets), which behaviors are woven
around them (Advice), how the two are linked (Rules) and what the engine
reports while doing so (Events). This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Target: A named unit of business logic reachable through the dispatcher.
  - Rule: A predicate selecting Targets, carrying the Advice to apply.
  - Advice: A cross-cutting behavior bound to a Phase (Before, Around, ...).
  - Invocation: The per-call record shared by all advice of one call.
  - Event: An immutable snapshot emitted at each phase boundary.
*/
package domain
