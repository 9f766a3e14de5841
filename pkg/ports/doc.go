/*
Package ports defines the driven ports (interfaces) of the weft engine.

These interfaces decouple the dispatcher from the collaborators it reports to
or is driven by, allowing the engine to work with any logging, metrics or
streaming backend.

# Key Interfaces

  - EventSink: Receives one Event per phase execution (logs, metrics, streams).
  - Invoker: The dispatch boundary. Anything holding an Invoker can only reach
    targets through interception.
*/
package ports
