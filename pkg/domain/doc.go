/*
Package domain contains the shared vocabulary of the Tale runtime.

It defines the error taxonomy raised while building and telling stories, and the
lifecycle events that a telling emits for observability. The package has no
dependencies on the runtime itself so that adapters (metrics, tracing, loaders)
can depend on it without importing the engine.

# Errors

  - DuplicateTypeError: a node type name was registered twice.
  - InvalidNodeError: a literal could not be coerced into a node definition.
  - UnknownStateError: a Switch selected a state with no task and no wildcard.
  - ActivationMisuseError: an API needing a current instance ran outside a callback.
  - LifecycleError: a lifecycle callback returned an error or panicked.

# Events

LifecycleHooks receive TellingEvent and InstanceEvent values. MergeHooks combines
several hook sets so logging, tracing and metrics can observe the same telling.
*/
package domain
