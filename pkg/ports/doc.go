/*
Package ports defines the driven ports (interfaces) of the avatar configuration core.

These interfaces decouple the skeleton model from the host scene graph, the
storage backend and the user-facing prompts.

# Key Interfaces

  - Avatar: the narrow query view of a rigged character in the host scene.
  - DocumentStore: persists opaque encoded project and pose documents.
  - DistributedLocker: coordinates document access across processes.
  - Prompter: asks the user to confirm a risky operation.
*/
package ports
