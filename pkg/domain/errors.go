package domain

import "errors"

// ErrNotHumanoid is returned when a source object is not a fully rigged humanoid.
var ErrNotHumanoid = errors.New("source is not a rigged humanoid")

// ErrNodeUnbound is returned when a bone has no live scene node to act upon.
var ErrNodeUnbound = errors.New("bone is not bound to a live scene node")

// ErrDocumentNotFound is returned when a key cannot be found in a document store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidDocument is returned when a stored document cannot be decoded.
var ErrInvalidDocument = errors.New("invalid document")

// ErrModelMismatch is returned when a document targets a different source model.
var ErrModelMismatch = errors.New("document was created for a different model")

// ErrCanceled is returned when the user declines a confirmation.
var ErrCanceled = errors.New("operation canceled by user")

// ErrNoSkeleton is returned when an operation needs a configured skeleton.
var ErrNoSkeleton = errors.New("no skeleton configured for the active context")

// ErrNoProject is returned when an operation needs an open project.
var ErrNoProject = errors.New("no project open")

// ErrNoProjectPath is returned by SaveProject before a path was chosen.
var ErrNoProjectPath = errors.New("project has no path, save it under a name first")
