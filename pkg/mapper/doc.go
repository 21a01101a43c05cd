/*
Package mapper classifies a host scene graph into a humanoid Skeleton.

A Mapper builds a skeleton once, when a project is configured, and keeps it
usable afterwards:

  - Build classifies the skinned and humanoid nodes of an avatar into a bone tree.
  - Rebind re-resolves node handles by name after the active context changed.
  - LoadFromPersisted restores a decoded skeleton against a live avatar.
  - LoadInactive restores a decoded skeleton that has no live avatar yet.
  - StitchCurrentPose joins the live pose onto a restored undo stack.

Classification never fails hard once the avatar is known to be a humanoid:
anomalies are logged and the affected bones degrade individually.
*/
package mapper
