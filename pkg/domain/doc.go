/*
Package domain contains the core models of the Avatar Configuration Tool.

It defines the humanoid skeleton, its bones and their geometry snapshots, and
the tree-shaped undo/redo history recorded while a character is posed. The
package is kept free of I/O: the host scene graph is reached only through the
SceneNode interface, and persistence lives in the codec and adapters packages.

# Key Entities

  - AvatarTransform: a value snapshot of a node's world/local position, rotation and scale.
  - Bone: a skeleton node holding original, dynamic, current and previous geometry.
  - Skeleton: an arena of Bones keyed by model name, rooted at the hip bone.
  - History / MoveCmd: undo and redo stacks of whole-tree geometry snapshots.
  - Pose: a flat list of bone geometries that can be saved and re-applied.
  - Project: the persisted pair of skeletons (scene and avatar contexts).
*/
package domain
