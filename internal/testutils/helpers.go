package testutils

import (
	"testing"

	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/stretchr/testify/require"
)

// HumanoidRig is a small character whose armature sits under two levels of
// scene scaffolding, each with an unrelated skinned sibling.
const HumanoidRig = `
root:
  name: Robot
  children:
    - name: Body
      skinned: true
    - name: Armature
      children:
        - name: Helper
          skinned: true
        - name: RootBone
          skinned: true
          children:
            - name: Hips
              role: Hips
              skinned: true
              position: [0, 1, 0]
              children:
                - name: Spine
                  role: Spine
                  skinned: true
                  position: [0, 0.1, 0]
                  children:
                    - name: SpineTwist
                      skinned: true
                      position: [0, 0.1, 0]
                      rotation: [0, 10, 0]
                      children:
                        - name: Chest
                          role: Chest
                          skinned: true
                          position: [0, 0.2, 0]
                          children:
                            - name: LeftHand
                              role: LeftHand
                              skinned: true
                              position: [0.5, 0, 0]
                              children:
                                - name: LeftIndexProximal
                                  role: LeftIndexProximal
                                  skinned: true
                                  position: [0.1, 0, 0]
                                  children:
                                    - name: LeftIndexIntermediate
                                      skinned: true
                                      position: [0.03, 0, 0]
                            - name: Head
                              role: Head
                              skinned: true
                              position: [0, 0.3, 0]
                              children:
                                - name: Hair
                                  skinned: true
                                  position: [0, 0.1, 0]
                - name: LeftUpperLeg
                  role: LeftUpperLeg
                  skinned: true
                  position: [0.1, -0.1, 0]
                  rotation: [0, 0, 5]
            - name: PropAnchor
              skinned: true
`

// MinimalRig is the four-bone character {Hips, Spine, LeftHand, LeftIndexProximal}.
const MinimalRig = `
root:
  name: Minimal
  children:
    - name: Hips
      role: Hips
      skinned: true
      position: [0, 1, 0]
      children:
        - name: Spine
          role: Spine
          skinned: true
          position: [0, 0.2, 0]
          children:
            - name: LeftHand
              role: LeftHand
              skinned: true
              position: [0.4, 0.3, 0]
              children:
                - name: LeftIndexProximal
                  role: LeftIndexProximal
                  skinned: true
                  position: [0.1, 0, 0]
`

// Humanoid builds a fresh instance of HumanoidRig.
func Humanoid(t testing.TB) *memory.Avatar {
	t.Helper()
	av, err := memory.ParseRig([]byte(HumanoidRig))
	require.NoError(t, err, "Failed to parse humanoid rig")
	return av
}

// Minimal builds a fresh instance of MinimalRig.
func Minimal(t testing.TB) *memory.Avatar {
	t.Helper()
	av, err := memory.ParseRig([]byte(MinimalRig))
	require.NoError(t, err, "Failed to parse minimal rig")
	return av
}
