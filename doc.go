/*
Package act is the core of an avatar configuration tool: it classifies a
character's scene graph into a humanoid skeleton, records how the user
poses it as an undoable history, and stores projects and poses.

# Concept

The host owns the scene graph and calls the Editor. An Editor holds one
project with two skeletons of the same model: the scene skeleton, posed in
the world, and the avatar skeleton, posed in isolation. Exactly one is active
and bound to live nodes at a time.

Each frame the host calls Tick. Changes are sampled at a fixed interval and
committed as one history step once the skeleton has been still for the
quiescence window, so a drag becomes a single Undo.

# Usage

	av, err := memory.LoadRigFile("robot.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ed := act.New(act.WithRepository(persistence.NewRepository(file.New(".act"))))
	if err := ed.Configure(ctx, domain.ContextScene, av); err != nil {
		log.Fatal(err)
	}

	for range ticker.C {
		ed.Tick(time.Now())
	}

Stores, the scene graph and user confirmation are reached through the
interfaces in pkg/ports, so the same Editor runs behind the CLI in cmd/act,
the HTTP adapter and tests.
*/
package act
