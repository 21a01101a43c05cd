package ports

import "context"

// Prompter asks the user to confirm an operation.
type Prompter interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, title, message string) (bool, error)

// Confirm calls f.
func (f PrompterFunc) Confirm(ctx context.Context, title, message string) (bool, error) {
	return f(ctx, title, message)
}
