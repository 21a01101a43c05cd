package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/act/pkg/ports"
)

// newPrompter asks on out and reads the answer from in. With assumeYes every
// question is accepted; without an interactive input every one is refused.
func newPrompter(in io.Reader, out io.Writer, assumeYes, interactive bool) ports.Prompter {
	reader := bufio.NewReader(in)
	return ports.PrompterFunc(func(ctx context.Context, title, message string) (bool, error) {
		if assumeYes {
			return true, nil
		}
		if !interactive {
			return false, nil
		}
		fmt.Fprintf(out, "%s\n%s [y/N] ", title, message)
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
