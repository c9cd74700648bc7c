// Copyright (c) 2026 BVK Chaitanya

package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PromptSolver saves the challenge image into a file and reads the answer
// from the user.
type PromptSolver struct {
	Dir string

	In  *bufio.Reader
	Out io.Writer
}

func (p *PromptSolver) Solve(ctx context.Context, image []byte) (string, error) {
	fpath := filepath.Join(p.Dir, fmt.Sprintf("captcha_%s.jpg", uuid.NewString()))
	if err := os.WriteFile(fpath, image, 0o600); err != nil {
		return "", fmt.Errorf("could not save captcha image: %w", err)
	}
	defer os.Remove(fpath)

	fmt.Fprintf(p.Out, "Downloaded captcha image to '%s'\n", fpath)
	fmt.Fprintln(p.Out, "Please open the captcha image and enter it below.")
	fmt.Fprint(p.Out, "Captcha Code: ")

	line, err := p.In.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
