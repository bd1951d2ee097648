package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ballsym/extension/pkg/extension"
)

// maxLineSize bounds one command line; tick packets are a few hundred bytes.
const maxLineSize = 1 << 20

// serve answers one "command|arg|arg" line with one reply line until the
// input ends or a quit command arrives.
func serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if _, err := fmt.Fprintln(w, extension.Call(line)); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
		// replies are read line by line by the host
		if err := w.Flush(); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}
