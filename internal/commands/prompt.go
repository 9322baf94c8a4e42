package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// readLine reads a single trimmed line from in.
func readLine(in io.Reader) (string, error) {
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt prints a label to errOut and reads one line from in.
func prompt(in io.Reader, errOut io.Writer, label string) (string, error) {
	fmt.Fprint(errOut, label)
	return readLine(in)
}

// confirm asks a y/N question and returns true only on an explicit yes.
func confirm(in io.Reader, errOut io.Writer, question string) bool {
	answer, err := prompt(in, errOut, question+" [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
