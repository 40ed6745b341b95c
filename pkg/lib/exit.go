package lib

import (
	"errors"
	"fmt"
	"os"
)

// Exit prints the error and exits the program with the status chosen by Code.
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(Code(err))
}

// Code returns the exit status for err: the value of its ExitCode method when
// any error in the chain has one, 1 otherwise.
func Code(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}
