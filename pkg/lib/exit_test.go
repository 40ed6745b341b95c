package lib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{ code int }

func (e codedErr) Error() string { return "coded" }
func (e codedErr) ExitCode() int { return e.code }

func TestCode(t *testing.T) {
	assert.Equal(t, 1, Code(errors.New("plain")))
	assert.Equal(t, 2, Code(codedErr{code: 2}))
	assert.Equal(t, 3, Code(fmt.Errorf("wrapped: %w", codedErr{code: 3})))
}
