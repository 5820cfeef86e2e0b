//go:build windows

package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionState(t *testing.T) {
	assert.Equal(t, uint32(0x80000003), executionState(DirectiveFlags(true)))
	assert.Equal(t, uint32(0x80000000), executionState(DirectiveFlags(false)))
}
