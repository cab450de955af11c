package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	in := "# Advanced parameters of [media]\nvfs objects = fruit\n  # indented comment\nfruit:aapl = yes\n"
	assert.Equal(t, "vfs objects = fruit\nfruit:aapl = yes\n", StripComments(in))
}

func TestEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", Editor())

	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, "code --wait", Editor())

	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	assert.Equal(t, "vi", Editor())
}
