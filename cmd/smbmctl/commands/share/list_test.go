package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareListRows(t *testing.T) {
	list := ShareList{
		{Name: "media", Params: map[string]string{"path": "/srv/media", "read-only": "no", "valid-users": "@staff, alice"}},
		{Name: "empty"},
	}

	rows := list.Rows()
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(list.Headers()))
	assert.Equal(t, []string{"media", "/srv/media", "no", "-", "@staff, alice", "3"}, rows[0])
	assert.Equal(t, []string{"empty", "-", "-", "-", "-", "0"}, rows[1])
}

func TestDeleteCommandFlags(t *testing.T) {
	assert.Equal(t, "delete <name>", deleteCmd.Use)
	assert.NotNil(t, deleteCmd.Flags().ShorthandLookup("f"))
}
