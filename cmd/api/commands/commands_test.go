package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ada", usernameFromEmail("ada@example.com"))
	assert.Equal(t, "no-at-sign", usernameFromEmail("no-at-sign"))
	assert.Len(t, usernameFromEmail(strings.Repeat("a", 80)+"@example.com"), 50)
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "scheduler "+Version)
}

func TestCalendarCommand_RejectsBadMonth(t *testing.T) {
	cmd := NewCalendarCommand()
	cmd.SetArgs([]string{"--month", "2024-13", "--plain"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "invalid date")
}

func TestUserCreate_RequiresEmailAndPassword(t *testing.T) {
	cmd := NewUserCommand()
	cmd.SetArgs([]string{"create", "--email", "ada@example.com"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.EqualError(t, cmd.Execute(), "email and password are required")
}
