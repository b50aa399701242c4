package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsesSudo(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"sudo route add -net 10.164.0.0/16 -interface en0", true},
		{"echo hi && sudo ls", true},
		{"(sudo whoami)", true},
		{"pseudo ls", false},
		{"sudoedit /etc/hosts", false},
		{"echo sudo", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, usesSudo(tt.command), tt.command)
	}
}

func TestWithSudoStdin(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"sudo route add x", "sudo -S route add x"},
		{"sudo -S route add x", "sudo -S route add x"},
		{"true; sudo  ls && sudo pwd", "true; sudo -S ls && sudo -S pwd"},
		{"pseudo ls", "pseudo ls"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withSudoStdin(tt.command), tt.command)
	}
}

func TestRedact(t *testing.T) {
	creds := Credentials{SudoPassword: "hunter2", SSHPassphrase: "hunter2-long"}

	assert.Equal(t, "a **** b ****", Redact("a hunter2 b hunter2-long", creds))
	assert.Equal(t, "nothing here", Redact("nothing here", Credentials{}))
}
