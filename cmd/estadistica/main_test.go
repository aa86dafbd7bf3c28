package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"estadistica/internal/terminal"
)

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	code := terminal.NewCLI(terminal.Options{Output: &out}).Execute(context.Background(), []string{"--help"})

	assert.Equal(t, terminal.ExitOK, code)
	for _, sub := range []string{"generate", "columns", "values", "serve"} {
		assert.Contains(t, out.String(), sub)
	}
}
