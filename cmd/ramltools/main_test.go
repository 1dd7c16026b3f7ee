package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExitCodes(t *testing.T) {
	testdata := filepath.Join("..", "..", "testdata")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"version"}, 0},
		{"valid document", []string{"validate", "-q", filepath.Join(testdata, "widgets.raml")}, 0},
		{"findings", []string{"validate", "-q", filepath.Join(testdata, "invalid", "findings.raml")}, 1},
		{"unknown command", []string{"valiate"}, 1},
		{"missing argument", []string{"validate"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
}
