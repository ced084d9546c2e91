package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "plain prompt untouched", prompt: "Quarterly review for the board", want: "Quarterly review for the board"},
		{name: "title marker renamed", prompt: "Title: My deck", want: "Section: My deck"},
		{name: "markers renamed case-insensitively", prompt: "STYLE: data\ndata: chart", want: "Type: data\nInfo: chart"},
		{name: "markers only at line start", prompt: "Use a Title: heading", want: "Use a Title: heading"},
		{name: "bullets stripped", prompt: "• one\n- two\n* three", want: "one\ntwo\nthree"},
		{name: "outer whitespace trimmed", prompt: "  \n hello \n ", want: "hello"},
		{name: "only markers left empty", prompt: "• ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePrompt(tt.prompt))
		})
	}
}

func TestSystemInstruction(t *testing.T) {
	assert.Contains(t, SystemInstruction, "Start with 'Title: [Slide Title]'")
	assert.Contains(t, SystemInstruction, "Data: [type]")
	assert.Contains(t, SystemInstruction, "Title: Market Overview\nStyle: data\nData: chart")
}
