package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTemplate(t *testing.T) {
	ctx := Context{
		"title":  "Red Mug",
		"vendor": "Acme",
		"empty":  "",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"single placeholder", "Buy {{title}} now", "Buy Red Mug now"},
		{"multiple placeholders", "{{title}} by {{vendor}}", "Red Mug by Acme"},
		{"missing key drops", "Buy {{nope}} now", "Buy  now"},
		{"empty value substitutes", "a{{empty}}b", "ab"},
		{"whitespace around key", "{{ title }}", "Red Mug"},
		{"empty template", "", ""},
		{"unclosed braces untouched", "{{title", "{{title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemplate(tt.template, ctx))
		})
	}
}

func TestResolveTemplateNilContext(t *testing.T) {
	assert.Equal(t, "Buy  now", ResolveTemplate("Buy {{title}} now", nil))
}
