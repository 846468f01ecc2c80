package validation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dshills/goeta/pkg/validation"
)

func TestIsValidIdentifierChar(t *testing.T) {
	tests := []struct {
		name string
		ch   rune
		want bool
	}{
		{"lowercase letter", 'a', true},
		{"uppercase letter", 'Z', true},
		{"digit", '7', true},
		{"hyphen", '-', true},
		{"underscore", '_', true},
		{"space", ' ', false},
		{"dot", '.', false},
		{"slash", '/', false},
		{"colon", ':', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.IsValidIdentifierChar(tt.ch))
		})
	}
}

func TestValidateIdentifierAcceptsTriggerAndSnapshotIDs(t *testing.T) {
	assert.NoError(t, validation.ValidateIdentifier("overheat-alarm"))
	assert.NoError(t, validation.ValidateIdentifier("quest_0"))
	assert.NoError(t, validation.ValidateIdentifier(uuid.NewString()))
}

func TestValidateIdentifierRejectsEmpty(t *testing.T) {
	assert.Error(t, validation.ValidateIdentifier(""))
}

func TestValidateIdentifierRejectsPathLikeID(t *testing.T) {
	assert.Error(t, validation.ValidateIdentifier("../escape"))
}

func TestValidateIdentifierRejectsWhitespace(t *testing.T) {
	assert.Error(t, validation.ValidateIdentifier("first spike"))
}
