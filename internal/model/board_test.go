package model_test

import (
	"testing"

	"boards/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBoard_IsOwnedBy(t *testing.T) {
	board := &model.Board{Author: "alice"}

	assert.True(t, board.IsOwnedBy("alice"))
	assert.False(t, board.IsOwnedBy("bob"))
	assert.False(t, board.IsOwnedBy(""))
}

func TestBoard_HasImage(t *testing.T) {
	empty := ""
	name := "1/photo.png"

	assert.False(t, (&model.Board{}).HasImage())
	assert.False(t, (&model.Board{ImageName: &empty}).HasImage())
	assert.True(t, (&model.Board{ImageName: &name}).HasImage())
}
