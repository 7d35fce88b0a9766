package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"a", "b"}, "b"))
	assert.False(t, ContainsString([]string{"a", "b"}, "c"))
	assert.False(t, ContainsString(nil, "a"))
}

func TestContainsObjectID(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	assert.True(t, ContainsObjectID([]primitive.ObjectID{a, b}, a))
	assert.False(t, ContainsObjectID([]primitive.ObjectID{a}, b))
}

func TestRemoveObjectID(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	out := RemoveObjectID([]primitive.ObjectID{a, b, a, c}, a)
	assert.Equal(t, []primitive.ObjectID{b, c}, out)

	assert.Empty(t, RemoveObjectID([]primitive.ObjectID{a}, a))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, 3, Min(3, 3))
}
