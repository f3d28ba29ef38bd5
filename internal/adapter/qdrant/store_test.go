package qdrant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "user_alice_documents", CollectionName("alice"))
	assert.Equal(t, "user_5f2b_documents", CollectionName("5f2b"))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc not found", status.Error(codes.NotFound, "collection missing"), true},
		{"plain not found", errors.New("Collection `user_x_documents` not found"), true},
		{"doesn't exist", errors.New("collection doesn't exist"), true},
		{"does not exist", errors.New("collection does not exist"), true},
		{"unrelated grpc code", status.Error(codes.Unavailable, "connection refused"), false},
		{"unrelated message", errors.New("timeout waiting for response"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, isAlreadyExists(status.Error(codes.AlreadyExists, "collection exists")))
	assert.True(t, isAlreadyExists(errors.New("Collection `user_x_documents` already exists!")))
	assert.False(t, isAlreadyExists(status.Error(codes.Internal, "storage failure")))
	assert.False(t, isAlreadyExists(errors.New("dial tcp: connection refused")))
}
