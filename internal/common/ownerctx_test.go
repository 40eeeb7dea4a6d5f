package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOwnerID(t *testing.T) {
	assert.Equal(t, "default", ResolveOwnerID(context.Background()))

	ctx := WithOwnerContext(context.Background(), &OwnerContext{OwnerID: "alice", Email: "alice@example.com"})
	assert.Equal(t, "alice", ResolveOwnerID(ctx))

	// Empty OwnerID falls back to default
	ctx = WithOwnerContext(context.Background(), &OwnerContext{})
	assert.Equal(t, "default", ResolveOwnerID(ctx))
}

func TestOwnerContextFromContext(t *testing.T) {
	assert.Nil(t, OwnerContextFromContext(context.Background()))

	oc := &OwnerContext{OwnerID: "bob"}
	ctx := WithOwnerContext(context.Background(), oc)
	got := OwnerContextFromContext(ctx)
	assert.Same(t, oc, got)
}
