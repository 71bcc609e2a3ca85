package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewDocumentService(newFakeDocumentRepo())

	doc, err := svc.Create(ctx, "u1", "  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Title)

	content := "first draft"
	saved, err := svc.Update(ctx, "u1", doc.ID, nil, &content)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", saved.Title)
	assert.Equal(t, "first draft", saved.Content)

	_, err = svc.Get(ctx, "u2", doc.ID)
	assert.Equal(t, "NOT_FOUND", errorCode(err))
	_, err = svc.Update(ctx, "u2", doc.ID, nil, &content)
	assert.Equal(t, "NOT_FOUND", errorCode(err))

	docs, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	assert.Equal(t, "NOT_FOUND", errorCode(svc.Delete(ctx, "u2", doc.ID)))
	require.NoError(t, svc.Delete(ctx, "u1", doc.ID))
	docs, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
