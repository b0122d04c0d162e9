package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachments_SaveEnqueuesUpload(t *testing.T) {
	store := NewMemoryStorage()
	attachments := NewAttachments(store)

	ins, err := store.PutInspection(&Inspection{Form: testForm("VT-100")}, nil)
	require.NoError(t, err)

	photo, err := attachments.Save(ins.LocalID, "Telha trincada", "IMG_0042.jpg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.NotZero(t, photo.LocalID)
	assert.False(t, photo.Synced)

	has, err := store.HasPendingTask(KindUploadPhoto, photo.LocalID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAttachments_SaveRejectsEmptyData(t *testing.T) {
	store := NewMemoryStorage()
	attachments := NewAttachments(store)

	ins, err := store.PutInspection(&Inspection{Form: testForm("VT-101")}, nil)
	require.NoError(t, err)

	_, err = attachments.Save(ins.LocalID, "Telha trincada", "IMG_0042.jpg", nil)
	assert.Error(t, err)
}

func TestAttachments_SaveRejectsUnknownExtension(t *testing.T) {
	store := NewMemoryStorage()
	attachments := NewAttachments(store)

	ins, err := store.PutInspection(&Inspection{Form: testForm("VT-102")}, nil)
	require.NoError(t, err)

	_, err = attachments.Save(ins.LocalID, "Telha trincada", "report.pdf", []byte{1})
	assert.Error(t, err)
}

func TestAttachments_SaveRequiresInspection(t *testing.T) {
	store := NewMemoryStorage()
	attachments := NewAttachments(store)

	_, err := attachments.Save(404, "Telha trincada", "IMG_0042.jpg", []byte{1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachments_DeleteRemovesQueuedUpload(t *testing.T) {
	store := NewMemoryStorage()
	attachments := NewAttachments(store)

	ins, err := store.PutInspection(&Inspection{Form: testForm("VT-103")}, nil)
	require.NoError(t, err)

	photo, err := attachments.Save(ins.LocalID, "Telha trincada", "IMG_0042.jpg", []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, attachments.Delete(photo.LocalID))

	_, err = attachments.Get(photo.LocalID)
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := store.HasPendingTask(KindUploadPhoto, photo.LocalID)
	require.NoError(t, err)
	assert.False(t, has)
}
