package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldreport/internal/domain/inspection"
)

func newTestStorage(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.db")
	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage, path
}

func testForm(protocol string) inspection.Form {
	return inspection.Form{
		Protocol:  protocol,
		Date:      time.Now(),
		Address:   "Rua das Telhas 42",
		City:      "Curitiba",
		State:     "PR",
		RoofModel: "Colonial",
		Tiles: []inspection.Tile{
			{Model: "Portuguesa", Quantity: 300, Area: 120.5},
		},
		NonConformities: []inspection.NonConformity{
			{Title: "Telha trincada", Description: "Fileira superior"},
		},
	}
}

func TestSQLiteStorage_PutClientWithTask(t *testing.T) {
	storage, _ := newTestStorage(t)

	task, err := NewTask(KindCreateClient, ClientPayload{Name: "Construtora Alfa", Document: "12.345.678/0001-00"}, 0)
	require.NoError(t, err)

	saved, err := storage.PutClient(&Client{
		Name:     "Construtora Alfa",
		Document: "12.345.678/0001-00",
	}, task)
	require.NoError(t, err)
	assert.NotZero(t, saved.LocalID)
	assert.False(t, saved.Synced)

	// Запись и задача должны появиться одной транзакцией.
	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, KindCreateClient, tasks[0].Kind)
	assert.Equal(t, saved.LocalID, tasks[0].RelatedLocalID)
}

func TestSQLiteStorage_RewriteClientEnqueuesUpdateTask(t *testing.T) {
	storage, _ := newTestStorage(t)

	saved, err := storage.PutClient(&Client{Name: "Construtora Alfa", Document: "111"}, nil)
	require.NoError(t, err)
	require.NoError(t, storage.MarkClientSynced(saved.LocalID, 7))

	synced, err := storage.GetClient(saved.LocalID)
	require.NoError(t, err)

	synced.Name = "Construtora Alfa Ltda"
	task, err := NewTask(KindUpdateClient, ClientPayload{Name: synced.Name, Document: synced.Document}, synced.LocalID)
	require.NoError(t, err)

	_, err = storage.PutClient(synced, task)
	require.NoError(t, err)

	// Перезапись не трогает серверную привязку записи.
	got, err := storage.GetClient(saved.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Construtora Alfa Ltda", got.Name)
	require.NotNil(t, got.ServerID)
	assert.Equal(t, int64(7), *got.ServerID)

	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, KindUpdateClient, tasks[0].Kind)
	assert.Equal(t, saved.LocalID, tasks[0].RelatedLocalID)

	payload, err := tasks[0].ClientPayload()
	require.NoError(t, err)
	assert.Equal(t, "Construtora Alfa Ltda", payload.Name)
}

func TestSQLiteStorage_DuplicateDocument(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, err := storage.PutClient(&Client{Name: "Alfa", Document: "111"}, nil)
	require.NoError(t, err)

	_, err = storage.PutClient(&Client{Name: "Beta", Document: "111"}, nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	// Failed insert must not leave a queue entry behind.
	task, err := NewTask(KindCreateClient, ClientPayload{Name: "Beta", Document: "111"}, 0)
	require.NoError(t, err)
	_, err = storage.PutClient(&Client{Name: "Beta", Document: "111"}, task)
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := storage.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteStorage_DurabilityAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)

	task, err := NewTask(KindCreateInspection, InspectionPayload{Form: testForm("VT-2026-001")}, 0)
	require.NoError(t, err)

	saved, err := storage.PutInspection(&Inspection{Form: testForm("VT-2026-001")}, task)
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	// Повторное открытие имитирует перезапуск приложения.
	reopened, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	ins, err := reopened.GetInspection(saved.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "VT-2026-001", ins.Protocol)
	assert.Equal(t, "Curitiba", ins.Form.City)
	assert.Nil(t, ins.SyncedAt)

	tasks, err := reopened.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, KindCreateInspection, tasks[0].Kind)
}

func TestSQLiteStorage_DuplicateProtocol(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, err := storage.PutInspection(&Inspection{Form: testForm("VT-1")}, nil)
	require.NoError(t, err)

	_, err = storage.PutInspection(&Inspection{Form: testForm("VT-1")}, nil)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteStorage_MarkInspectionSyncedMonotonic(t *testing.T) {
	storage, _ := newTestStorage(t)

	saved, err := storage.PutInspection(&Inspection{Form: testForm("VT-2")}, nil)
	require.NoError(t, err)

	later := time.Now()
	earlier := later.Add(-time.Hour)

	require.NoError(t, storage.MarkInspectionSynced(saved.LocalID, later))

	ins, err := storage.GetInspection(saved.LocalID)
	require.NoError(t, err)
	require.NotNil(t, ins.SyncedAt)
	first := *ins.SyncedAt

	// Попытка отодвинуть отметку назад игнорируется.
	require.NoError(t, storage.MarkInspectionSynced(saved.LocalID, earlier))

	ins, err = storage.GetInspection(saved.LocalID)
	require.NoError(t, err)
	require.NotNil(t, ins.SyncedAt)
	assert.False(t, ins.SyncedAt.Before(first))
}

func TestSQLiteStorage_DeleteInspectionCascades(t *testing.T) {
	storage, _ := newTestStorage(t)

	insTask, err := NewTask(KindCreateInspection, InspectionPayload{Form: testForm("VT-3")}, 0)
	require.NoError(t, err)
	saved, err := storage.PutInspection(&Inspection{Form: testForm("VT-3")}, insTask)
	require.NoError(t, err)

	photoTask, err := NewTask(KindUploadPhoto, PhotoPayload{InspectionLocalID: saved.LocalID}, 0)
	require.NoError(t, err)
	photo, err := storage.SavePhoto(&Photo{
		InspectionLocalID: saved.LocalID,
		NonConformityKey:  "Telha trincada",
		Data:              []byte{0xff, 0xd8, 0xff},
	}, photoTask)
	require.NoError(t, err)

	require.NoError(t, storage.DeleteInspection(saved.LocalID))

	_, err = storage.GetInspection(saved.LocalID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.GetPhoto(photo.LocalID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Обе задачи должны исчезнуть вместе с записями.
	count, err := storage.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteStorage_SetInspectionServerID(t *testing.T) {
	storage, _ := newTestStorage(t)

	saved, err := storage.PutInspection(&Inspection{Form: testForm("VT-4")}, nil)
	require.NoError(t, err)

	require.NoError(t, storage.SetInspectionServerID(saved.LocalID, 99))

	ins, err := storage.GetInspection(saved.LocalID)
	require.NoError(t, err)
	require.NotNil(t, ins.ServerID)
	assert.Equal(t, int64(99), *ins.ServerID)
	assert.Nil(t, ins.SyncedAt, "server id alone does not mean synced")
}

func TestSQLiteStorage_PendingInspectionsOrder(t *testing.T) {
	storage, _ := newTestStorage(t)

	first, err := storage.PutInspection(&Inspection{
		Form:      testForm("VT-5"),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}, nil)
	require.NoError(t, err)

	second, err := storage.PutInspection(&Inspection{
		Form:      testForm("VT-6"),
		CreatedAt: time.Now().Add(-time.Hour),
	}, nil)
	require.NoError(t, err)

	require.NoError(t, storage.MarkInspectionSynced(second.LocalID, time.Now()))

	pending, err := storage.PendingInspections()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.LocalID, pending[0].LocalID)
}

func TestSQLiteStorage_MarkPhotoSynced(t *testing.T) {
	storage, _ := newTestStorage(t)

	saved, err := storage.PutInspection(&Inspection{Form: testForm("VT-7")}, nil)
	require.NoError(t, err)

	photo, err := storage.SavePhoto(&Photo{
		InspectionLocalID: saved.LocalID,
		NonConformityKey:  "Telha trincada",
		Data:              []byte{1, 2, 3},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, storage.MarkPhotoSynced(photo.LocalID, "https://files.example.com/abc.jpg"))

	got, err := storage.GetPhoto(photo.LocalID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, "https://files.example.com/abc.jpg", got.ServerURL)
}
