package client

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Attachments keeps photo blobs next to their inspection until the upload
// task replaces them with a server URL. Deleting an inspection drops its
// photos and their queued uploads with it.
type Attachments struct {
	store Store
}

func NewAttachments(store Store) *Attachments {
	return &Attachments{store: store}
}

var allowedPhotoExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Save stores the photo bytes and enqueues an upload task in the same
// transaction.
func (a *Attachments) Save(inspectionLocalID int64, ncKey, filename string, data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("photo %s is empty", filename)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExt[ext] {
		return nil, fmt.Errorf("unsupported photo type %q", ext)
	}

	if _, err := a.store.GetInspection(inspectionLocalID); err != nil {
		return nil, err
	}

	photo := &Photo{
		InspectionLocalID: inspectionLocalID,
		NonConformityKey:  ncKey,
		Data:              data,
		CreatedAt:         time.Now(),
	}

	task, err := NewTask(KindUploadPhoto, PhotoPayload{
		InspectionLocalID: inspectionLocalID,
		NonConformityKey:  ncKey,
	}, 0)
	if err != nil {
		return nil, err
	}

	return a.store.SavePhoto(photo, task)
}

func (a *Attachments) Get(localID int64) (*Photo, error) {
	return a.store.GetPhoto(localID)
}

func (a *Attachments) ForInspection(inspectionLocalID int64) ([]*Photo, error) {
	return a.store.PhotosForInspection(inspectionLocalID)
}

func (a *Attachments) Delete(localID int64) error {
	return a.store.DeletePhoto(localID)
}
