package service

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/groundworkcms/internal/mirror"
	"github.com/groundworkcms/internal/storage"
)

// ManagerRegistry hands out one GalleryManager per owner. Construction
// always rehydrates from the mirror, so a manager recreated after a
// restart or remount picks up its pending state.
type ManagerRegistry struct {
	managers cmap.ConcurrentMap[string, *GalleryManager]
	gallery  galleryPersister
	objects  storage.ObjectStorage
	mirror   mirror.Store
}

// NewManagerRegistry wires the registry to its collaborators.
func NewManagerRegistry(gallery galleryPersister, objects storage.ObjectStorage, m mirror.Store) *ManagerRegistry {
	return &ManagerRegistry{
		managers: cmap.New[*GalleryManager](),
		gallery:  gallery,
		objects:  objects,
		mirror:   m,
	}
}

// For returns the owner's manager, creating it on first use.
func (r *ManagerRegistry) For(owner OwnerRef) *GalleryManager {
	return r.managers.Upsert(owner.Key(), nil,
		func(exists bool, current, _ *GalleryManager) *GalleryManager {
			if exists {
				return current
			}
			return NewGalleryManager(owner, r.gallery, r.objects, r.mirror)
		})
}

// Release shuts the owner's manager down, reclaiming uncommitted sessions.
// The unmount path.
func (r *ManagerRegistry) Release(owner OwnerRef) {
	if manager, ok := r.managers.Pop(owner.Key()); ok {
		manager.Shutdown()
	}
}

// AdoptDraft moves the draft mirror state for kind under the id of the
// freshly created owner, so a subsequent save persists the deferred
// entries. The draft manager is dropped without cleanup: its sessions were
// committed by the deferred save.
func (r *ManagerRegistry) AdoptDraft(kind string, id uint) error {
	draft := OwnerRef{Kind: kind}
	created := OwnerRef{Kind: kind, ID: id}

	raw, ok, err := r.mirror.Get(pendingKey(draft))
	if err != nil {
		return err
	}
	if ok && raw != "" {
		if err := r.mirror.Set(pendingKey(created), raw); err != nil {
			return err
		}
		if err := r.mirror.Remove(pendingKey(draft)); err != nil {
			return err
		}
	}

	r.managers.Remove(draft.Key())
	return nil
}
