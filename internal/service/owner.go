package service

import (
	"errors"
	"fmt"
)

// Owner kinds a gallery can belong to.
const (
	OwnerKindProject = "project"
	OwnerKindPost    = "post"
)

var ErrOwnerKindInvalid = errors.New("owner kind is invalid")

// OwnerRef identifies the entity a gallery belongs to. ID zero denotes a
// draft still being composed, whose entries cannot be persisted yet.
type OwnerRef struct {
	Kind string
	ID   uint
}

// ParseOwner validates a kind/id pair coming from a request.
func ParseOwner(kind string, id uint) (OwnerRef, error) {
	if kind != OwnerKindProject && kind != OwnerKindPost {
		return OwnerRef{}, ErrOwnerKindInvalid
	}
	return OwnerRef{Kind: kind, ID: id}, nil
}

// Draft reports whether the owner has not been created yet.
func (o OwnerRef) Draft() bool {
	return o.ID == 0
}

// Key is the stable identifier used for mirror keys and the session ledger.
func (o OwnerRef) Key() string {
	if o.Draft() {
		return o.Kind + ":new"
	}
	return fmt.Sprintf("%s:%d", o.Kind, o.ID)
}
