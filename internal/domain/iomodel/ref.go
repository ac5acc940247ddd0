package iomodel

import "fmt"

type RefKind int

const (
	KindPermanent RefKind = iota
	KindWorkspace
)

// ModelRef addresses either a permanent model or a workspace. Only the HTTP
// boundary encodes it as a signed integer.
type ModelRef struct {
	Kind RefKind
	ID   uint
}

func Permanent(id uint) ModelRef    { return ModelRef{Kind: KindPermanent, ID: id} }
func WorkspaceRef(id uint) ModelRef { return ModelRef{Kind: KindWorkspace, ID: id} }

// ParseModelRef decodes an external id: >= 0 is permanent, < 0 a workspace.
func ParseModelRef(external int64) ModelRef {
	if external < 0 {
		return WorkspaceRef(uint(-external))
	}
	return Permanent(uint(external))
}

func (r ModelRef) Encode() int64 {
	if r.Kind == KindWorkspace {
		return -int64(r.ID)
	}
	return int64(r.ID)
}

func (r ModelRef) IsWorkspace() bool { return r.Kind == KindWorkspace }

func (r ModelRef) String() string {
	if r.IsWorkspace() {
		return fmt.Sprintf("workspace:%d", r.ID)
	}
	return fmt.Sprintf("model:%d", r.ID)
}
