package properties

import (
	"fmt"
	"reflect"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// AssetDescriptor identifies the element a view or iterator was reached from.
type AssetDescriptor struct {
	GUID        string `json:"guid"`
	TypeName    string `json:"typeName"`
	DisplayName string `json:"displayName,omitempty"`
}

// DescribeAsset builds a descriptor for an asset. A nil asset gives the zero
// descriptor.
func DescribeAsset(a *beans.Asset) AssetDescriptor {
	if a == nil {
		return AssetDescriptor{}
	}
	return AssetDescriptor{GUID: a.GUID, TypeName: a.TypeName, DisplayName: a.DisplayName}
}

// Describe builds a descriptor from any element header.
func Describe(h beans.ElementHeader) AssetDescriptor {
	return AssetDescriptor{GUID: h.GUID, TypeName: h.TypeName}
}

// IsZero reports whether the descriptor identifies nothing.
func (d AssetDescriptor) IsZero() bool {
	return d.GUID == "" && d.TypeName == ""
}

func (d AssetDescriptor) String() string {
	if d.DisplayName != "" {
		return fmt.Sprintf("%s %s (%s)", d.TypeName, d.GUID, d.DisplayName)
	}
	return fmt.Sprintf("%s %s", d.TypeName, d.GUID)
}

// View is a read-only view of a bean. T is a bean pointer type such as
// *beans.Certification.
type View[T beans.Element[T]] struct {
	bean   T
	parent AssetDescriptor
}

// NewView copies bean into a new view. The parent may be the zero descriptor for
// top-level elements such as the asset itself.
func NewView[T beans.Element[T]](bean T, parent AssetDescriptor) (View[T], error) {
	var zero T
	if any(bean) == any(zero) {
		return View[T]{}, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "bean is required").
			WithDetail("parent_guid", parent.GUID)
	}
	return View[T]{bean: bean.Clone(), parent: parent}, nil
}

// NewConnectionView is NewView for connections with the secured properties
// removed.
func NewConnectionView(conn *beans.Connection, parent AssetDescriptor) (View[*beans.Connection], error) {
	return NewView(conn.Redacted(), parent)
}

// Valid reports whether the view wraps a bean.
func (v View[T]) Valid() bool {
	var zero T
	return any(v.bean) != any(zero)
}

// Bean returns a copy of the wrapped bean.
func (v View[T]) Bean() T {
	if !v.Valid() {
		return v.bean
	}
	return v.bean.Clone()
}

// Header returns a copy of the element header.
func (v View[T]) Header() beans.ElementHeader {
	if !v.Valid() {
		return beans.ElementHeader{}
	}
	return v.bean.Header()
}

func (v View[T]) GUID() string {
	return v.Header().GUID
}

func (v View[T]) TypeName() string {
	return v.Header().TypeName
}

// Parent describes the element the view was reached from.
func (v View[T]) Parent() AssetDescriptor {
	return v.parent
}

// Equal reports whether both views wrap equal beans reached from the same parent.
func (v View[T]) Equal(other View[T]) bool {
	return v.parent == other.parent && reflect.DeepEqual(v.bean, other.bean)
}

func (v View[T]) String() string {
	if !v.Valid() {
		return "<empty>"
	}
	h := v.bean.Header()
	if v.parent.IsZero() {
		return fmt.Sprintf("%s %s", h.TypeName, h.GUID)
	}
	return fmt.Sprintf("%s %s of %s", h.TypeName, h.GUID, v.parent)
}
