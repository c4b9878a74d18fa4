package beans

import "time"

// Element is implemented by every bean pointer type.
type Element[T any] interface {
	Clone() T
	Header() ElementHeader
}

// ElementHeader is the part common to every metadata element.
type ElementHeader struct {
	GUID            string           `json:"guid"`
	TypeName        string           `json:"typeName"`
	Version         int64            `json:"version,omitempty"`
	CreatedBy       string           `json:"createdBy,omitempty"`
	UpdatedBy       string           `json:"updatedBy,omitempty"`
	CreateTime      time.Time        `json:"createTime,omitempty"`
	UpdateTime      time.Time        `json:"updateTime,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
}

// Classification is a named set of properties attached to an element.
type Classification struct {
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Header returns a copy of the header.
func (h ElementHeader) Header() ElementHeader {
	h.Classifications = cloneClassifications(h.Classifications)
	return h
}

// Classification looks up a classification by name.
func (h ElementHeader) Classification(name string) (Classification, bool) {
	for _, c := range h.Classifications {
		if c.Name == name {
			return Classification{Name: c.Name, Properties: cloneAnyMap(c.Properties)}, true
		}
	}
	return Classification{}, false
}

func cloneClassifications(in []Classification) []Classification {
	if in == nil {
		return nil
	}
	out := make([]Classification, len(in))
	for i, c := range in {
		out[i] = Classification{Name: c.Name, Properties: cloneAnyMap(c.Properties)}
	}
	return out
}
