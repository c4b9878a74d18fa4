package beans

// KeyPattern describes how an external identifier is managed.
type KeyPattern string

const (
	KeyPatternLocal     KeyPattern = "LOCAL_KEY"
	KeyPatternRecycled  KeyPattern = "RECYCLED_KEY"
	KeyPatternNatural   KeyPattern = "NATURAL_KEY"
	KeyPatternMirror    KeyPattern = "MIRROR_KEY"
	KeyPatternAggregate KeyPattern = "AGGREGATE_KEY"
	KeyPatternCallers   KeyPattern = "CALLERS_KEY"
	KeyPatternStable    KeyPattern = "STABLE_KEY"
	KeyPatternOther     KeyPattern = "OTHER"
)

// ExternalIdentifier is the identifier an external system uses for an asset.
type ExternalIdentifier struct {
	ElementHeader
	Identifier       string     `json:"identifier"`
	Description      string     `json:"description,omitempty"`
	Usage            string     `json:"usage,omitempty"`
	Source           string     `json:"source,omitempty"`
	KeyPattern       KeyPattern `json:"keyPattern,omitempty"`
	ScopeGUID        string     `json:"scopeGUID,omitempty"`
	ScopeDescription string     `json:"scopeDescription,omitempty"`
}

// Clone returns a deep copy of the identifier.
func (e *ExternalIdentifier) Clone() *ExternalIdentifier {
	if e == nil {
		return nil
	}
	out := *e
	out.ElementHeader = e.ElementHeader.Header()
	return &out
}

// ExternalReference links an asset to a resource outside the metadata repository.
type ExternalReference struct {
	ElementHeader
	ReferenceID      string `json:"referenceId"`
	LinkDescription  string `json:"linkDescription,omitempty"`
	DisplayName      string `json:"displayName,omitempty"`
	URI              string `json:"uri"`
	Description      string `json:"description,omitempty"`
	ReferenceVersion string `json:"referenceVersion,omitempty"`
	Organization     string `json:"organization,omitempty"`
}

// Clone returns a deep copy of the reference.
func (e *ExternalReference) Clone() *ExternalReference {
	if e == nil {
		return nil
	}
	out := *e
	out.ElementHeader = e.ElementHeader.Header()
	return &out
}

// MediaType is the kind of media a related media reference points at.
type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeAudio    MediaType = "AUDIO"
	MediaTypeDocument MediaType = "DOCUMENT"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeOther    MediaType = "OTHER"
)

// RelatedMediaReference links an asset to an image, video or document about it.
type RelatedMediaReference struct {
	ElementHeader
	MediaID          string    `json:"mediaId"`
	LinkDescription  string    `json:"linkDescription,omitempty"`
	DisplayName      string    `json:"displayName,omitempty"`
	URI              string    `json:"uri"`
	Description      string    `json:"description,omitempty"`
	ReferenceVersion string    `json:"referenceVersion,omitempty"`
	Organization     string    `json:"organization,omitempty"`
	MediaUsage       []string  `json:"mediaUsage,omitempty"`
	MediaType        MediaType `json:"mediaType,omitempty"`
}

// Clone returns a deep copy of the media reference.
func (r *RelatedMediaReference) Clone() *RelatedMediaReference {
	if r == nil {
		return nil
	}
	out := *r
	out.ElementHeader = r.ElementHeader.Header()
	out.MediaUsage = cloneStrings(r.MediaUsage)
	return &out
}
