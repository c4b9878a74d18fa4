package beans

// Asset is the central element: a data set, file, API or process that the other
// elements describe.
type Asset struct {
	ElementHeader
	QualifiedName        string            `json:"qualifiedName"`
	DisplayName          string            `json:"displayName,omitempty"`
	ShortDescription     string            `json:"shortDescription,omitempty"`
	Description          string            `json:"description,omitempty"`
	Owner                string            `json:"owner,omitempty"`
	OwnerType            string            `json:"ownerType,omitempty"`
	Zones                []string          `json:"zoneMembership,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
	SchemaType           *SchemaType       `json:"schemaType,omitempty"`
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	c := *a
	c.ElementHeader = a.ElementHeader.Header()
	c.Zones = cloneStrings(a.Zones)
	c.AdditionalProperties = cloneStringMap(a.AdditionalProperties)
	c.SchemaType = a.SchemaType.Clone()
	return &c
}

// SchemaType describes the structure of an asset's content. Primitive schema
// types carry a data type; complex ones own a collection of schema attributes.
type SchemaType struct {
	ElementHeader
	QualifiedName    string `json:"qualifiedName"`
	DisplayName      string `json:"displayName,omitempty"`
	VersionNumber    string `json:"versionNumber,omitempty"`
	Author           string `json:"author,omitempty"`
	Usage            string `json:"usage,omitempty"`
	EncodingStandard string `json:"encodingStandard,omitempty"`
	DataType         string `json:"dataType,omitempty"`
	DefaultValue     string `json:"defaultValue,omitempty"`
}

// Clone returns a deep copy of the schema type.
func (s *SchemaType) Clone() *SchemaType {
	if s == nil {
		return nil
	}
	c := *s
	c.ElementHeader = s.ElementHeader.Header()
	return &c
}

// IsPrimitive reports whether the schema type has a simple data type.
func (s *SchemaType) IsPrimitive() bool {
	return s.DataType != ""
}

// SchemaAttribute is one named, positioned field of a complex schema type.
type SchemaAttribute struct {
	ElementHeader
	AttributeName         string      `json:"attributeName"`
	ElementPosition       int         `json:"elementPosition"`
	MinCardinality        int         `json:"minCardinality"`
	MaxCardinality        int         `json:"maxCardinality"`
	AllowsDuplicateValues bool        `json:"allowsDuplicateValues,omitempty"`
	OrderedValues         bool        `json:"orderedValues,omitempty"`
	DefaultValueOverride  string      `json:"defaultValueOverride,omitempty"`
	AttributeType         *SchemaType `json:"attributeType,omitempty"`
}

// Clone returns a deep copy of the attribute.
func (s *SchemaAttribute) Clone() *SchemaAttribute {
	if s == nil {
		return nil
	}
	c := *s
	c.ElementHeader = s.ElementHeader.Header()
	c.AttributeType = s.AttributeType.Clone()
	return &c
}
