package beans

import "sort"

// Kind names a collection of elements attached to an owner element.
type Kind string

const (
	KindCertifications         Kind = "certifications"
	KindComments               Kind = "comments"
	KindCommentReplies         Kind = "comment_replies"
	KindConnections            Kind = "connections"
	KindExternalIdentifiers    Kind = "external_identifiers"
	KindExternalReferences     Kind = "external_references"
	KindInformalTags           Kind = "informal_tags"
	KindLicenses               Kind = "licenses"
	KindLikes                  Kind = "likes"
	KindLocations              Kind = "locations"
	KindMeanings               Kind = "meanings"
	KindNoteLogs               Kind = "note_logs"
	KindNotes                  Kind = "notes"
	KindRatings                Kind = "ratings"
	KindRelatedMediaReferences Kind = "related_media_references"
	KindSchemaAttributes       Kind = "schema_attributes"
	KindSearchKeywords         Kind = "search_keywords"
)

type kindInfo struct {
	iterator string
	typeName string
	owner    string
}

var kinds = map[Kind]kindInfo{
	KindCertifications:         {"Certifications", "Certification", "Asset"},
	KindComments:               {"Comments", "Comment", "Asset"},
	KindCommentReplies:         {"CommentReplies", "Comment", "Comment"},
	KindConnections:            {"Connections", "Connection", "Asset"},
	KindExternalIdentifiers:    {"ExternalIdentifiers", "ExternalIdentifier", "Asset"},
	KindExternalReferences:     {"ExternalReferences", "ExternalReference", "Asset"},
	KindInformalTags:           {"InformalTags", "InformalTag", "Asset"},
	KindLicenses:               {"Licenses", "License", "Asset"},
	KindLikes:                  {"Likes", "Like", "Asset"},
	KindLocations:              {"Locations", "Location", "Asset"},
	KindMeanings:               {"Meanings", "GlossaryTerm", "Asset"},
	KindNoteLogs:               {"NoteLogs", "NoteLog", "Asset"},
	KindNotes:                  {"Notes", "Note", "NoteLog"},
	KindRatings:                {"Ratings", "Rating", "Asset"},
	KindRelatedMediaReferences: {"RelatedMediaReferences", "RelatedMedia", "Asset"},
	KindSchemaAttributes:       {"SchemaAttributes", "SchemaAttribute", "SchemaType"},
	KindSearchKeywords:         {"SearchKeywords", "SearchKeyword", "Asset"},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// IteratorName is the name used for iterators over this kind.
func (k Kind) IteratorName() string {
	return kinds[k].iterator
}

// ElementTypeName is the type name of the elements in this kind of collection.
func (k Kind) ElementTypeName() string {
	return kinds[k].typeName
}

// OwnerTypeName is the type of element that owns this kind of collection.
func (k Kind) OwnerTypeName() string {
	return kinds[k].owner
}

// AssetKinds returns, in name order, the kinds owned directly by an asset.
func AssetKinds() []Kind {
	var out []Kind
	for k, info := range kinds {
		if info.owner == "Asset" {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllKinds returns every known kind in name order.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, k.Valid()
}
