package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Sample describes what SampleFixture put into the fixture.
type Sample struct {
	Asset *beans.Asset
	// Counts holds the size of every collection owned by the asset or its
	// schema type.
	Counts map[beans.Kind]int
	// RepliedComment is the GUID of the comment that has Replies replies.
	RepliedComment string
	Replies        int
	// NoteLog is the GUID of the note log holding Notes notes.
	NoteLog string
	Notes   int
}

// Total returns the number of elements owned by the asset or its schema type.
func (s Sample) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// SampleFixture builds a fixture for one asset with a schema type and a
// deterministic set of elements. Element GUIDs are derived from the asset GUID.
func SampleFixture(t *testing.T, assetGUID string) (*propertyserver.Fixture, Sample) {
	t.Helper()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	header := func(kind string, i int, typeName string) beans.ElementHeader {
		return beans.ElementHeader{
			GUID:       fmt.Sprintf("%s-%s-%d", assetGUID, kind, i),
			TypeName:   typeName,
			Version:    1,
			CreatedBy:  "erin",
			CreateTime: created,
		}
	}

	asset := &beans.Asset{
		ElementHeader: beans.ElementHeader{
			GUID:       assetGUID,
			TypeName:   "DataFile",
			Version:    4,
			CreatedBy:  "erin",
			CreateTime: created,
			Classifications: []beans.Classification{
				{Name: "Confidentiality", Properties: map[string]interface{}{"level": "internal"}},
			},
		},
		QualifiedName:        "file://warehouse/" + assetGUID + "/orders.csv",
		DisplayName:          "orders.csv",
		Description:          "Daily order extract",
		Owner:                "erin",
		Zones:                []string{"landing", "analytics"},
		AdditionalProperties: map[string]string{"format": "csv", "delimiter": ","},
		SchemaType: &beans.SchemaType{
			ElementHeader: header("schema", 0, "TabularSchemaType"),
			QualifiedName: "schema://" + assetGUID + "/orders",
			DisplayName:   "orders",
		},
	}

	f := &propertyserver.Fixture{Assets: []*beans.Asset{asset}}
	s := Sample{Asset: asset, Counts: make(map[beans.Kind]int)}
	add := func(owner string, kind beans.Kind, element interface{}) {
		require.NoError(t, f.Add(owner, kind, element))
		if owner == assetGUID || owner == asset.SchemaType.GUID {
			s.Counts[kind]++
		}
	}

	for i := 0; i < 3; i++ {
		add(assetGUID, beans.KindCertifications, &beans.Certification{
			ElementHeader:         header("certification", i, "Certification"),
			CertificationTypeName: fmt.Sprintf("QualityLevel%d", i),
			Start:                 created,
			End:                   created.AddDate(1, 0, 0),
		})
	}
	for i := 0; i < 25; i++ {
		add(assetGUID, beans.KindComments, &beans.Comment{
			ElementHeader: header("comment", i, "Comment"),
			CommentType:   beans.CommentTypeStandard,
			CommentText:   fmt.Sprintf("comment %d", i),
			User:          "frank",
			IsPublic:      true,
		})
	}
	s.RepliedComment = fmt.Sprintf("%s-comment-0", assetGUID)
	s.Replies = 2
	for i := 0; i < s.Replies; i++ {
		add(s.RepliedComment, beans.KindCommentReplies, &beans.Comment{
			ElementHeader: header("reply", i, "Comment"),
			CommentType:   beans.CommentTypeAnswer,
			CommentText:   fmt.Sprintf("reply %d", i),
			User:          "grace",
		})
	}
	for i := 0; i < 2; i++ {
		add(assetGUID, beans.KindConnections, &beans.Connection{
			ElementHeader:     header("connection", i, "Connection"),
			QualifiedName:     fmt.Sprintf("conn://%s/%d", assetGUID, i),
			Endpoint:          &beans.Endpoint{QualifiedName: "endpoint://files", Address: "/data/orders.csv"},
			UserID:            "reader",
			ClearPassword:     "s3cret",
			SecuredProperties: map[string]string{"token": "abc"},
		})
	}
	add(assetGUID, beans.KindExternalIdentifiers, &beans.ExternalIdentifier{
		ElementHeader: header("external-identifier", 0, "ExternalId"),
		Identifier:    "ORD-001",
		KeyPattern:    beans.KeyPattern("LOCAL_KEY"),
	})
	for i := 0; i < 4; i++ {
		add(assetGUID, beans.KindInformalTags, &beans.InformalTag{
			ElementHeader: header("tag", i, "InformalTag"),
			Name:          fmt.Sprintf("tag-%d", i),
			User:          "frank",
		})
	}
	for i := 0; i < 7; i++ {
		add(assetGUID, beans.KindLikes, &beans.Like{
			ElementHeader: header("like", i, "Like"),
			User:          fmt.Sprintf("user-%d", i),
			IsPublic:      true,
		})
	}
	add(assetGUID, beans.KindLocations, &beans.Location{
		ElementHeader: header("location", 0, "Location"),
		QualifiedName: "location://dc-1",
		Address:       "Data Center 1",
	})
	for i := 0; i < 2; i++ {
		add(assetGUID, beans.KindMeanings, &beans.Meaning{
			ElementHeader: header("meaning", i, "GlossaryTerm"),
			Name:          fmt.Sprintf("term-%d", i),
		})
	}
	s.NoteLog = fmt.Sprintf("%s-notelog-0", assetGUID)
	add(assetGUID, beans.KindNoteLogs, &beans.NoteLog{
		ElementHeader: header("notelog", 0, "NoteLog"),
		QualifiedName: "notelog://orders",
		IsPublic:      true,
	})
	s.Notes = 3
	for i := 0; i < s.Notes; i++ {
		add(s.NoteLog, beans.KindNotes, &beans.Note{
			ElementHeader: header("note", i, "NoteEntry"),
			Text:          fmt.Sprintf("note %d", i),
			User:          "erin",
		})
	}
	for i := 0; i < 5; i++ {
		add(assetGUID, beans.KindRatings, &beans.Rating{
			ElementHeader: header("rating", i, "Rating"),
			StarRating:    beans.StarRating(i + 1),
			User:          fmt.Sprintf("user-%d", i),
		})
	}
	add(assetGUID, beans.KindRelatedMediaReferences, &beans.RelatedMediaReference{
		ElementHeader: header("media", 0, "RelatedMedia"),
		MediaID:       "diagram",
		URI:           "https://example.com/orders.png",
		MediaUsage:    []string{"ICON"},
	})
	for i := 0; i < 12; i++ {
		add(assetGUID, beans.KindSearchKeywords, &beans.SearchKeyword{
			ElementHeader: header("keyword", i, "SearchKeyword"),
			Keyword:       fmt.Sprintf("keyword-%02d", i),
		})
	}
	for i := 0; i < 6; i++ {
		add(asset.SchemaType.GUID, beans.KindSchemaAttributes, &beans.SchemaAttribute{
			ElementHeader:   header("attribute", i, "TabularColumn"),
			AttributeName:   fmt.Sprintf("column_%d", i),
			ElementPosition: i,
			MinCardinality:  0,
			MaxCardinality:  1,
			AttributeType:   &beans.SchemaType{QualifiedName: fmt.Sprintf("type://column_%d", i), DataType: "string"},
		})
	}
	for _, kind := range beans.AssetKinds() {
		if _, ok := s.Counts[kind]; !ok {
			s.Counts[kind] = 0
		}
	}
	return f, s
}
