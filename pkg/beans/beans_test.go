package beans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAsset() *Asset {
	return &Asset{
		ElementHeader: ElementHeader{
			GUID:     "asset-1",
			TypeName: "DataFile",
			Classifications: []Classification{
				{Name: "Confidentiality", Properties: map[string]interface{}{
					"level":  3,
					"owners": []interface{}{"erin"},
				}},
			},
		},
		QualifiedName:        "file://data/customers.csv",
		DisplayName:          "customers.csv",
		Zones:                []string{"quarantine"},
		AdditionalProperties: map[string]string{"format": "csv"},
		SchemaType: &SchemaType{
			ElementHeader: ElementHeader{GUID: "schema-1", TypeName: "TabularSchemaType"},
			QualifiedName: "schema://customers",
		},
	}
}

func TestAssetCloneIsDeep(t *testing.T) {
	orig := sampleAsset()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Zones[0] = "public"
	c.AdditionalProperties["format"] = "parquet"
	c.SchemaType.QualifiedName = "changed"
	c.Classifications[0].Properties["level"] = 0
	c.Classifications[0].Properties["owners"].([]interface{})[0] = "mallory"

	assert.Equal(t, "quarantine", orig.Zones[0])
	assert.Equal(t, "csv", orig.AdditionalProperties["format"])
	assert.Equal(t, "schema://customers", orig.SchemaType.QualifiedName)
	assert.Equal(t, 3, orig.Classifications[0].Properties["level"])
	assert.Equal(t, "erin", orig.Classifications[0].Properties["owners"].([]interface{})[0])
}

func TestNilClones(t *testing.T) {
	assert.Nil(t, (*Asset)(nil).Clone())
	assert.Nil(t, (*SchemaType)(nil).Clone())
	assert.Nil(t, (*Connection)(nil).Clone())
	assert.Nil(t, (*Connection)(nil).Redacted())
	assert.Nil(t, (*Comment)(nil).Clone())
	assert.Nil(t, (*RelatedMediaReference)(nil).Clone())
}

func TestHeader(t *testing.T) {
	a := sampleAsset()
	h := a.Header()
	h.Classifications[0].Name = "changed"
	assert.Equal(t, "Confidentiality", a.Classifications[0].Name)

	c, ok := a.Classification("Confidentiality")
	require.True(t, ok)
	assert.Equal(t, 3, c.Properties["level"])

	_, ok = a.Classification("Retention")
	assert.False(t, ok)
}

func TestConnectionRedacted(t *testing.T) {
	conn := &Connection{
		ElementHeader:     ElementHeader{GUID: "conn-1", TypeName: "Connection"},
		QualifiedName:     "conn://customers",
		Endpoint:          &Endpoint{Address: "db.example.com:5432", Protocol: "postgres"},
		UserID:            "reader",
		ClearPassword:     "s3cret",
		EncryptedPassword: "xxxx",
		SecuredProperties: map[string]string{"token": "abc"},
		ConfigurationProperties: map[string]interface{}{
			"schema": "public",
		},
	}

	r := conn.Redacted()

	assert.Empty(t, r.ClearPassword)
	assert.Empty(t, r.EncryptedPassword)
	assert.Nil(t, r.SecuredProperties)
	assert.Equal(t, "reader", r.UserID)
	assert.Equal(t, "db.example.com:5432", r.Endpoint.Address)
	assert.Equal(t, "s3cret", conn.ClearPassword)

	r.Endpoint.Address = "elsewhere"
	assert.Equal(t, "db.example.com:5432", conn.Endpoint.Address)
}

func TestSchemaAttributeClone(t *testing.T) {
	attr := &SchemaAttribute{
		AttributeName:   "email",
		ElementPosition: 2,
		AttributeType:   &SchemaType{DataType: "string"},
	}
	c := attr.Clone()
	c.AttributeType.DataType = "int"

	assert.Equal(t, "string", attr.AttributeType.DataType)
	assert.True(t, attr.AttributeType.IsPrimitive())
}

func TestCertificationActiveAt(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Certification{Start: start, End: end}

	assert.False(t, c.ActiveAt(start.Add(-time.Hour)))
	assert.True(t, c.ActiveAt(start))
	assert.True(t, c.ActiveAt(end.Add(-time.Second)))
	assert.False(t, c.ActiveAt(end))
	assert.True(t, (&Certification{}).ActiveAt(end))
}

func TestStarRating(t *testing.T) {
	assert.True(t, FiveStars.Valid())
	assert.True(t, NoStars.Valid())
	assert.False(t, StarRating(6).Valid())
	assert.False(t, StarRating(-1).Valid())
}

func TestKinds(t *testing.T) {
	k, ok := ParseKind("informal_tags")
	require.True(t, ok)
	assert.Equal(t, KindInformalTags, k)
	assert.Equal(t, "InformalTags", k.IteratorName())
	assert.Equal(t, "InformalTag", k.ElementTypeName())
	assert.Equal(t, "Asset", k.OwnerTypeName())

	_, ok = ParseKind("unknown")
	assert.False(t, ok)

	assert.Equal(t, "SchemaType", KindSchemaAttributes.OwnerTypeName())
	assert.Equal(t, "NoteLog", KindNotes.OwnerTypeName())

	all := AllKinds()
	assert.Len(t, all, 17)
	assert.IsIncreasing(t, all)

	assetKinds := AssetKinds()
	assert.NotContains(t, assetKinds, KindNotes)
	assert.NotContains(t, assetKinds, KindCommentReplies)
	assert.NotContains(t, assetKinds, KindSchemaAttributes)
	assert.Contains(t, assetKinds, KindCertifications)
	assert.Len(t, assetKinds, 14)
}
