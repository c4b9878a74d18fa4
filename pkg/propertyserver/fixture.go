package propertyserver

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// Fixture is the JSON document used to seed a store:
//
//	{
//	  "assets": [{"guid": "...", "typeName": "DataFile", ...}],
//	  "elements": [{"owner": "...", "kind": "comments", "element": {...}}]
//	}
//
// Elements are appended in document order.
type Fixture struct {
	Assets   []*beans.Asset   `json:"assets"`
	Elements []FixtureElement `json:"elements"`
}

// FixtureElement places one element in a collection.
type FixtureElement struct {
	Owner   string     `json:"owner"`
	Kind    beans.Kind `json:"kind"`
	Element RawElement `json:"element"`
}

// ReadFixture decodes a fixture document.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to decode fixture")
	}
	return &f, nil
}

// ReadFixtureFile decodes the fixture stored at path.
func ReadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path) //nolint:gosec // G304: fixture path comes from configuration
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to open fixture").
			WithDetail("path", path)
	}
	defer f.Close()
	return ReadFixture(f)
}

// Apply writes every asset and element of the fixture to store. Assets without a
// GUID are given a new one.
func (f *Fixture) Apply(ctx context.Context, store Store) error {
	for _, a := range f.Assets {
		if a == nil {
			continue
		}
		if a.GUID == "" {
			a.GUID = NewGUID()
		}
		if err := store.PutAsset(ctx, a); err != nil {
			return err
		}
	}
	for i, e := range f.Elements {
		if err := store.AddElement(ctx, e.Owner, e.Kind, e.Element); err != nil {
			return ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to add fixture element").
				WithDetail("index", i)
		}
	}
	return nil
}

// Add appends an element to the fixture.
func (f *Fixture) Add(owner string, kind beans.Kind, element interface{}) error {
	raw, err := Encode(element)
	if err != nil {
		return err
	}
	f.Elements = append(f.Elements, FixtureElement{Owner: owner, Kind: kind, Element: raw})
	return nil
}

// NewGUID returns a random element GUID.
func NewGUID() string {
	return uuid.NewString()
}
