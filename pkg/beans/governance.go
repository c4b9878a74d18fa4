package beans

import "time"

// Certification records that an asset meets the requirements of a certification
// type for a period of time.
type Certification struct {
	ElementHeader
	CertificateGUID         string    `json:"certificateGUID,omitempty"`
	CertificationTypeName   string    `json:"certificationTypeName"`
	Examiner                string    `json:"examiner,omitempty"`
	Summary                 string    `json:"summary,omitempty"`
	Start                   time.Time `json:"start,omitempty"`
	End                     time.Time `json:"end,omitempty"`
	CertificationConditions string    `json:"certificationConditions,omitempty"`
	CertifiedBy             string    `json:"certifiedBy,omitempty"`
	Custodian               string    `json:"custodian,omitempty"`
	Recipient               string    `json:"recipient,omitempty"`
	Notes                   string    `json:"notes,omitempty"`
}

// Clone returns a deep copy of the certification.
func (c *Certification) Clone() *Certification {
	if c == nil {
		return nil
	}
	out := *c
	out.ElementHeader = c.ElementHeader.Header()
	return &out
}

// ActiveAt reports whether the certification is valid at t. Zero bounds are open.
func (c *Certification) ActiveAt(t time.Time) bool {
	if !c.Start.IsZero() && t.Before(c.Start) {
		return false
	}
	if !c.End.IsZero() && !t.Before(c.End) {
		return false
	}
	return true
}

// License records the terms under which an asset may be used.
type License struct {
	ElementHeader
	LicenseGUID     string    `json:"licenseGUID,omitempty"`
	LicenseTypeName string    `json:"licenseTypeName"`
	Summary         string    `json:"summary,omitempty"`
	Start           time.Time `json:"start,omitempty"`
	End             time.Time `json:"end,omitempty"`
	Conditions      string    `json:"licenseConditions,omitempty"`
	Licensor        string    `json:"licensedBy,omitempty"`
	Licensee        string    `json:"licensee,omitempty"`
	Custodian       string    `json:"custodian,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Clone returns a deep copy of the license.
func (l *License) Clone() *License {
	if l == nil {
		return nil
	}
	out := *l
	out.ElementHeader = l.ElementHeader.Header()
	return &out
}

// Location is a physical or logical place associated with an asset.
type Location struct {
	ElementHeader
	QualifiedName string `json:"qualifiedName"`
	DisplayName   string `json:"displayName,omitempty"`
	Description   string `json:"description,omitempty"`
	Coordinates   string `json:"coordinates,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Clone returns a deep copy of the location.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	out := *l
	out.ElementHeader = l.ElementHeader.Header()
	return &out
}

// Meaning links an asset to a glossary term.
type Meaning struct {
	ElementHeader
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// Clone returns a deep copy of the meaning.
func (m *Meaning) Clone() *Meaning {
	if m == nil {
		return nil
	}
	out := *m
	out.ElementHeader = m.ElementHeader.Header()
	return &out
}

// SearchKeyword is a keyword that helps users find an asset.
type SearchKeyword struct {
	ElementHeader
	Keyword     string `json:"keyword"`
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy of the keyword.
func (k *SearchKeyword) Clone() *SearchKeyword {
	if k == nil {
		return nil
	}
	out := *k
	out.ElementHeader = k.ElementHeader.Header()
	return &out
}
