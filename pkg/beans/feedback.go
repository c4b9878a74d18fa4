package beans

// CommentType classifies a comment.
type CommentType string

const (
	CommentTypeStandard   CommentType = "STANDARD_COMMENT"
	CommentTypeQuestion   CommentType = "QUESTION"
	CommentTypeAnswer     CommentType = "ANSWER"
	CommentTypeSuggestion CommentType = "SUGGESTION"
	CommentTypeUsage      CommentType = "USAGE_EXPERIENCE"
	CommentTypeOther      CommentType = "OTHER"
)

// Comment is free-text feedback on an asset. Replies are comments owned by
// another comment.
type Comment struct {
	ElementHeader
	CommentType CommentType `json:"commentType"`
	CommentText string      `json:"commentText"`
	User        string      `json:"user"`
	IsPublic    bool        `json:"isPublic"`
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	out := *c
	out.ElementHeader = c.ElementHeader.Header()
	return &out
}

// InformalTag is a user-defined label.
type InformalTag struct {
	ElementHeader
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	User        string `json:"user"`
	IsPrivate   bool   `json:"isPrivateTag"`
}

// Clone returns a deep copy of the tag.
func (t *InformalTag) Clone() *InformalTag {
	if t == nil {
		return nil
	}
	out := *t
	out.ElementHeader = t.ElementHeader.Header()
	return &out
}

// Like records that a user likes an asset.
type Like struct {
	ElementHeader
	User     string `json:"user"`
	IsPublic bool   `json:"isPublic"`
}

// Clone returns a deep copy of the like.
func (l *Like) Clone() *Like {
	if l == nil {
		return nil
	}
	out := *l
	out.ElementHeader = l.ElementHeader.Header()
	return &out
}

// StarRating is a rating from NoStars to FiveStars.
type StarRating int

const (
	NoStars StarRating = iota
	OneStar
	TwoStars
	ThreeStars
	FourStars
	FiveStars
)

// Valid reports whether r is within range.
func (r StarRating) Valid() bool {
	return r >= NoStars && r <= FiveStars
}

// Rating is a star rating with an optional review.
type Rating struct {
	ElementHeader
	StarRating StarRating `json:"starRating"`
	Review     string     `json:"review,omitempty"`
	User       string     `json:"user"`
	IsPublic   bool       `json:"isPublic"`
}

// Clone returns a deep copy of the rating.
func (r *Rating) Clone() *Rating {
	if r == nil {
		return nil
	}
	out := *r
	out.ElementHeader = r.ElementHeader.Header()
	return &out
}

// NoteLog is a named journal of notes about an asset.
type NoteLog struct {
	ElementHeader
	QualifiedName string `json:"qualifiedName"`
	DisplayName   string `json:"displayName,omitempty"`
	Description   string `json:"description,omitempty"`
	IsPublic      bool   `json:"isPublic"`
}

// Clone returns a deep copy of the note log.
func (n *NoteLog) Clone() *NoteLog {
	if n == nil {
		return nil
	}
	out := *n
	out.ElementHeader = n.ElementHeader.Header()
	return &out
}

// Note is one entry in a note log.
type Note struct {
	ElementHeader
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
	User  string `json:"user"`
}

// Clone returns a deep copy of the note.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	out := *n
	out.ElementHeader = n.ElementHeader.Header()
	return &out
}
