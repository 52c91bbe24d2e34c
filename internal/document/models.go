package document

import "time"

// Author identifies who wrote a document. It has no lifecycle of its own and
// is stored by value inside each Document.
type Author struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Document is the record kept by every store. An empty ID means the document
// has not been saved yet; CreatedAt is fixed by the first save of an ID.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Author    Author    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"created" bson:"created"`
}

// SearchRequest filters documents. Every field is optional: a nil or empty
// slice and a nil bound put no constraint on that dimension.
type SearchRequest struct {
	TitlePrefixes    []string   `json:"titlePrefixes,omitempty"`
	ContainsContents []string   `json:"containsContents,omitempty"`
	AuthorIDs        []string   `json:"authorIds,omitempty"`
	CreatedFrom      *time.Time `json:"createdFrom,omitempty"`
	CreatedTo        *time.Time `json:"createdTo,omitempty"`
}

// IsEmpty reports whether the request constrains nothing.
func (r SearchRequest) IsEmpty() bool {
	return len(r.TitlePrefixes) == 0 &&
		len(r.ContainsContents) == 0 &&
		len(r.AuthorIDs) == 0 &&
		r.CreatedFrom == nil &&
		r.CreatedTo == nil
}
