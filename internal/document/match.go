package document

import "strings"

// Matches reports whether d satisfies every populated dimension of req.
// Candidates inside one dimension are OR-ed; dimensions are AND-ed.
func Matches(d Document, req SearchRequest) bool {
	if req.IsEmpty() {
		return true
	}
	if len(req.TitlePrefixes) > 0 && !anyMatch(req.TitlePrefixes, func(p string) bool {
		return strings.HasPrefix(d.Title, p)
	}) {
		return false
	}
	if len(req.ContainsContents) > 0 && !anyMatch(req.ContainsContents, func(s string) bool {
		return strings.Contains(d.Content, s)
	}) {
		return false
	}
	if len(req.AuthorIDs) > 0 && !anyMatch(req.AuthorIDs, func(id string) bool {
		return id == d.Author.ID
	}) {
		return false
	}
	if req.CreatedFrom != nil && d.CreatedAt.Before(*req.CreatedFrom) {
		return false
	}
	if req.CreatedTo != nil && d.CreatedAt.After(*req.CreatedTo) {
		return false
	}
	return true
}

func anyMatch(candidates []string, fn func(string) bool) bool {
	for _, c := range candidates {
		if fn(c) {
			return true
		}
	}
	return false
}
