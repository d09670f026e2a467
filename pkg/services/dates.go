package services

import (
	"sort"
	"strings"
	"time"

	"blogbuild/pkg/models"
)

// DateLayouts are tried in order when reading a front matter date.
var DateLayouts = []string{
	"January 2, 2006",
	"2006-1-2",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate returns the zero time when no layout matches, which sorts the
// post after every dated one.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortPosts orders posts newest first. Equal dates keep source-name order.
func SortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Published.Equal(posts[j].Published) {
			return posts[i].Published.After(posts[j].Published)
		}
		return posts[i].SourceName < posts[j].SourceName
	})
}
