// Package services – cache key construction
//
// Every cached read derives its key here so that invalidation patterns
// (substring matches against key families) stay in one place. Keys embed
// every parameter that changes the result set; two requests that build the
// same key are by definition satisfiable by the same cached value.
package services

import (
	"fmt"
	"strings"
)

const (
	keyFamilyTrending = "trending_posts"
	keyFamilyPopular  = "popular_posts"
)

func postsListKey(page, pageSize int, categoryID, cursor string) string {
	return fmt.Sprintf("posts:p=%d,s=%d,c=%s,a=%s", page, pageSize, categoryID, cursor)
}

func postKey(slug string) string {
	return "post:" + slug
}

func featuredKey(limit int) string {
	return fmt.Sprintf("featured_posts:%d", limit)
}

func trendingKey(page, pageSize int, cursor string) string {
	return fmt.Sprintf("%s:p=%d,s=%d,a=%s", keyFamilyTrending, page, pageSize, cursor)
}

func popularKey(limit int) string {
	return fmt.Sprintf("%s:%d", keyFamilyPopular, limit)
}

func searchKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}

func postsByAuthorKey(uid string, page, pageSize int, cursor string) string {
	return fmt.Sprintf("posts_by_author:%s:p=%d,s=%d,a=%s", uid, page, pageSize, cursor)
}

func postsTotalKey(categoryID, createdBy string) string {
	return fmt.Sprintf("posts_total:c=%s,by=%s", categoryID, createdBy)
}

func viewMarkKey(slug string) string {
	return "view_mark:" + slug
}

func userKey(uid string) string {
	return "user:" + uid
}

const categoriesKey = "categories"
