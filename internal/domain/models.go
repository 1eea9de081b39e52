// Package domain defines the persistence models for posts, authors,
// categories, and inbox records (newsletter subscribers and contact
// messages). These types are mapped with GORM and form the core data
// layer of the blog reader backend.
package domain

import (
	"time"
)

// ISOFormat is the single serializable timestamp representation used at the
// service boundary. Raw time.Time values never leave the repo layer inside
// cached or rendered payloads.
const ISOFormat = time.RFC3339

// ISOTime formats t as an RFC 3339 UTC string.
func ISOTime(t time.Time) string { return t.UTC().Format(ISOFormat) }

// Post is a published article. The slug is the primary external key: a
// URL-safe, globally unique string that is immutable once published. The
// internal UUID exists only for storage and cursor stability.
//
// Views is monotonically non-decreasing (the read path only increments it,
// throttled per slug); Likes may move in either direction.
type Post struct {
	ID            string    `json:"-"             gorm:"type:char(36);primaryKey"`
	Slug          string    `json:"slug"          gorm:"type:varchar(160);not null;uniqueIndex:ux_post_slug"`
	Title         string    `json:"title"         gorm:"type:varchar(255);not null"`
	Excerpt       string    `json:"excerpt"       gorm:"type:text"`
	CategoryID    string    `json:"category"      gorm:"column:category;type:char(36);index:idx_post_category"`
	Tags          []string  `json:"tags"          gorm:"serializer:json"`
	FeaturedImage string    `json:"featuredImage" gorm:"type:varchar(512)"`
	CreatedBy     string    `json:"createdBy"     gorm:"type:varchar(64);not null;index:idx_post_creator"`
	CreatedAt     time.Time `json:"-"             gorm:"index:idx_post_created"`
	UpdatedAt     time.Time `json:"-"`
	ReadingTime   string    `json:"readingTime"   gorm:"type:varchar(32)"`
	IsFeatured    bool      `json:"isFeatured"    gorm:"index:idx_post_featured"`
	Views         int64     `json:"views"         gorm:"not null;default:0;index:idx_post_views"`
	Likes         int64     `json:"likes"         gorm:"not null;default:0"`
	Blocks        []Block   `json:"blocks"        gorm:"serializer:json"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// SocialLinks holds the optional per-field external profiles of an author.
// Absent links are omitted from serialized output.
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Author is a user who writes posts. TotalPosts is never persisted: it is
// derived at read time by counting posts whose CreatedBy equals UID, so its
// staleness is bounded only by the cache TTL.
type Author struct {
	UID         string      `json:"uid"         gorm:"column:uid;type:varchar(64);primaryKey"`
	Name        string      `json:"name"        gorm:"type:varchar(128);not null"`
	Avatar      string      `json:"avatar"      gorm:"type:varchar(512)"`
	Bio         string      `json:"bio"         gorm:"type:text"`
	SocialLinks SocialLinks `json:"socialLinks" gorm:"serializer:json"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`

	TotalPosts int64 `json:"totalPosts" gorm:"-"`
}

// TableName returns the database table name for Author.
func (Author) TableName() string { return "users" }

// UnknownAuthorName is the display name substituted when a post's creator
// no longer resolves to a user document.
const UnknownAuthorName = "Unknown Author"

// UnknownAuthor returns the synthetic fallback attached to posts whose
// creator id does not resolve. The join over authors must never omit the
// author or fail because of a dangling reference.
func UnknownAuthor(uid string) Author {
	return Author{
		UID:         uid,
		Name:        UnknownAuthorName,
		Avatar:      "/placeholder.svg?height=40&width=40",
		Bio:         "",
		SocialLinks: SocialLinks{},
		TotalPosts:  0,
	}
}

// PostWithAuthor is a Post with its resolved Author attached, plus the
// creation timestamp normalized to an ISO-8601 string. It is derived
// per-request and never persisted.
type PostWithAuthor struct {
	Post
	CreatedAt string `json:"createdAt"`
	Author    Author `json:"author"`
}

// NewPostWithAuthor joins p with a and normalizes the timestamp.
func NewPostWithAuthor(p Post, a Author) PostWithAuthor {
	return PostWithAuthor{Post: p, CreatedAt: ISOTime(p.CreatedAt), Author: a}
}

// Category is one entry of the small, slow-changing taxonomy. The whole set
// is always fetched wholesale and filtered in memory.
type Category struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(128);not null"`
	Slug        string    `json:"slug"        gorm:"type:varchar(160);not null;uniqueIndex:ux_category_slug"`
	Icon        string    `json:"icon"        gorm:"type:varchar(128)"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"-"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Subscriber is a stored newsletter signup.
type Subscriber struct {
	ID           string    `json:"-"     gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"  gorm:"type:varchar(128)"`
	Email        string    `json:"email" gorm:"type:varchar(254);not null;index:idx_subscriber_email"`
	SubscribedAt time.Time `json:"-"`
}

// TableName returns the database table name for Subscriber.
func (Subscriber) TableName() string { return "newsletter_subscribers" }

// ContactMessage is a stored contact-form submission.
type ContactMessage struct {
	ID          string    `json:"-"       gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"    gorm:"type:varchar(128);not null"`
	Email       string    `json:"email"   gorm:"type:varchar(254);not null"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	SubmittedAt time.Time `json:"-"`
}

// TableName returns the database table name for ContactMessage.
func (ContactMessage) TableName() string { return "contact_messages" }
