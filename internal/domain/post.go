package domain

// Post is a blog article ready for publishing.
type Post struct {
	Title   string
	Content string
	Excerpt string
	Status  string
}

// PublishedPost is what the blog returns after accepting a post.
type PublishedPost struct {
	ID     int64
	Link   string
	Status string
}
