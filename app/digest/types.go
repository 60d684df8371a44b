package digest

// Email is one composed digest message: an HTML body plus, when the
// first listing carried a reachable image, that image's bytes for
// inline embedding.
type Email struct {
	Subject string
	HTML    string
	Inline  *InlineImage
}

// InlineImage is referenced from the HTML body via cid:<Name>.
type InlineImage struct {
	Name        string
	ContentType string
	Data        []byte
}
