package engine

// Kind discriminates the Record variants.
type Kind string

const (
	KindImage Kind = "image"
	KindLink  Kind = "link"
	KindVideo Kind = "video"
)

// Record is one normalized search result. Which fields are set depends on Type:
// images carry thumbnail/title/source, links carry title, videos carry embed and a null title.
type Record struct {
	Type      Kind    `json:"type" jsonschema:"Result kind: image, link or video"`
	URL       string  `json:"url" jsonschema:"Target URL of the result"`
	Thumbnail string  `json:"thumbnail,omitempty" jsonschema:"Image thumbnail URL"`
	Title     *string `json:"title" jsonschema:"Result title (null for videos)"`
	Source    string  `json:"source,omitempty" jsonschema:"Page the image was found on"`
	Embed     string  `json:"embed,omitempty" jsonschema:"Embeddable player URL for videos"`
}

// NewImage builds an image record.
func NewImage(url, thumbnail, title, source string) Record {
	return Record{Type: KindImage, URL: url, Thumbnail: thumbnail, Title: &title, Source: source}
}

// NewLink builds a link record.
func NewLink(url, title string) Record {
	return Record{Type: KindLink, URL: url, Title: &title}
}

// NewVideo builds a video record. Videos have no title.
func NewVideo(url, embed string) Record {
	return Record{Type: KindVideo, URL: url, Embed: embed}
}

// Key returns the identity key used for deduplication: url, then embed,
// then source+title. Empty means the record has no usable identity.
func (r Record) Key() string {
	if r.URL != "" {
		return r.URL
	}
	if r.Embed != "" {
		return r.Embed
	}
	title := ""
	if r.Title != nil {
		title = *r.Title
	}
	return r.Source + title
}

// SearchInput is the input for the media_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Search keyword (e.g. golden gate bridge, lofi mix)"`
}

// SearchOutput is the aggregated response. Note is set only when nothing matched.
type SearchOutput struct {
	Results []Record `json:"results"`
	Note    string   `json:"note,omitempty"`
}
