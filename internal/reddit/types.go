package reddit

import "encoding/json"

// Listing is the envelope every list endpoint returns.
type Listing[T any] struct {
	Kind string `json:"kind"`
	Data struct {
		After    string     `json:"after"`
		Children []Thing[T] `json:"children"`
	} `json:"data"`
}

// Thing is one child of a listing. Kind is "t3" for posts, "t1" for
// comments, "t5" for communities and "more" for collapsed comment stubs.
type Thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

// Post is the subset of a t3 object the viewer reads. Optional fields
// decode to their zero value when missing.
type Post struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Subreddit   string   `json:"subreddit"`
	Selftext    string   `json:"selftext"`
	URL         string   `json:"url"`
	Thumbnail   string   `json:"thumbnail"`
	Permalink   string   `json:"permalink"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	CreatedUTC  float64  `json:"created_utc"`
	Created     float64  `json:"created"`
	Preview     *Preview `json:"preview"`
}

// Preview holds the resized images the upstream generates for a post.
type Preview struct {
	Images []PreviewImage `json:"images"`
}

// PreviewImage is one preview; only the full-size source is read.
type PreviewImage struct {
	Source struct {
		URL string `json:"url"`
	} `json:"source"`
}

// PreviewURL returns the raw (still escaped) first preview source, if any.
func (p Post) PreviewURL() string {
	if p.Preview == nil || len(p.Preview.Images) == 0 {
		return ""
	}
	return p.Preview.Images[0].Source.URL
}

// Comment is the subset of a t1 object the viewer reads. Replies is either
// "" or a nested listing; only first-level comments are rendered so it is
// left undecoded.
type Comment struct {
	ID         string          `json:"id"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Created    float64         `json:"created"`
	Replies    json.RawMessage `json:"replies"`
}

// User is the data object of /user/{name}/about.json.
type User struct {
	Name         string `json:"name"`
	IconImg      string `json:"icon_img"`
	SnoovatarImg string `json:"snoovatar_img"`
}

// About wraps User the way the endpoint returns it.
type About struct {
	Kind string `json:"kind"`
	Data User   `json:"data"`
}

// Subreddit is the subset of a t5 object the popular sidebar reads.
type Subreddit struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"display_name"`
	DisplayNamePrefixed string `json:"display_name_prefixed"`
	Title               string `json:"title"`
	IconImg             string `json:"icon_img"`
	CommunityIcon       string `json:"community_icon"`
	Subscribers         int    `json:"subscribers"`
}

// Thread is the two-element comments response: the item listing and the
// reply listing.
type Thread struct {
	Post    Listing[Post]
	Replies Listing[Comment]
}

// UnmarshalJSON decodes the [postListing, commentListing] array form.
func (t *Thread) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	if len(parts) > 0 {
		if err := json.Unmarshal(parts[0], &t.Post); err != nil {
			return err
		}
	}
	if len(parts) > 1 {
		if err := json.Unmarshal(parts[1], &t.Replies); err != nil {
			return err
		}
	}
	return nil
}
