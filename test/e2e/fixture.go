package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
)

// listing renders a minimal top.json body with one post per title.
func listing(category string, titles ...string) string {
	children := ""
	for i, title := range titles {
		if i > 0 {
			children += ","
		}
		children += fmt.Sprintf(`{"kind":"t3","data":{"id":"%s%d","author":"fixture","title":%q,"subreddit":%q,"score":%d,"created_utc":1700000000}}`,
			category, i, title, category, 100-i)
	}
	return `{"kind":"Listing","data":{"children":[` + children + `]}}`
}

// newFakeReddit serves deterministic listings for the categories the UI
// and rmctl touch, the daily sources and the popular communities.
func newFakeReddit() *httptest.Server {
	mux := http.NewServeMux()
	body := map[string]string{
		"/r/golang/top.json":    listing("golang", "Fixture Post One", "Fixture Post Two"),
		"/r/pics/top.json":      listing("pics", "Pics Post"),
		"/r/AskReddit/top.json": listing("AskReddit", "Ask thread"),
		"/r/news/top.json":      listing("news", "News thread"),
		"/r/movies/top.json":    listing("movies", "Movies thread"),
		"/subreddits/popular.json": `{"kind":"Listing","data":{"children":[
			{"kind":"t5","data":{"id":"fx1","display_name":"FixtureCommunity","display_name_prefixed":"r/FixtureCommunity","icon_img":"https://i.test/icon.png","subscribers":1234}}
		]}}`,
		"/user/fixture/about.json": `{"kind":"t2","data":{"name":"fixture","icon_img":"https://i.test/fixture.png"}}`,
	}
	for path, b := range body {
		b := b
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(b))
		})
	}
	return httptest.NewServer(mux)
}
