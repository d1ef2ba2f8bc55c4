// file: internal/server/rss.go
// version: 1.0.0
// guid: 7e7038fc-9dfc-448a-9078-eed27878dd7d

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/jdfalk/newsdeck/internal/feed"
)

// BuildRSS renders the current display set as RSS 2.0.
func BuildRSS(st feed.State, link string, now time.Time) (string, error) {
	title := "newsdeck: " + st.Selection.Category
	if st.Selection.Country != "" {
		title += " (" + strings.ToUpper(st.Selection.Country) + ")"
	}
	out := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "Latest " + st.Selection.Category + " stories",
		Created:     now,
	}
	if !st.UpdatedAt.IsZero() {
		out.Updated = st.UpdatedAt
	}

	for _, a := range st.Articles {
		item := &feeds.Item{
			Id:          a.ID,
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Description: a.Description,
		}
		if a.Source != "" {
			item.Author = &feeds.Author{Name: a.Source}
		}
		if published := feed.PublishedTime(a.PublishedAt); published.Unix() > 0 {
			item.Created = published
		}
		out.Items = append(out.Items, item)
	}
	return out.ToRss()
}

func (s *Server) feedRSS(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	link := "http://" + c.Request.Host + "/api/v1/feed"
	body, err := BuildRSS(s.deps.Feed.State(), link, time.Now())
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, err.Error(), "RSS_FAILED")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}
