package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/pkordes/webcomics/internal/tenancy"
)

// rss is an RSS 2.0 document.
type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description string  `xml:"description"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Feed handles GET /feed: RSS 2.0 of the newest live pages.
func (s *Server) Feed(w http.ResponseWriter, r *http.Request) {
	t := tenantOf(r)
	items, err := s.svc.Reader.Feed(r.Context(), t)
	if err != nil {
		s.writeError(w, r, "feed", err)
		return
	}

	base := tenancy.Scheme(r) + "://" + t.Domain
	doc := rss{
		Version: "2.0",
		Channel: rssChannel{Title: t.Title, Link: base + "/", Description: t.Description},
	}
	for _, it := range items {
		link := base + comicURL(it.Page.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       it.Page.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     it.Page.PostedAt.UTC().Format(time.RFC1123Z),
			Description: it.PostHTML,
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", publicCache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		s.log.ErrorContext(r.Context(), "write feed", "error", err)
	}
}
