package handler

import (
	"net/url"
	"strings"
)

// Param maps one inbound query parameter onto an upstream one.
type Param struct {
	Name     string
	Upstream string
}

// Route describes one gateway endpoint.
type Route struct {
	Name         string
	Path         string
	UpstreamPath string
	Params       []Param
	// Missing is the reply sent when any parameter is absent.
	Missing string
}

var Routes = []Route{
	{
		Name:         "gemini",
		Path:         "/gemini",
		UpstreamPath: "/ai/gemini",
		Params:       []Param{{Name: "prompt", Upstream: "text"}},
		Missing:      "Prompt is required",
	},
	{
		Name:         "geminiAdvance",
		Path:         "/geminiAdvance",
		UpstreamPath: "/ai/gemini-advance",
		Params:       []Param{{Name: "prompt", Upstream: "text"}},
		Missing:      "Prompt is required",
	},
	{
		Name:         "readImage",
		Path:         "/readImage",
		UpstreamPath: "/ai/gemini-img",
		Params: []Param{
			{Name: "prompt", Upstream: "text"},
			{Name: "imgURL", Upstream: "url"},
		},
		Missing: "Prompt and imgURL are required",
	},
	{
		Name:         "video",
		Path:         "/video",
		UpstreamPath: "/ai/gemini-video",
		Params: []Param{
			{Name: "prompt", Upstream: "text"},
			{Name: "videoURL", Upstream: "url"},
		},
		Missing: "Prompt and videoURL are required",
	},
}

// UpstreamQuery builds the upstream query string in parameter order.
// With escape false values are interpolated verbatim, so a value holding
// '&' or '#' changes the upstream request.
func (rt Route) UpstreamQuery(values url.Values, escape bool) string {
	var b strings.Builder
	for i, p := range rt.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		v := values.Get(p.Name)
		if escape {
			v = url.QueryEscape(v)
		}
		b.WriteString(p.Upstream)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}
