package model

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is where a locally running dubbing service listens.
const DefaultBaseURL = "http://localhost:8700"

const (
	PathDubbingFile  = "/dubbing_file/"
	PathGetFile      = "/get_file"
	PathDownloadFile = "/get_file/"
	PathUUIDExists   = "/uuid_exists/"
	PathFeedbackForm = "/feedback_form/"
	PathStats        = "/stats/"
	PathVoices       = "/voices/"

	// ExtDubbed selects the dubbed rendition of an uploaded file.
	ExtDubbed = "dub"
)

// ServiceConfig locates the dubbing service.
type ServiceConfig struct {
	BaseURL string
}

// Endpoint joins the base URL and path without doubling the slash.
func (c ServiceConfig) Endpoint(path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + path
}

// EndpointWithQuery is Endpoint plus an encoded query string.
func (c ServiceConfig) EndpointWithQuery(path string, query url.Values) string {
	return c.Endpoint(path) + "?" + query.Encode()
}
