package domain

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CallbackRecord is the full snapshot of an inbound webhook request.
type CallbackRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Headers   http.Header `json:"headers"`
	Body      any         `json:"body"`
	Query     url.Values  `json:"query"`
	Method    string      `json:"method"`
	URL       string      `json:"url"`
	IP        string      `json:"ip"`
	UserAgent string      `json:"userAgent"`
}

// CallbackFile describes a persisted callback record.
type CallbackFile struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Filename is the name the record is stored under: the ISO timestamp with
// ':' and '.' replaced by '-'.
func (r CallbackRecord) Filename() string {
	stamp := r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "webhook-data-" + stamp + ".json"
}
