package types

import "testing"

func TestResponseIsXML(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		want        bool
	}{
		{"xml content type", "https://x/sitemap", "application/xml", true},
		{"text xml", "https://x/sitemap", "text/xml; charset=utf-8", true},
		{"xhtml is not xml", "https://x/page", "application/xhtml+xml", false},
		{"xml suffix", "https://x/sitemap.xml", "text/html", true},
		{"plain html", "https://x/page", "text/html", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.url)
			if err != nil {
				t.Fatal(err)
			}
			resp := &Response{Request: req, ContentType: tt.contentType}
			if got := resp.IsXML(); got != tt.want {
				t.Errorf("IsXML = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponseDocumentLazy(t *testing.T) {
	req, err := NewRequest("https://x/page")
	if err != nil {
		t.Fatal(err)
	}
	resp := &Response{Request: req, Body: []byte("<html><body><p>hi</p></body></html>")}

	doc, err := resp.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Find("p").Text() != "hi" {
		t.Errorf("text = %q", doc.Find("p").Text())
	}
	doc2, err := resp.Document()
	if err != nil {
		t.Fatal(err)
	}
	if doc != doc2 {
		t.Error("Document not cached")
	}
}

func TestNewRequestRejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "ftp://host/x", "not a url", "/relative/only"} {
		if _, err := NewRequest(raw); err == nil {
			t.Errorf("NewRequest(%q) accepted", raw)
		}
	}
}
