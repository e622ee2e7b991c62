package parser

import (
	"testing"
)

func TestMetadata(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<title>Panadol Extra - DVAGO</title>
		<meta name="description" content="Pain relief tablets">
		<meta property="og:title" content="Panadol Extra">
		<meta name="viewport" content="width=device-width">
		<script type="application/ld+json">{"@type":"Product","name":"Panadol Extra"}</script>
	</head><body></body></html>`)

	meta := Metadata(doc)

	if got := meta["description"]; got != "Pain relief tablets" {
		t.Errorf("description = %v", got)
	}
	if got := meta["og:title"]; got != "Panadol Extra" {
		t.Errorf("og:title = %v", got)
	}
	if _, ok := meta["viewport"]; ok {
		t.Error("viewport should be filtered out")
	}
	if got := meta["page_title"]; got != "Panadol Extra - DVAGO" {
		t.Errorf("page_title = %v", got)
	}

	ld, ok := meta["json_ld"].(map[string]any)
	if !ok {
		t.Fatalf("json_ld = %T, want map", meta["json_ld"])
	}
	if ld["@type"] != "Product" {
		t.Errorf("json_ld @type = %v", ld["@type"])
	}
}

func TestMetadataSkipsMalformedJSONLD(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<script type="application/ld+json">{broken</script>
		<script type="application/ld+json">{"name":"ok"}</script>
	</head><body></body></html>`)

	meta := Metadata(doc)
	ld, ok := meta["json_ld"].(map[string]any)
	if !ok {
		t.Fatalf("json_ld = %T, want map", meta["json_ld"])
	}
	if ld["name"] != "ok" {
		t.Errorf("json_ld name = %v", ld["name"])
	}
}

func TestMetadataEmptyPage(t *testing.T) {
	doc := parseDoc(t, `<html><head></head><body></body></html>`)
	meta := Metadata(doc)
	if meta == nil {
		t.Fatal("Metadata returned nil")
	}
	if len(meta) != 0 {
		t.Errorf("Metadata = %v, want empty", meta)
	}
}
