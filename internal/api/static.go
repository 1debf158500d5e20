package api

import (
	_ "embed"
	"net/http"
)

var (
	//go:embed assets/index.html
	indexHTML []byte

	//go:embed assets/favicon.ico
	faviconICO []byte
)

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	//nolint:errcheck // the client may have gone away
	w.Write(indexHTML)
}

func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/x-icon")
	//nolint:errcheck // the client may have gone away
	w.Write(faviconICO)
}
