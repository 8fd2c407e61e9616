package httptransport

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"registro/pkg/platform/httputil"
)

// staticHandler serves the registration form page and its assets from dir.
// GET requests for paths that do not exist fall back to index.html; other
// methods get a JSON 404.
func staticHandler(dir string) http.HandlerFunc {
	notFound := func(w http.ResponseWriter) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "resource not found",
		})
	}
	if dir == "" {
		return func(w http.ResponseWriter, _ *http.Request) { notFound(w) }
	}

	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			notFound(w)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if name != "/" && !strings.HasSuffix(name, "/") {
			if f, err := root.Open(name); err == nil {
				info, statErr := f.Stat()
				_ = f.Close()
				if statErr == nil && !info.IsDir() {
					files.ServeHTTP(w, r)
					return
				}
			}
		}

		if _, err := os.Stat(index); err != nil {
			notFound(w)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
