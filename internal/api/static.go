package api

import (
	"net/http"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// mountStatic serves the board UI from dir at the root. Paths that do not
// name a file fall back to index.html so client-side routes resolve.
func mountStatic(r chi.Router, dir string) {
	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		if f, err := root.Open(path.Clean(req.URL.Path)); err == nil {
			f.Close()
			files.ServeHTTP(w, req)
			return
		}
		http.ServeFile(w, req, index)
	})
}
