package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meur/tierrank/internal/api"
	"github.com/meur/tierrank/internal/metrics"
	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func newServer(t *testing.T) *api.Server {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return api.New(store, api.WithMetrics(metrics.New()))
}

func do(srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestTierEndpoints(t *testing.T) {
	Convey("Given a server with tiers S, A, B", t, func() {
		srv := newServer(t)
		for _, name := range []string{"S", "A", "B"} {
			rec := do(srv, http.MethodPost, "/api/tiers", `{"name":"`+name+`","color":"#ff7f7f"}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)
		}

		Convey("GET /api/tiers lists them by rank", func() {
			rec := do(srv, http.MethodGet, "/api/tiers", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			tiers := decode[[]models.Tier](t, rec)
			So(tiers, ShouldHaveLength, 3)
			So(tiers[2].Name, ShouldEqual, "B")
			So(tiers[2].Rank, ShouldEqual, 2)
		})

		Convey("A bad color is a 400", func() {
			rec := do(srv, http.MethodPost, "/api/tiers", `{"name":"C","color":"blue"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[map[string]string](t, rec)["error"], ShouldContainSubstring, "color")
		})

		Convey("Unknown body fields are a 400", func() {
			rec := do(srv, http.MethodPost, "/api/tiers", `{"name":"C","color":"#ffffff","rank":0}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Moving B up reports moved, moving S up does not", func() {
			rec := do(srv, http.MethodPost, "/api/tiers/B/move", `{"direction":"up"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]bool](t, rec)["moved"], ShouldBeTrue)

			rec = do(srv, http.MethodPost, "/api/tiers/S/move", `{"direction":"up"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]bool](t, rec)["moved"], ShouldBeFalse)
		})

		Convey("An unknown direction is a 400 and an unknown tier a 404", func() {
			So(do(srv, http.MethodPost, "/api/tiers/B/move", `{"direction":"left"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(srv, http.MethodPost, "/api/tiers/Q/move", `{"direction":"up"}`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Renaming to a name with a space works through the path", func() {
			rec := do(srv, http.MethodPut, "/api/tiers/S", `{"name":"Top Tier","color":"#000000"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(do(srv, http.MethodGet, "/api/tiers/Top%20Tier", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Deleting a tier in use is a 409", func() {
			So(do(srv, http.MethodPost, "/api/items", `{"name":"y","tier":"A"}`).Code, ShouldEqual, http.StatusCreated)
			So(do(srv, http.MethodDelete, "/api/tiers/A", "").Code, ShouldEqual, http.StatusConflict)
			So(do(srv, http.MethodDelete, "/api/tiers/B", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestItemAndOrderingEndpoints(t *testing.T) {
	Convey("Given tiers S, A and items x->S, y->A, w unassigned", t, func() {
		srv := newServer(t)
		do(srv, http.MethodPost, "/api/tiers", `{"name":"S","color":"#ff7f7f"}`)
		do(srv, http.MethodPost, "/api/tiers", `{"name":"A","color":"#ffbf7f"}`)
		do(srv, http.MethodPost, "/api/items", `{"name":"x","tier":"S"}`)
		do(srv, http.MethodPost, "/api/items", `{"name":"y","tier":"A"}`)
		do(srv, http.MethodPost, "/api/items", `{"name":"w"}`)

		Convey("The board has three lanes", func() {
			rec := do(srv, http.MethodGet, "/api/board", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			board := decode[models.Board](t, rec)
			So(board.Lanes, ShouldHaveLength, 3)
			So(board.Lanes[2].Tier, ShouldBeNil)
			So(board.Lanes[2].Items[0].Name, ShouldEqual, "w")
		})

		Convey("Assigning w to S places it after x", func() {
			rec := do(srv, http.MethodPut, "/api/items/w", `{"tier":"S"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			item := decode[models.Item](t, rec)
			So(*item.Position, ShouldEqual, 1)
		})

		Convey("A valid reorder is applied", func() {
			rec := do(srv, http.MethodPost, "/api/reorder", `{"assignments":[
				{"item":"y","tier":"S","position":0},
				{"item":"x","tier":"A","position":1},
				{"item":"w","tier":null,"position":2}
			]}`)
			So(rec.Code, ShouldEqual, http.StatusOK)

			rec = do(srv, http.MethodGet, "/api/items/y", "")
			item := decode[models.Item](t, rec)
			So(*item.Tier, ShouldEqual, "S")
			So(*item.Position, ShouldEqual, 0)
		})

		Convey("A reorder naming an unknown item is a 400 and changes nothing", func() {
			rec := do(srv, http.MethodPost, "/api/reorder", `{"assignments":[
				{"item":"y","tier":"S","position":0},
				{"item":"ghost","tier":"A","position":1}
			]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			rec = do(srv, http.MethodGet, "/api/items/y", "")
			item := decode[models.Item](t, rec)
			So(*item.Tier, ShouldEqual, "A")
			So(*item.Position, ShouldEqual, 1)
		})

		Convey("A reorder entry without a position is a 400 and changes nothing", func() {
			rec := do(srv, http.MethodPost, "/api/reorder", `{"assignments":[
				{"item":"x","tier":"S"},
				{"item":"y","tier":"A","position":1},
				{"item":"w","tier":null,"position":2}
			]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[map[string]string](t, rec)["error"], ShouldContainSubstring, "assignments[0].position")

			rec = do(srv, http.MethodGet, "/api/items/x", "")
			item := decode[models.Item](t, rec)
			So(*item.Tier, ShouldEqual, "S")
			So(*item.Position, ShouldEqual, 0)

			rec = do(srv, http.MethodGet, "/api/items/w", "")
			So(*decode[models.Item](t, rec).Position, ShouldEqual, 2)
		})

		Convey("Recompute and check report a healthy store", func() {
			rec := do(srv, http.MethodPost, "/api/positions/recompute", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]int](t, rec)["items"], ShouldEqual, 3)

			rec = do(srv, http.MethodGet, "/api/check", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"dense":true`)
		})

		Convey("Deleting an unknown item is a 404", func() {
			So(do(srv, http.MethodDelete, "/api/items/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Requests show up in /metrics", func() {
			rec := do(srv, http.MethodGet, "/metrics", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `route="/api/items"`)
		})
	})
}

func TestHealth(t *testing.T) {
	Convey("GET /health answers OK", t, func() {
		rec := do(newServer(t), http.MethodGet, "/health", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Body.String(), ShouldEqual, "OK")
	})
}

func TestStaticFiles(t *testing.T) {
	Convey("Given a server with a static directory", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>board</h1>"), 0o644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644), ShouldBeNil)

		store, err := storage.New(filepath.Join(t.TempDir(), "static.db"))
		So(err, ShouldBeNil)
		Reset(func() { store.Close() })
		srv := api.New(store, api.WithStaticDir(dir))

		Convey("Existing files are served as-is", func() {
			rec := do(srv, http.MethodGet, "/app.js", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "console.log(1)")
		})

		Convey("Unknown paths fall back to index.html", func() {
			rec := do(srv, http.MethodGet, "/board/S", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "board")
		})

		Convey("The API still wins over the fallback", func() {
			So(do(srv, http.MethodGet, "/api/tiers", "").Code, ShouldEqual, http.StatusOK)
			So(do(srv, http.MethodGet, "/health", "").Body.String(), ShouldEqual, "OK")
		})
	})
}
