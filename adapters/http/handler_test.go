package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/copydata/adapters/clock"
	apihttp "github.com/artpar/copydata/adapters/http"
	"github.com/artpar/copydata/adapters/memory"
	"github.com/artpar/copydata/charm"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/interfaces/copydata"
	"github.com/artpar/copydata/pkg/jsonapi"
	"github.com/rs/zerolog"
)

var baseTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type document struct {
	Data   json.RawMessage `json:"data"`
	Errors []jsonapi.Error `json:"errors"`
	Meta   jsonapi.Meta    `json:"meta"`
}

func setupTestServer(t *testing.T) (*httptest.Server, *charm.CopyData) {
	t.Helper()

	rel := topology.Relation{ID: "copy:0", Name: "sink", Interface: copydata.Name, Provider: "a-feed", Requirer: "b-sink"}
	model := memory.NewModel(topology.Local{App: "b-sink", Unit: "b-sink/0", Leader: true}, memory.NewTransport(), rel)

	c, err := charm.New(model, registry.Default, clock.NewFake(baseTime), zerolog.Nop())
	if err != nil {
		t.Fatalf("charm.New() error = %v", err)
	}

	h := apihttp.NewHandler(c, model, registry.Default, zerolog.Nop())
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "# metrics\n") })
	srv := httptest.NewServer(apihttp.NewRouter(h, zerolog.Nop(), apihttp.RouterConfig{MetricsHandler: metrics}))
	t.Cleanup(srv.Close)
	return srv, c
}

func get(t *testing.T, srv *httptest.Server, path string) (int, document) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	return resp.StatusCode, doc
}

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t)
	code, doc := get(t, srv, "/health")
	if code != http.StatusOK || doc.Meta["status"] != "ok" {
		t.Errorf("GET /health = %d %+v", code, doc)
	}
}

func TestStatus(t *testing.T) {
	srv, c := setupTestServer(t)
	if _, err := c.UpdateStatus(context.Background()); err != nil {
		t.Fatal(err)
	}

	code, doc := get(t, srv, "/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var res jsonapi.Resource
	json.Unmarshal(doc.Data, &res)
	if res.ID != "b-sink/0" || res.Attributes["state"] != "active" {
		t.Errorf("resource = %+v", res)
	}
	if !strings.HasPrefix(res.Attributes["message"].(string), "() :: APP bool (false)") {
		t.Errorf("message = %q", res.Attributes["message"])
	}
}

func TestRelations(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, doc := get(t, srv, "/relations")
	var list []jsonapi.Resource
	json.Unmarshal(doc.Data, &list)
	if code != http.StatusOK || len(list) != 1 || list[0].ID != "sink" || list[0].Attributes["role"] != "requirer" {
		t.Errorf("GET /relations = %d %+v", code, list)
	}

	code, doc = get(t, srv, "/relations/nope")
	if code != http.StatusNotFound || len(doc.Errors) != 1 {
		t.Errorf("GET /relations/nope = %d %+v", code, doc.Errors)
	}
}

func TestDatabag(t *testing.T) {
	srv, c := setupTestServer(t)
	ctx := context.Background()

	unit, err := c.Interface().Select(topology.Unit("b-sink/0"))
	if err != nil {
		t.Fatal(err)
	}
	if err := unit.Set(ctx, copydata.Int, 7); err != nil {
		t.Fatal(err)
	}

	code, doc := get(t, srv, "/relations/sink/databags/b-sink/0")
	if code != http.StatusOK {
		t.Fatalf("status = %d, errors %+v", code, doc.Errors)
	}
	var res jsonapi.Resource
	json.Unmarshal(doc.Data, &res)
	if res.ID != "copy:0/b-sink/0" {
		t.Errorf("ID = %q", res.ID)
	}
	if res.Attributes["int"] != float64(7) || res.Attributes["ipaddr"] != "0.0.0.0" {
		t.Errorf("attributes = %+v", res.Attributes)
	}
	if res.Meta["interface"] != "copy-data-requirer-unit" || res.Meta["writable"] != true {
		t.Errorf("meta = %+v", res.Meta)
	}
	raw, _ := res.Meta["raw"].(map[string]any)
	if len(raw) != 1 || raw["int"] != "7" {
		t.Errorf("meta raw = %+v, want only int=\"7\"", res.Meta["raw"])
	}

	// The remote unit is readable but not writable.
	code, doc = get(t, srv, "/relations/sink/databags/a-feed/0")
	json.Unmarshal(doc.Data, &res)
	if code != http.StatusOK || res.Meta["writable"] != false {
		t.Errorf("remote unit = %d %+v", code, res.Meta)
	}

	if code, _ := get(t, srv, "/relations/sink/databags/c-other"); code != http.StatusNotFound {
		t.Errorf("foreign app status = %d, want 404", code)
	}
	if code, _ := get(t, srv, "/relations/sink/databags/a/b/c"); code != http.StatusBadRequest {
		t.Errorf("malformed entity status = %d, want 400", code)
	}
}

func TestInterfaces(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, doc := get(t, srv, "/interfaces")
	var list []jsonapi.Resource
	json.Unmarshal(doc.Data, &list)
	found := false
	for _, r := range list {
		if r.ID == copydata.Name {
			found = true
		}
	}
	if code != http.StatusOK || !found {
		t.Errorf("GET /interfaces = %d %+v", code, list)
	}

	resp, err := http.Get(srv.URL + "/interfaces/" + copydata.Name)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "privport") || !strings.Contains(string(body), "[provider/app]") {
		t.Errorf("describe body = %s", body)
	}
}

func TestMetricsMounted(t *testing.T) {
	srv, _ := setupTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
