package etcd_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/artpar/copydata/adapters/etcd"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

// dial connects to the cluster named by COPYDATA_ETCD_ENDPOINTS and skips
// the test when it is unset.
func dial(t *testing.T) *etcd.Transport {
	t.Helper()
	endpoints := os.Getenv("COPYDATA_ETCD_ENDPOINTS")
	if endpoints == "" {
		t.Skip("COPYDATA_ETCD_ENDPOINTS not set")
	}

	tr, err := etcd.Dial(etcd.Config{
		Endpoints:   strings.Split(endpoints, ","),
		DialTimeout: 2 * time.Second,
		Prefix:      fmt.Sprintf("/copydata-test/%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestDatabag_GetSet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tr := dial(t)

	bag := tr.Databag("sink:1", topology.App("b-sink"))
	if _, ok, err := bag.Get(ctx, "int"); ok || err != nil {
		t.Fatalf("Get() on empty bag = ok %v, err %v", ok, err)
	}
	if err := bag.Set(ctx, "int", "5"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := bag.Get(ctx, "int")
	if err != nil || !ok || v != "5" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}
}

func TestDatabag_AppPrefixExcludesUnits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tr := dial(t)

	tr.Databag("sink:1", topology.App("b-sink")).Set(ctx, "k", "app")
	tr.Databag("sink:1", topology.Unit("b-sink/0")).Set(ctx, "k", "unit")

	dump, err := tr.Databag("sink:1", topology.App("b-sink")).(ports.DatabagDumper).Dump(ctx)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(dump) != 1 || dump["k"] != "app" {
		t.Errorf("Dump() = %v", dump)
	}
}
