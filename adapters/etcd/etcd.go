// Package etcd stores relation databags in an etcd cluster so that units on
// different hosts share one view of relation data.
//
// Keys have the form <prefix>/<relation id>/<entity>/<key>. Each segment is
// path-escaped, so a unit name such as "app/0" stays one segment and the
// prefix of an application bag never matches the keys of its units.
package etcd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Config configures the client.
type Config struct {
	Endpoints   []string
	DialTimeout time.Duration
	Prefix      string
}

// Transport implements ports.Transport on etcd.
type Transport struct {
	client *clientv3.Client
	prefix string
}

// Dial connects to the cluster. The caller must call Close when finished.
func Dial(cfg Config) (*Transport, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd dial: %w", err)
	}
	return New(client, cfg.Prefix), nil
}

// New wraps an existing client.
func New(client *clientv3.Client, prefix string) *Transport {
	return &Transport{client: client, prefix: strings.TrimRight(prefix, "/")}
}

// Close releases the client connection.
func (t *Transport) Close() error {
	return t.client.Close()
}

// Databag returns the bag of e within relationID.
func (t *Transport) Databag(relationID string, e topology.Entity) ports.Databag {
	return &Databag{
		client: t.client,
		base:   fmt.Sprintf("%s/%s/%s/", t.prefix, url.PathEscape(relationID), url.PathEscape(e.Name)),
	}
}

// Databag is one entity's keys under a common prefix.
type Databag struct {
	client *clientv3.Client
	base   string
}

func (d *Databag) key(k string) string {
	return d.base + url.PathEscape(k)
}

// Get reads one key. A missing key is reported as absent, not as an error.
func (d *Databag) Get(ctx context.Context, key string) (string, bool, error) {
	k := d.key(key)
	resp, err := d.client.Get(ctx, k)
	if err != nil {
		return "", false, fmt.Errorf("etcd get %q: %w", k, err)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

// Set writes one key.
func (d *Databag) Set(ctx context.Context, key, value string) error {
	k := d.key(key)
	if _, err := d.client.Put(ctx, k, value); err != nil {
		return fmt.Errorf("etcd put %q: %w", k, err)
	}
	return nil
}

// Dump lists every key of the bag.
func (d *Databag) Dump(ctx context.Context) (map[string]string, error) {
	resp, err := d.client.Get(ctx, d.base, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("etcd list %q: %w", d.base, err)
	}
	out := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		name, err := url.PathUnescape(strings.TrimPrefix(string(kv.Key), d.base))
		if err != nil {
			return nil, fmt.Errorf("etcd key %q: %w", kv.Key, err)
		}
		out[name] = string(kv.Value)
	}
	return out, nil
}

var (
	_ ports.Transport     = (*Transport)(nil)
	_ ports.Databag       = (*Databag)(nil)
	_ ports.DatabagDumper = (*Databag)(nil)
)
