// Package copydata declares the relation-copy-data interface: the same set
// of typed attributes in every application and unit bucket of both sides.
//
// Importing the package registers the interface with registry.Default.
package copydata

import (
	"net/netip"

	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/core/value"
)

// Name is the registry name of the interface.
const Name = "relation-copy-data"

// Attribute names.
const (
	Bool     = "bool"
	Int      = "int"
	Float    = "float"
	Str      = "str"
	PrivPort = "privport"
	IPAddr   = "ipaddr"
	IPNet    = "ipnet"
)

// Attributes lists the attribute names in declaration order.
var Attributes = []string{Bool, Int, Float, Str, PrivPort, IPAddr, IPNet}

func attributes() []value.Descriptor {
	return []value.Descriptor{
		value.Boolean(Bool, false),
		value.Integer(Int, 0),
		value.Float(Float, 0.0),
		value.String(Str, ""),
		value.PrivilegedPort(PrivPort, 0).WithDoc("0 means unset"),
		value.IPAddress(IPAddr, netip.IPv4Unspecified()),
		value.IPNetwork(IPNet, netip.PrefixFrom(netip.IPv4Unspecified(), 32)),
	}
}

// Schema is the relation-copy-data contract.
var Schema = relation.MustSchema(Name, relation.Table{
	relation.ProviderApp:  bucket.MustApp("copy-data-provider-app", attributes()...),
	relation.ProviderUnit: bucket.MustUnit("copy-data-provider-unit", attributes()...),
	relation.RequirerApp:  bucket.MustApp("copy-data-requirer-app", attributes()...),
	relation.RequirerUnit: bucket.MustUnit("copy-data-requirer-unit", attributes()...),
})

func init() {
	registry.Register(Name, Schema)
}
