package codec

import (
	"fmt"
	"net/netip"
)

// IPAddress encodes an IPv4 or IPv6 address in its canonical text form.
type IPAddress struct{}

func (IPAddress) Tag() Tag { return TagIPAddress }

func (IPAddress) Encode(v netip.Addr) (string, error) {
	if !v.IsValid() {
		return "", &EncodeError{Tag: TagIPAddress, Value: v, Reason: "invalid address"}
	}
	return v.String(), nil
}

func (IPAddress) Decode(s string) (netip.Addr, error) {
	v, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, &DecodeError{Tag: TagIPAddress, Data: s, Err: err}
	}
	return v, nil
}

// IPNetwork encodes a network in CIDR notation. Only canonical networks
// (no host bits set) are accepted in either direction.
type IPNetwork struct{}

func (IPNetwork) Tag() Tag { return TagIPNetwork }

func (IPNetwork) Encode(v netip.Prefix) (string, error) {
	if !v.IsValid() {
		return "", &EncodeError{Tag: TagIPNetwork, Value: v, Reason: "invalid network"}
	}
	if v != v.Masked() {
		return "", &EncodeError{Tag: TagIPNetwork, Value: v, Reason: "host bits set"}
	}
	return v.String(), nil
}

func (IPNetwork) Decode(s string) (netip.Prefix, error) {
	v, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, &DecodeError{Tag: TagIPNetwork, Data: s, Err: err}
	}
	if v != v.Masked() {
		return netip.Prefix{}, &DecodeError{
			Tag:  TagIPNetwork,
			Data: s,
			Err:  fmt.Errorf("host bits set, network is %s", v.Masked()),
		}
	}
	return v, nil
}
