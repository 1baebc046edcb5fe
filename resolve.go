package weather

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Resolver is the name service used by the client and the server.
// *net.Resolver implements it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// defaultResolver returns the system resolver.
func defaultResolver() Resolver {
	return net.DefaultResolver
}

// Endpoint is a resolved server address plus the name used to display it.
type Endpoint struct {
	Addr netip.AddrPort
	Name string
}

// UDPAddr returns the endpoint as a *net.UDPAddr.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return net.UDPAddrFromAddrPort(e.Addr)
}

// IP returns the numeric form of the endpoint address.
func (e Endpoint) IP() string {
	return e.Addr.Addr().String()
}

func (e Endpoint) String() string {
	return e.Name + " (" + e.Addr.String() + ")"
}

// Resolve turns host into an IPv4 endpoint on port. A dotted-quad host is
// used as is and only reverse-resolved for its display name, falling back
// to the numeric form. Any other host must resolve forward, otherwise
// ErrResolve is returned.
func Resolve(ctx context.Context, r Resolver, host string, port int) (Endpoint, error) {
	if port < 1 || port > 65535 {
		return Endpoint{}, errors.Wrapf(ErrInvalidInput, "port %d out of range", port)
	}

	if ip, err := netip.ParseAddr(host); err == nil && ip.Unmap().Is4() {
		ip = ip.Unmap()
		return Endpoint{
			Addr: netip.AddrPortFrom(ip, uint16(port)),
			Name: ReverseName(ctx, r, ip),
		}, nil
	}

	addrs, err := r.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return Endpoint{}, errors.Wrapf(ErrResolve, "%s: %v", host, err)
	}
	for _, ip := range addrs {
		if ip = ip.Unmap(); ip.Is4() {
			return Endpoint{Addr: netip.AddrPortFrom(ip, uint16(port)), Name: host}, nil
		}
	}
	return Endpoint{}, errors.Wrapf(ErrResolve, "%s: no IPv4 address", host)
}

// ReverseName returns the first name ip reverse-resolves to, or the
// numeric form of ip when the lookup fails. It never returns an error.
func ReverseName(ctx context.Context, r Resolver, ip netip.Addr) string {
	names, err := r.LookupAddr(ctx, ip.String())
	if err != nil || len(names) == 0 {
		return ip.String()
	}
	name := strings.TrimSuffix(names[0], ".")
	if name == "" {
		return ip.String()
	}
	return name
}

// addrPortOf normalizes a datagram source address for comparison.
func addrPortOf(addr net.Addr) (netip.AddrPort, bool) {
	switch a := addr.(type) {
	case *net.UDPAddr:
		ap := a.AddrPort()
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), true
	default:
		ap, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			return netip.AddrPort{}, false
		}
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), true
	}
}

// hostOf returns the IP part of addr, or the whole address string.
func hostOf(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
