package jobimport

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"resume-coach/internal/shared/apperr"
)

const resolveTimeout = 2 * time.Second

var errBlockedAddress = errors.New("destination address is not allowed")

// cgnat is 100.64.0.0/10, which netip does not classify as private.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// URLGuard decides whether a user-supplied URL may be fetched.
type URLGuard struct {
	Resolver Resolver
}

// Check parses raw and rejects anything that is not a public HTTPS URL. It resolves the
// host so names pointing at internal addresses are refused before any request is made.
func (g URLGuard) Check(ctx context.Context, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, apperr.Validation("A valid job posting URL is required")
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, apperr.Validation("Only HTTPS URLs are supported")
	}
	if u.User != nil {
		return nil, apperr.Validation("This URL is not allowed")
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if blockedHostname(host) {
		return nil, apperr.Validation("This URL is not allowed")
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if blockedAddr(addr) {
			return nil, apperr.Validation("This URL is not allowed")
		}
		return u, nil
	}

	resolver := g.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	resCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	addrs, err := resolver.LookupNetIP(resCtx, "ip", host)
	if err != nil || len(addrs) == 0 {
		return nil, apperr.Validation("Could not resolve the job posting host")
	}
	for _, addr := range addrs {
		if blockedAddr(addr) {
			return nil, apperr.Validation("This URL is not allowed")
		}
	}
	return u, nil
}

func blockedHostname(host string) bool {
	if host == "" || host == "localhost" {
		return true
	}
	for _, suffix := range []string{".localhost", ".local", ".internal"} {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

func blockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		cgnat.Contains(addr)
}

// dialControl refuses connections to blocked addresses after DNS resolution, which covers
// names that change their answer between Check and the dial.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || blockedAddr(addr) {
		return errBlockedAddress
	}
	return nil
}
