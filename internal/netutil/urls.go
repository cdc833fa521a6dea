package netutil

import (
	"net"
	"sort"
	"strings"
)

// URLs lists the addresses the web form can be opened at for a listen
// address. An unspecified host (0.0.0.0, ::, empty) expands to every
// usable interface address, so a phone on the same network can reach it.
func URLs(scheme, listen string) ([]string, error) {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(host)
	if host != "" && (ip == nil || !ip.IsUnspecified()) {
		return []string{scheme + "://" + net.JoinHostPort(host, port)}, nil
	}
	hosts := append([]string{"127.0.0.1"}, interfaceIPs()...)
	urls := make([]string, 0, len(hosts))
	for _, h := range hosts {
		urls = append(urls, scheme+"://"+net.JoinHostPort(h, port))
	}
	return urls, nil
}

// HostIPs returns the IPs a certificate for listen should cover.
func HostIPs(listen string) []net.IP {
	host, _, err := net.SplitHostPort(listen)
	if err != nil {
		return nil
	}
	ips := []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback}
	if ip := net.ParseIP(host); ip != nil && !ip.IsUnspecified() {
		return append(ips, ip)
	}
	if host != "" && net.ParseIP(host) == nil {
		return ips
	}
	for _, s := range interfaceIPs() {
		ips = append(ips, net.ParseIP(s))
	}
	return ips
}

// interfaceIPs returns the up, non-loopback unicast addresses, IPv4 first.
func interfaceIPs() []string {
	ifaces, _ := net.Interfaces()
	var v4, v6 []string
	for _, iface := range ifaces {
		if (iface.Flags&net.FlagUp) == 0 || (iface.Flags&net.FlagLoopback) != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, addr := range addrs {
			ip := extractIP(addr)
			if !usableIP(ip) {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				v4 = append(v4, ip4.String())
			} else {
				v6 = append(v6, ip.String())
			}
		}
	}
	sort.Strings(v4)
	sort.Strings(v6)
	return append(v4, v6...)
}

func extractIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		s := addr.String()
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		return net.ParseIP(s)
	}
}

func usableIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() || ip.IsMulticast() || ip.IsUnspecified() {
		return false
	}
	return ip.IsGlobalUnicast()
}
