// ABOUTME: mDNS advertisement of the control server, so LAN clients can find it without a fixed address
// ABOUTME: mDNS advertisement for the remote control surface via hashicorp/mdns

package netctl

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hashicorp/mdns"
)

const serviceType = "_spatialrt._tcp"

type mdnsAdvertiser struct {
	server *mdns.Server
}

func newMDNSAdvertiser(name, addr string) (*mdnsAdvertiser, error) {
	port, err := portFromAddr(addr)
	if err != nil {
		return nil, err
	}

	ips, err := localIPs()
	if err != nil {
		return nil, fmt.Errorf("netctl: local ips: %w", err)
	}

	service, err := mdns.NewMDNSService(name, serviceType, "", "", port, ips, []string{"path=/control"})
	if err != nil {
		return nil, fmt.Errorf("netctl: mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("netctl: mdns server: %w", err)
	}

	return &mdnsAdvertiser{server: server}, nil
}

func (a *mdnsAdvertiser) Stop() {
	a.server.Shutdown()
}

func portFromAddr(addr string) (int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return 0, fmt.Errorf("netctl: address %q has no port", addr)
	}
	return strconv.Atoi(addr[idx+1:])
}

func localIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if v4 := ipnet.IP.To4(); v4 != nil {
					ips = append(ips, v4)
				}
			}
		}
	}
	return ips, nil
}
