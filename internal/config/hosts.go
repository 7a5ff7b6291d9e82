package config

import (
	"maps"
	"strings"

	"github.com/nao1215/cubegrab/internal/transport"
)

// HostConfig holds request settings for one panorama host.
type HostConfig struct {
	// Cookie is sent with every request. Format: "name=value; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Referer is usually the viewer page; many hosts refuse tiles without it.
	Referer string `yaml:"referer,omitempty"`

	// UserAgent overrides the global user agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// StitchConfig configures the projection step.
type StitchConfig struct {
	// Command is an external projector invocation, e.g.
	// ["kcube2sphere", "-o", "{out}", "{back}", ...]. Empty uses the built-in projector.
	Command []string `yaml:"command,omitempty"`

	// Quality is the JPEG quality, 1..100.
	Quality int `yaml:"quality,omitempty"`

	// Width of the equirectangular output in pixels.
	Width int `yaml:"width,omitempty"`
}

// File represents the structure of the .cubegrab configuration file.
type File struct {
	// Defaults apply to every host.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Hosts maps a host name to its settings. A key also covers its subdomains.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	Stitch StitchConfig `yaml:"stitch,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Hosts: make(map[string]HostConfig)}
}

// HostConfig returns the settings for host, merged over the defaults.
func (cf *File) HostConfig(host string) HostConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	hc, ok := cf.Hosts[strings.ToLower(host)]
	if !ok {
		return result
	}
	if hc.Cookie != "" {
		result.Cookie = hc.Cookie
	}
	if hc.Referer != "" {
		result.Referer = hc.Referer
	}
	if hc.UserAgent != "" {
		result.UserAgent = hc.UserAgent
	}
	if len(hc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(hc.Headers))
		}
		maps.Copy(result.Headers, hc.Headers)
	}
	return result
}

// TransportOptions converts the file into transport settings. Host entries
// are merged over the defaults so a host entry only needs what differs.
func (cf *File) TransportOptions() (hosts map[string]transport.HostHeaders, defaults transport.HostHeaders) {
	hosts = make(map[string]transport.HostHeaders, len(cf.Hosts))
	for host := range cf.Hosts {
		hosts[strings.ToLower(host)] = cf.HostConfig(host).headers()
	}
	return hosts, cf.Defaults.headers()
}

func (hc HostConfig) headers() transport.HostHeaders {
	return transport.HostHeaders{
		Headers:   hc.Headers,
		Cookie:    hc.Cookie,
		Referer:   hc.Referer,
		UserAgent: hc.UserAgent,
	}
}
