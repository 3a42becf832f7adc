// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package discovery

import (
	"context"
	"net/url"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/railway"
)

// DefaultServiceName labels URLs of services that have no name.
const DefaultServiceName = "Service"

type candidate struct {
	raw     string
	urlType railway.URLType
}

// Extract returns the deployment URLs exposed by env in discovery order:
// per service, platform domains, custom domains, then the latest
// deployment's URL and static URL. Bare hostnames get an https scheme.
// Values that do not parse as a URL with a host are dropped. Each URL
// appears once.
func Extract(ctx context.Context, env *railway.Environment) []railway.DeploymentURL {
	urls := []railway.DeploymentURL{}
	if env == nil {
		return urls
	}
	logger := log.FromContext(ctx)

	seen := sets.New[string]()
	for _, si := range env.ServiceInstances {
		serviceName := si.ServiceName
		if serviceName == "" {
			serviceName = DefaultServiceName
		}

		for _, c := range candidates(si) {
			u, err := normalize(c.raw)
			if err != nil {
				logger.V(1).Info("Discarding invalid deployment URL", "service", serviceName, "url", c.raw, "error", err.Error())
				continue
			}
			if seen.Has(u.String()) {
				continue
			}
			seen.Insert(u.String())
			urls = append(urls, railway.DeploymentURL{
				URL:         u.String(),
				Domain:      u.Hostname(),
				Type:        c.urlType,
				ServiceName: serviceName,
			})
		}
	}
	return urls
}

func candidates(si railway.ServiceInstance) []candidate {
	var out []candidate
	for _, d := range si.Domains.ServiceDomains {
		out = append(out, candidate{raw: d.Domain, urlType: railway.URLTypeService})
	}
	for _, d := range si.Domains.CustomDomains {
		out = append(out, candidate{raw: d.Domain, urlType: railway.URLTypeCustom})
	}
	if dep := si.LatestDeployment; dep != nil {
		if dep.URL != "" {
			out = append(out, candidate{raw: dep.URL, urlType: railway.URLTypeDeployment})
		}
		if dep.StaticURL != "" {
			out = append(out, candidate{raw: dep.StaticURL, urlType: railway.URLTypeStatic})
		}
	}
	return out
}

type invalidURLError string

func (e invalidURLError) Error() string { return string(e) }

func normalize(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalidURLError("empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, invalidURLError("missing host")
	}
	return u, nil
}

// ServiceURLs is the set of URLs belonging to one service.
type ServiceURLs struct {
	Service string
	URLs    []railway.DeploymentURL
}

// GroupByService groups urls by service name in order of first appearance.
func GroupByService(urls []railway.DeploymentURL) []ServiceURLs {
	var groups []ServiceURLs
	index := map[string]int{}
	for _, u := range urls {
		name := u.ServiceName
		if name == "" {
			name = DefaultServiceName
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ServiceURLs{Service: name})
		}
		groups[i].URLs = append(groups[i].URLs, u)
	}
	return groups
}
