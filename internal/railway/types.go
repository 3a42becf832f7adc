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

package railway

// Environment is a Railway environment together with its service instances.
// Name uniqueness is scoped to ProjectID.
type Environment struct {
	ID               string
	Name             string
	ProjectID        string
	IsEphemeral      *bool
	ServiceInstances []ServiceInstance
}

// ServiceInstance is a service deployed into an environment.
type ServiceInstance struct {
	ID               string
	ServiceID        string
	ServiceName      string
	Domains          Domains
	LatestDeployment *Deployment
}

// Domains lists the hostnames attached to a service instance.
type Domains struct {
	ServiceDomains []Domain
	CustomDomains  []Domain
}

// Domain is a single hostname without scheme.
type Domain struct {
	ID     string
	Domain string
}

// Deployment is the most recent deployment of a service instance.
type Deployment struct {
	ID        string
	URL       string
	StaticURL string
	Status    string
}

// URLType classifies where a DeploymentURL was discovered.
type URLType string

const (
	// URLTypeService is a platform-assigned subdomain
	URLTypeService URLType = "service"
	// URLTypeCustom is a user-configured custom domain
	URLTypeCustom URLType = "custom"
	// URLTypeDeployment is the ad-hoc URL of the latest deployment
	URLTypeDeployment URLType = "deployment"
	// URLTypeStatic is the static asset URL of the latest deployment
	URLTypeStatic URLType = "static"
)

// DeploymentURL is an externally reachable address derived from an
// Environment snapshot. It is never persisted.
type DeploymentURL struct {
	URL         string
	Domain      string
	Type        URLType
	ServiceName string
}

// HasServices reports whether the snapshot carries any service instances.
func (e *Environment) HasServices() bool {
	return e != nil && len(e.ServiceInstances) > 0
}

// The API wraps lists in relay-style connections.
type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, edge := range c.Edges {
		out = append(out, edge.Node)
	}
	return out
}

type environmentNode struct {
	ID               string                          `json:"id"`
	Name             string                          `json:"name"`
	ProjectID        string                          `json:"projectId"`
	IsEphemeral      *bool                           `json:"isEphemeral"`
	ServiceInstances connection[serviceInstanceNode] `json:"serviceInstances"`
}

type serviceInstanceNode struct {
	ID          string `json:"id"`
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	Domains     struct {
		ServiceDomains []domainNode `json:"serviceDomains"`
		CustomDomains  []domainNode `json:"customDomains"`
	} `json:"domains"`
	LatestDeployment *deploymentNode `json:"latestDeployment"`
}

type domainNode struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
}

type deploymentNode struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	StaticURL string `json:"staticUrl"`
	Status    string `json:"status"`
}

func (n *environmentNode) toEnvironment() *Environment {
	env := &Environment{
		ID:          n.ID,
		Name:        n.Name,
		ProjectID:   n.ProjectID,
		IsEphemeral: n.IsEphemeral,
	}
	for _, si := range n.ServiceInstances.nodes() {
		env.ServiceInstances = append(env.ServiceInstances, si.toServiceInstance())
	}
	return env
}

func (n serviceInstanceNode) toServiceInstance() ServiceInstance {
	si := ServiceInstance{
		ID:          n.ID,
		ServiceID:   n.ServiceID,
		ServiceName: n.ServiceName,
		Domains: Domains{
			ServiceDomains: convertDomains(n.Domains.ServiceDomains),
			CustomDomains:  convertDomains(n.Domains.CustomDomains),
		},
	}
	if n.LatestDeployment != nil {
		si.LatestDeployment = &Deployment{
			ID:        n.LatestDeployment.ID,
			URL:       n.LatestDeployment.URL,
			StaticURL: n.LatestDeployment.StaticURL,
			Status:    n.LatestDeployment.Status,
		}
	}
	return si
}

func convertDomains(nodes []domainNode) []Domain {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Domain, 0, len(nodes))
	for _, d := range nodes {
		out = append(out, Domain{ID: d.ID, Domain: d.Domain})
	}
	return out
}
