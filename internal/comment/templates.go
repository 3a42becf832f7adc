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

package comment

import (
	"fmt"
	"strings"

	"github.com/mikelane/railway-preview/internal/discovery"
	"github.com/mikelane/railway-preview/internal/railway"
)

// Phase selects the comment template.
type Phase string

// Lifecycle phases, one template each.
const (
	PhaseCreating Phase = "creating"
	PhaseCreated  Phase = "created"
	PhaseUpdated  Phase = "updated"
	PhaseDeleted  Phase = "deleted"
)

// View is what a status comment shows.
type View struct {
	Phase           Phase
	EnvironmentName string
	URLs            []railway.DeploymentURL
	// DeployFailed adds a note that the deployment must be started by hand
	DeployFailed bool
}

// Render produces the markdown body for v.
func Render(v View) string {
	var b strings.Builder

	switch v.Phase {
	case PhaseDeleted:
		fmt.Fprintf(&b, "## 🗑️ %s Deleted\n\n", LegacyMarker)
		fmt.Fprintf(&b, "The preview environment **%s** has been deleted as the PR was closed.", v.EnvironmentName)

	case PhaseCreating:
		fmt.Fprintf(&b, "## 🚀 %s Creating\n\n", LegacyMarker)
		fmt.Fprintf(&b, "**Environment:** %s\n", v.EnvironmentName)
		b.WriteString("**Status:** 🔄 Creating and deploying...\n\n")
		b.WriteString("*Deployment URLs will appear here once the build completes (usually takes 1-2 minutes).*\n\n")
		b.WriteString("---\n")
		b.WriteString("*This comment will be automatically updated with deployment URLs.*")

	default:
		heading := "Updated"
		if v.Phase == PhaseCreated {
			heading = "Ready"
		}
		status := "🔄 Deploying..."
		if len(v.URLs) > 0 {
			status = "✅ Ready"
		}

		fmt.Fprintf(&b, "## 🚀 %s %s\n\n", LegacyMarker, heading)
		fmt.Fprintf(&b, "**Environment:** %s\n", v.EnvironmentName)
		fmt.Fprintf(&b, "**Status:** %s", status)
		writeURLs(&b, v.URLs)
		if v.DeployFailed {
			b.WriteString("\n\n> ⚠️ The deployment could not be triggered automatically. Trigger it manually from the Railway dashboard.")
		}
		b.WriteString("\n\n---\n")
		b.WriteString("*This comment is automatically updated when the PR is synchronized.*")
	}

	return b.String()
}

func writeURLs(b *strings.Builder, urls []railway.DeploymentURL) {
	if len(urls) == 0 {
		b.WriteString("\n\n*🔄 Deployment URLs will appear here once the build completes...*")
		return
	}

	b.WriteString("\n\n**🔗 Deployment URLs:**")
	groups := discovery.GroupByService(urls)
	for _, g := range groups {
		if len(groups) > 1 {
			fmt.Fprintf(b, "\n\n**%s:**", g.Service)
		}
		for _, u := range g.URLs {
			fmt.Fprintf(b, "\n- [%s](%s)%s", u.Domain, u.URL, typeLabel(u.Type))
		}
	}
}

func typeLabel(t railway.URLType) string {
	switch t {
	case railway.URLTypeCustom:
		return " (Custom Domain)"
	case railway.URLTypeStatic:
		return " (Static)"
	}
	return ""
}
