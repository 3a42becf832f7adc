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

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation is a parsed GraphQL document holding exactly one named operation.
type Operation struct {
	Name  string
	Query string
	// Mutation is set for mutation documents. They are not resent after a
	// failure the server may have processed.
	Mutation bool
}

// mustParse parses query and panics if it is not a single named operation.
// Only used for package-level documents.
func mustParse(query string) *Operation {
	doc, err := parser.ParseQuery(&ast.Source{Name: "railway", Input: query})
	if err != nil {
		panic(fmt.Sprintf("railway: invalid query document: %v", err))
	}
	if len(doc.Operations) != 1 || doc.Operations[0].Name == "" {
		panic("railway: query document must contain exactly one named operation")
	}
	return &Operation{
		Name:     doc.Operations[0].Name,
		Query:    query,
		Mutation: doc.Operations[0].Operation == ast.Mutation,
	}
}

var getEnvironmentOp = mustParse(`
query environment($id: String!) {
  environment(id: $id) {
    id
    name
    projectId
    isEphemeral
    serviceInstances {
      edges {
        node {
          id
          serviceId
          serviceName
          domains {
            serviceDomains {
              id
              domain
            }
            customDomains {
              id
              domain
            }
          }
          latestDeployment {
            id
            url
            staticUrl
            status
          }
        }
      }
    }
  }
}`)

var createEnvironmentOp = mustParse(`
mutation environmentCreate($input: EnvironmentCreateInput!) {
  environmentCreate(input: $input) {
    id
    name
    projectId
    isEphemeral
    serviceInstances {
      edges {
        node {
          id
          serviceId
          serviceName
          domains {
            serviceDomains {
              id
              domain
            }
          }
        }
      }
    }
  }
}`)

var deleteEnvironmentOp = mustParse(`
mutation environmentDelete($id: String!) {
  environmentDelete(id: $id)
}`)

var projectEnvironmentsOp = mustParse(`
query project($id: String!) {
  project(id: $id) {
    id
    name
    environments {
      edges {
        node {
          id
          name
          isEphemeral
        }
      }
    }
  }
}`)

var environmentsConnectionOp = mustParse(`
query environments($projectId: String!) {
  environments(projectId: $projectId) {
    edges {
      node {
        id
        name
        isEphemeral
      }
    }
  }
}`)

var environmentsFlatOp = mustParse(`
query environmentsFlat($projectId: String!) {
  environments(projectId: $projectId) {
    id
    name
    isEphemeral
  }
}`)

var serviceInstanceRedeployOp = mustParse(`
mutation serviceInstanceRedeploy($environmentId: String!, $serviceId: String!) {
  serviceInstanceRedeploy(environmentId: $environmentId, serviceId: $serviceId)
}`)

var environmentTriggersDeployOp = mustParse(`
mutation environmentTriggersDeploy($input: EnvironmentTriggersDeployInput!) {
  environmentTriggersDeploy(input: $input)
}`)

var deploymentRestartOp = mustParse(`
mutation deploymentRestart($id: String!) {
  deploymentRestart(id: $id)
}`)
