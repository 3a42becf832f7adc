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

package environment

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/railway-preview/internal/railway"
)

// fakePlatform keeps environments in memory and counts calls
type fakePlatform struct {
	envs        []railway.Environment
	nextID      int
	createCalls int
	deleteCalls int
	listCalls   map[string]int
	listErrs    map[string]error
	getErr      error
	// createErr is returned from CreateEnvironment; applied decides whether
	// the environment is stored first
	createErr error
	applied   bool
}

func newFakePlatform(envs ...railway.Environment) *fakePlatform {
	return &fakePlatform{
		envs:      envs,
		listCalls: map[string]int{},
		listErrs:  map[string]error{},
	}
}

func (f *fakePlatform) GetEnvironment(_ context.Context, id string) (*railway.Environment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.envs {
		if f.envs[i].ID == id {
			env := f.envs[i]
			return &env, nil
		}
	}
	return nil, &railway.NotFoundError{Kind: "environment", ID: id}
}

func (f *fakePlatform) CreateEnvironment(_ context.Context, in railway.CreateEnvironmentInput) (*railway.Environment, error) {
	f.createCalls++
	if f.createErr != nil && !f.applied {
		return nil, f.createErr
	}
	f.nextID++
	env := railway.Environment{
		ID:        "env-" + strings.Repeat("x", f.nextID),
		Name:      in.Name,
		ProjectID: in.ProjectID,
	}
	f.envs = append(f.envs, env)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &env, nil
}

func (f *fakePlatform) DeleteEnvironment(_ context.Context, id string) error {
	f.deleteCalls++
	for i := range f.envs {
		if f.envs[i].ID == id {
			f.envs = append(f.envs[:i], f.envs[i+1:]...)
			return nil
		}
	}
	return &railway.NotFoundError{Kind: "environment", ID: id}
}

func (f *fakePlatform) list(shape string) ([]railway.Environment, error) {
	f.listCalls[shape]++
	if err := f.listErrs[shape]; err != nil {
		return nil, err
	}
	return append([]railway.Environment(nil), f.envs...), nil
}

func (f *fakePlatform) ListProjectEnvironments(_ context.Context, _ string) ([]railway.Environment, error) {
	return f.list("project")
}

func (f *fakePlatform) ListEnvironmentsConnection(_ context.Context, _ string) ([]railway.Environment, error) {
	return f.list("connection")
}

func (f *fakePlatform) ListEnvironmentsFlat(_ context.Context, _ string) ([]railway.Environment, error) {
	return f.list("flat")
}

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		platform *fakePlatform
		registry *Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		platform = newFakePlatform(railway.Environment{ID: "env-prod", Name: "production", ProjectID: "proj-1"})
		registry = NewRegistry(platform)
	})

	Describe("Ensure", func() {
		It("creates the environment when none exists", func() {
			env, created, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(env.Name).To(Equal("pr-42"))
			Expect(platform.createCalls).To(Equal(1))
		})

		It("adopts the environment when the create response was lost", func() {
			platform.createErr = &railway.TransportError{StatusCode: 502}
			platform.applied = true

			env, created, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(env.Name).To(Equal("pr-42"))
			Expect(platform.createCalls).To(Equal(1))

			_, created, err = registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(platform.createCalls).To(Equal(1))
		})

		It("returns the transient error when the create was not applied", func() {
			platform.createErr = &railway.TransportError{StatusCode: 503}

			_, _, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(railway.IsTransient(err)).To(BeTrue())
			Expect(platform.createCalls).To(Equal(1))
		})

		It("does not look again after a non-transient create failure", func() {
			platform.createErr = &railway.QueryError{Operation: "environmentCreate", Messages: []string{"Not Authorized"}}
			platform.applied = true
			before := platform.listCalls["project"]

			_, _, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).To(HaveOccurred())
			Expect(platform.listCalls["project"]).To(Equal(before + 1))
		})

		It("returns the same environment on a second call without creating again", func() {
			first, created, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			second, created, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(second.ID).To(Equal(first.ID))
			Expect(platform.createCalls).To(Equal(1))
		})

		It("reuses an environment found by exact name", func() {
			platform.envs = append(platform.envs, railway.Environment{ID: "env-7", Name: "pr-7", ProjectID: "proj-1"})

			env, created, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-7")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(env.ID).To(Equal("env-7"))
			Expect(platform.createCalls).To(BeZero())
		})

		DescribeTable("rejects invalid names before any platform call",
			func(name string) {
				_, _, err := registry.Ensure(ctx, "proj-1", "env-prod", name)
				Expect(railway.IsValidation(err)).To(BeTrue())
				Expect(platform.listCalls).To(BeEmpty())
				Expect(platform.createCalls).To(BeZero())
			},
			Entry("too long", "pr-"+strings.Repeat("a", 48)),
			Entry("slash", "feature/login"),
			Entry("space", "pr 42"),
			Entry("dot", "pr-4.2"),
			Entry("empty", ""),
		)

		It("rejects a missing source environment", func() {
			_, _, err := registry.Ensure(ctx, "proj-1", "", "pr-42")
			Expect(railway.IsValidation(err)).To(BeTrue())
			Expect(platform.createCalls).To(BeZero())
		})

		It("fails without creating when the lookup fails", func() {
			boom := errors.New("boom")
			platform.listErrs["project"] = boom
			platform.listErrs["connection"] = boom
			platform.listErrs["flat"] = boom

			_, _, err := registry.Ensure(ctx, "proj-1", "env-prod", "pr-42")
			Expect(err).To(MatchError(boom))
			Expect(platform.createCalls).To(BeZero())
		})
	})

	Describe("ListByProject", func() {
		It("uses the first strategy that succeeds", func() {
			platform.listErrs["project"] = &railway.QueryError{Operation: "project", Messages: []string{"Cannot query field"}}

			envs, err := registry.ListByProject(ctx, "proj-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(envs).To(HaveLen(1))
			Expect(platform.listCalls).To(Equal(map[string]int{"project": 1, "connection": 1}))
		})

		It("returns only the last error when every strategy fails", func() {
			last := &railway.TransportError{StatusCode: 400, Body: "flat failed"}
			platform.listErrs["project"] = errors.New("project failed")
			platform.listErrs["connection"] = errors.New("connection failed")
			platform.listErrs["flat"] = last

			_, err := registry.ListByProject(ctx, "proj-1")
			Expect(err).To(BeIdenticalTo(error(last)))
			Expect(platform.listCalls).To(HaveLen(3))
		})

		It("honours custom strategies", func() {
			called := false
			registry = NewRegistry(platform, WithListStrategies(ListStrategy{
				Name: "fixed",
				List: func(context.Context, Platform, string) ([]railway.Environment, error) {
					called = true
					return nil, nil
				},
			}))

			_, err := registry.ListByProject(ctx, "proj-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(called).To(BeTrue())
			Expect(platform.listCalls).To(BeEmpty())
		})
	})

	Describe("FindByName", func() {
		It("returns nil when nothing matches", func() {
			env, err := registry.FindByName(ctx, "proj-1", "pr-99")
			Expect(err).NotTo(HaveOccurred())
			Expect(env).To(BeNil())
		})
	})

	Describe("Get and Delete", func() {
		It("reports missing environments as not found", func() {
			_, err := registry.Get(ctx, "missing")
			Expect(railway.IsNotFound(err)).To(BeTrue())
		})

		It("deletes an environment", func() {
			Expect(registry.Delete(ctx, "env-prod")).To(Succeed())
			Expect(platform.envs).To(BeEmpty())
		})
	})
})
