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
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/railway-preview/internal/github"
)

// fakeCommenter stores comments in memory the way the issues API would
type fakeCommenter struct {
	comments    []*github.Comment
	nextID      int64
	listCalls   int
	createCalls int
	updateCalls int
	listErr     error
}

func (f *fakeCommenter) ListComments(_ context.Context, _, _ string, _ int) ([]*github.Comment, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*github.Comment, 0, len(f.comments))
	for _, c := range f.comments {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCommenter) CreateComment(_ context.Context, _, _ string, _ int, body string) (*github.Comment, error) {
	f.createCalls++
	f.nextID++
	c := &github.Comment{ID: f.nextID, Body: body, Author: "github-actions[bot]", AuthorType: "Bot"}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeCommenter) UpdateComment(_ context.Context, _, _ string, id int64, body string) (*github.Comment, error) {
	f.updateCalls++
	for _, c := range f.comments {
		if c.ID == id {
			c.Body = body
			return c, nil
		}
	}
	return nil, errors.New("comment not found")
}

var _ = Describe("Reconciler", func() {
	var (
		ctx        context.Context
		client     *fakeCommenter
		reconciler *Reconciler
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &fakeCommenter{nextID: 100}
		reconciler = NewReconciler(client, "acme", "shop", "")
	})

	It("creates the comment once and updates it afterwards", func() {
		action, err := reconciler.Upsert(ctx, 42, "first")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionCreated))

		action, err = reconciler.Upsert(ctx, 42, "second")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionUpdated))

		Expect(client.createCalls).To(Equal(1))
		Expect(client.updateCalls).To(Equal(1))
		Expect(client.comments).To(HaveLen(1))
		Expect(client.comments[0].Body).To(HavePrefix("second"))
		Expect(client.comments[0].Body).To(HaveSuffix(reconciler.Marker()))
	})

	It("stamps the marker only once", func() {
		body := Render(View{Phase: PhaseCreating, EnvironmentName: "pr-42"}) + "\n\n" + reconciler.Marker()
		_, err := reconciler.Upsert(ctx, 42, body)
		Expect(err).NotTo(HaveOccurred())
		Expect(client.comments[0].Body).To(Equal(body))
	})

	It("ignores human comments that mention the heading", func() {
		client.comments = []*github.Comment{
			{ID: 1, Body: "Is the Railway Preview Environment up yet?", AuthorType: "User"},
		}

		action, err := reconciler.Upsert(ctx, 42, "status")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionCreated))
		Expect(client.comments).To(HaveLen(2))
		Expect(client.comments[0].Body).To(Equal("Is the Railway Preview Environment up yet?"))
	})

	It("skips a human comment quoting the marker", func() {
		quoted := "Why does this say\n\n" + reconciler.Marker()
		client.comments = []*github.Comment{
			{ID: 1, Body: quoted, Author: "octocat", AuthorType: "User"},
			{ID: 2, Body: "old\n\n" + reconciler.Marker(), Author: "github-actions[bot]", AuthorType: "Bot"},
		}

		action, err := reconciler.Upsert(ctx, 42, "new body")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionUpdated))
		Expect(client.updateCalls).To(Equal(1))
		Expect(client.comments[0].Body).To(Equal(quoted))
		Expect(client.comments[1].Body).To(HavePrefix("new body"))
	})

	It("creates its own comment when only a human quotes the marker", func() {
		client.comments = []*github.Comment{
			{ID: 1, Body: "see " + reconciler.Marker(), AuthorType: "User"},
		}

		action, err := reconciler.Upsert(ctx, 42, "status")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionCreated))
		Expect(client.updateCalls).To(Equal(0))
		Expect(client.comments).To(HaveLen(2))
	})

	It("adopts a legacy bot comment without a marker", func() {
		client.comments = []*github.Comment{
			{ID: 1, Body: "## 🚀 Railway Preview Environment Ready", AuthorType: "Bot"},
		}

		action, err := reconciler.Upsert(ctx, 42, "status")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionUpdated))
		Expect(client.comments[0].Body).To(ContainSubstring(reconciler.Marker()))
	})

	It("prefers a marked comment over an earlier legacy one", func() {
		client.comments = []*github.Comment{
			{ID: 1, Body: "## 🚀 Railway Preview Environment Ready", AuthorType: "Bot"},
			{ID: 2, Body: "old\n\n" + reconciler.Marker(), AuthorType: "Bot"},
		}

		_, err := reconciler.Upsert(ctx, 42, "new")
		Expect(err).NotTo(HaveOccurred())
		Expect(client.comments[0].Body).To(Equal("## 🚀 Railway Preview Environment Ready"))
		Expect(client.comments[1].Body).To(HavePrefix("new"))
	})

	It("updates only the first of duplicate marked comments", func() {
		client.comments = []*github.Comment{
			{ID: 1, Body: "a\n\n" + reconciler.Marker(), AuthorType: "Bot"},
			{ID: 2, Body: "b\n\n" + reconciler.Marker(), AuthorType: "Bot"},
		}

		_, err := reconciler.Upsert(ctx, 42, "new")
		Expect(err).NotTo(HaveOccurred())
		Expect(client.updateCalls).To(Equal(1))
		Expect(client.comments[0].Body).To(HavePrefix("new"))
		Expect(client.comments[1].Body).To(HavePrefix("b"))
	})

	It("leaves comments of another marker id alone", func() {
		other := NewReconciler(client, "acme", "shop", "staging")
		_, err := other.Upsert(ctx, 42, "## 🚀 Railway Preview Environment Ready")
		Expect(err).NotTo(HaveOccurred())

		action, err := reconciler.Upsert(ctx, 42, "mine")
		Expect(err).NotTo(HaveOccurred())
		Expect(action).To(Equal(ActionCreated))
		Expect(client.comments).To(HaveLen(2))
	})

	It("returns list errors without writing", func() {
		client.listErr = errors.New("boom")

		_, err := reconciler.Upsert(ctx, 42, "status")
		Expect(err).To(MatchError("boom"))
		Expect(client.createCalls).To(BeZero())
	})
})
