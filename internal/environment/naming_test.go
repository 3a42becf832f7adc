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
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "pr-42", wantErr: false},
		{name: "underscore", input: "pr_feature_x", wantErr: false},
		{name: "exactly fifty", input: strings.Repeat("a", 50), wantErr: false},
		{name: "fifty one", input: strings.Repeat("a", 51), wantErr: true},
		{name: "slash", input: "pr/42", wantErr: true},
		{name: "unicode", input: "pr-ü", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPRNumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		env    string
		want   int
		wantOK bool
	}{
		{name: "round trips Name", prefix: "pr-", env: Name("pr-", 42), want: 42, wantOK: true},
		{name: "other prefix", prefix: "pr-", env: "production", wantOK: false},
		{name: "branch name", prefix: "pr-", env: "pr-feature", wantOK: false},
		{name: "zero", prefix: "pr-", env: "pr-0", wantOK: false},
		{name: "prefix only", prefix: "pr-", env: "pr-", wantOK: false},
		{name: "empty prefix", prefix: "", env: "42", wantOK: false},
		{name: "leading zero", prefix: "pr-", env: "pr-042", wantOK: false},
		{name: "plus sign", prefix: "pr-", env: "pr-+42", wantOK: false},
		{name: "negative", prefix: "pr-", env: "pr--4", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PRNumber(tt.prefix, tt.env)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PRNumber(%q, %q) = (%d, %v), want (%d, %v)", tt.prefix, tt.env, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
