// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	ids := []Id{
		DaemonNotRunningId,
		UnsupportedLanguageVersionId,
		UnsupportedAdditionalDependenciesId,
		ExecutableNotFoundId,
		UnknownLanguageId,
		ConfigLoadFailedId,
		BindMountNotFoundId,
	}

	if DaemonNotRunningId != 1 {
		t.Errorf("DaemonNotRunningId = %d, want 1", DaemonNotRunningId)
	}
	for _, id := range ids {
		i := Get(id)
		if i == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}
	if got := len(Values()); got != len(ids) {
		t.Errorf("len(Values()) = %d, want %d", got, len(ids))
	}
	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	i := Get(DaemonNotRunningId)
	links := i.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links")
	}
	links[0] = "mutated"
	if i.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() should return a copy")
	}
}

func TestIssue_Render(t *testing.T) {
	original := render
	defer func() { render = original }()

	var gotMarkdown, gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotMarkdown, gotStyle = in, stylePath
		return "rendered", nil
	}

	out, err := Get(DaemonNotRunningId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered" || gotStyle != "notty" {
		t.Errorf("Render() = %q with style %q", out, gotStyle)
	}
	if !strings.Contains(gotMarkdown, "## See also:") || !strings.Contains(gotMarkdown, "docs.docker.com") {
		t.Errorf("rendered markdown missing links section:\n%s", gotMarkdown)
	}
}
