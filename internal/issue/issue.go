// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	DaemonNotRunningId Id = iota + 1
	UnsupportedLanguageVersionId
	UnsupportedAdditionalDependenciesId
	ExecutableNotFoundId
	UnknownLanguageId
	ConfigLoadFailedId
	BindMountNotFoundId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown with the given glamour style ("dark", "light", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	daemonNotRunningIssue = &Issue{
		id: DaemonNotRunningId,
		mdMsg: `
# The container daemon is not reachable!

Hooks using the ` + "`docker`" + ` and ` + "`docker_image`" + ` languages run inside containers,
so the container engine must be running before hooks can be installed or run.

## Things you can try:
- Start the daemon and check that it answers:
~~~
$ docker ps
~~~
- Select podman instead by setting ` + "`container_engine: \"podman\"`" + ` in your config
  or exporting ` + "`PRE_COMMIT_CONTAINER_ENGINE=podman`",
		extLinks: []HttpLink{"https://docs.docker.com/config/daemon/start/"},
	}

	unsupportedLanguageVersionIssue = &Issue{
		id: UnsupportedLanguageVersionId,
		mdMsg: `
# This language does not support pinned versions!

The hook declares a ` + "`language_version`" + ` but its language always uses the
system-installed tooling.

## Things you can try:
- Remove ` + "`language_version`" + ` from the hook configuration
- Set it to ` + "`default`",
	}

	unsupportedAdditionalDependenciesIssue = &Issue{
		id: UnsupportedAdditionalDependenciesId,
		mdMsg: `
# This language does not support additional dependencies!

The hook declares ` + "`additional_dependencies`" + ` but its language has no package
manager to install them with.

## Things you can try:
- Remove ` + "`additional_dependencies`" + ` from the hook configuration
- Bake the dependencies into the hook's image instead`,
	}

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# Hook executable not found!

The first word of the hook's ` + "`entry`" + ` could not be found on your PATH.

## Things you can try:
- Install the tool the hook needs
- Check the spelling of the hook's ` + "`entry`",
	}

	unknownLanguageIssue = &Issue{
		id: UnknownLanguageId,
		mdMsg: `
# Unknown hook language!

## Supported languages:
- docker
- docker_image
- pcre
- script
- system`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load your configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Remove the file to fall back to the defaults`,
	}

	bindMountNotFoundIssue = &Issue{
		id: BindMountNotFoundId,
		mdMsg: `
# The working directory is not bind mounted!

pre-commit is running inside a container and talks to the host's docker
daemon, so the repository must be bind mounted from the host for the hook
container to see it.

## Things you can try:
- Mount the repository into this container with ` + "`-v /host/path:/container/path`",
	}

	issues = map[Id]*Issue{
		daemonNotRunningIssue.Id():                  daemonNotRunningIssue,
		unsupportedLanguageVersionIssue.Id():        unsupportedLanguageVersionIssue,
		unsupportedAdditionalDependenciesIssue.Id(): unsupportedAdditionalDependenciesIssue,
		executableNotFoundIssue.Id():                executableNotFoundIssue,
		unknownLanguageIssue.Id():                   unknownLanguageIssue,
		configLoadFailedIssue.Id():                  configLoadFailedIssue,
		bindMountNotFoundIssue.Id():                 bindMountNotFoundIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
