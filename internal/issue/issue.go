// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ConfigLoadFailedId
	AttributesLoadFailedId
	CommandNotFoundId
	UnknownCategoryId
	UnknownServiceTypeId
	TransportConnectFailedId
	ContainerEngineNotFoundId
	ContainerNotRunningId
	RootFSNotFoundId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

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

// Render renders the issue as terminal markdown, followed by its links.
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also:\n")
		for _, links := range [][]HttpLink{i.docLinks, i.extLinks} {
			for _, link := range links {
				fmt.Fprintf(&sb, "- <%s>\n", link)
			}
		}
	}
	return render(sb.String(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file passed on the command line does not exist.

## Things you can try:
- Check the path for typos
- Use an absolute path, relative paths are resolved from the current directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the location that is being read:
~~~
$ hostprobe config path
~~~
- Compare your file with the defaults:
~~~
$ hostprobe config dump
~~~
- Check HOSTPROBE_* environment variables, they override the file`,
	}

	attributesLoadFailedIssue = &Issue{
		id: AttributesLoadFailedId,
		mdMsg: `
# Failed to load platform attributes!

hostprobe classifies a machine from an attribute file such as the JSON
written by ohai. The file could not be read or parsed.

## Supported formats (chosen by extension):
- ` + "`.json`" + `, ` + "`.yaml`" + ` / ` + "`.yml`" + `, ` + "`.toml`" + `, ` + "`.cue`" + `

## Minimal example:
~~~json
{"platform": "ubuntu", "platform_family": "debian"}
~~~`,
		extLinks: []HttpLink{"https://docs.chef.io/ohai/"},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

None of the requested commands is an executable file in the search path
of the target machine.

## Things you can try:
- List the directories that were searched:
~~~
$ hostprobe where --verbose <command>
~~~
- Add directories with --extra-path or search.extra_path in the config`,
	}

	unknownCategoryIssue = &Issue{
		id: UnknownCategoryId,
		mdMsg: `
# Unknown platform category!

## Things you can try:
- List every category and whether it holds for your attributes:
~~~
$ hostprobe classify --attributes node.json
~~~`,
	}

	unknownServiceTypeIssue = &Issue{
		id: UnknownServiceTypeId,
		mdMsg: `
# Unknown service type!

Valid service types are ` + "`initd`, `upstart`, `xinetd`, `etc_rcd` and `systemd`" + `.`,
	}

	transportConnectFailedIssue = &Issue{
		id: TransportConnectFailedId,
		mdMsg: `
# Cannot reach the target machine!

hostprobe could not open the configured transport.

## Things you can try:
- For SSH, check that you can log in with the same host, user and key:
~~~
$ ssh -i <identity> <user>@<host>
~~~
- Make sure the host key is in your known_hosts file
- Increase transport.ssh.timeout for slow links`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

The container transport needs Docker or Podman on the PATH.

## Things you can try:
- Install Docker or Podman
- Select the installed engine with --engine or transport.container.engine`,
		extLinks: []HttpLink{"https://podman.io/docs/installation", "https://docs.docker.com/engine/install/"},
	}

	containerNotRunningIssue = &Issue{
		id: ContainerNotRunningId,
		mdMsg: `
# Container is not running!

Commands can only be run in a running container.

## Things you can try:
~~~
$ docker ps --all
$ docker start <container>
~~~`,
	}

	rootFSNotFoundIssue = &Issue{
		id: RootFSNotFoundId,
		mdMsg: `
# Root filesystem not found!

The rootfs transport needs a directory holding an unpacked image, e.g. the
output of ` + "`docker export`" + ` extracted with tar.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A file on the target could not be read with the current privileges.

## Things you can try:
- Connect as a user that can read the file
- Check the file permissions on the target machine`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():            fileNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		attributesLoadFailedIssue.Id():    attributesLoadFailedIssue,
		commandNotFoundIssue.Id():         commandNotFoundIssue,
		unknownCategoryIssue.Id():         unknownCategoryIssue,
		unknownServiceTypeIssue.Id():      unknownServiceTypeIssue,
		transportConnectFailedIssue.Id():  transportConnectFailedIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		containerNotRunningIssue.Id():     containerNotRunningIssue,
		rootFSNotFoundIssue.Id():          rootFSNotFoundIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
