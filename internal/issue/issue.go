// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NotInstalledId Id = iota + 1
	GitlistParseErrorId
	FrameworkNotFoundId
	DanglingExtendsId
	GitCommandFailedId
	RepoDirtyId
	SubmoduleSetupFailedId
	IdeConfigNotFoundId
	SkillsFileInvalidId
	UpdateCheckFailedId
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
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	notInstalledIssue = &Issue{
		id: NotInstalledId,
		mdMsg: `
# Driving is not installed here!

We walked up from your current directory but found neither a ` + "`.driving`" + `
directory nor a ` + "`gitlist.json`" + ` registry.

## Things you can try:
- Install driving into the current project:
~~~
$ driving install --url https://github.com/your-org/your-driving-repo.git
~~~

- Or run the command from inside an installed project:
~~~
$ cd /path/to/your/project
$ driving git-list
~~~`,
	}

	gitlistParseErrorIssue = &Issue{
		id: GitlistParseErrorId,
		mdMsg: `
# Failed to parse a gitlist registry!

One of your gitlist.json documents contains invalid JSON or records that
violate the registry schema. The whole document is rejected; individual
records are never silently skipped.

## Common issues:
- Trailing commas or unquoted keys (gitlist.json must be strict JSON)
- A record missing required fields (name, project_name, url, module, sources)
- sources declared as a string instead of a list

## Things you can try:
- Check the error message above for the file and the offending field
- Validate the file with a JSON linter
- Run with verbose mode for more details:
~~~
$ driving --verbose git-list
~~~

## Example of a valid record:
~~~json
[
  {
    "name": "workflow",
    "project_name": "driving-workflow",
    "url": "https://github.com/your-org/driving-workflow.git",
    "branch": "main",
    "module": "workflow",
    "sources": ["commands/**", "agents/**"],
    "description": "Shared workflow commands",
    "creator": "platform-team",
    "date": "2025-01-01"
  }
]
~~~`,
	}

	frameworkNotFoundIssue = &Issue{
		id: FrameworkNotFoundId,
		mdMsg: `
# Framework not found!

The framework you named is not defined in any gitlist registry of this
workspace.

## Things you can try:
- List all registered frameworks:
~~~
$ driving git-list
~~~

- Check for typos in the framework name
- If it should come from the shared registry, pull the latest version:
~~~
$ driving pull
~~~`,
	}

	danglingExtendsIssue = &Issue{
		id: DanglingExtendsId,
		mdMsg: `
# Broken extends chain!

A framework's extends list references a framework no registry defines.
Resolution stops instead of producing a partial dependency closure.

## Example of the problem:
~~~json
{
  "name": "app",
  "extends": ["base"]   // but no registry defines "base"
}
~~~

## Things you can try:
- Add the missing framework to a gitlist registry
- Remove the stale name from the extends list
- Pull the shared registry in case the dependency was added upstream:
~~~
$ driving pull
~~~`,
	}

	gitCommandFailedIssue = &Issue{
		id: GitCommandFailedId,
		mdMsg: `
# Git command failed!

An underlying git invocation exited with an error.

## Common causes:
- git is not installed or not on PATH
- The remote URL is unreachable or requires authentication
- The named branch does not exist on the remote

## Things you can try:
- Run with verbose mode to see the exact git command and its output:
~~~
$ driving --verbose git-install
~~~

- Test the remote manually:
~~~
$ git ls-remote <url>
~~~

- Check your SSH keys or credential helper configuration`,
	}

	repoDirtyIssue = &Issue{
		id: RepoDirtyId,
		mdMsg: `
# Working tree has uncommitted changes!

Pulling would risk merging into uncommitted work, so the operation was
refused.

## Things you can try:
- Commit your changes first:
~~~
$ driving commit -m "work in progress"
~~~

- Or stash them:
~~~
$ git stash
$ driving pull
$ git stash pop
~~~`,
	}

	submoduleSetupFailedIssue = &Issue{
		id: SubmoduleSetupFailedId,
		mdMsg: `
# Failed to set up the driving submodule!

Installing wires the driving repository in as a git submodule at
` + "`.driving`" + ` and links ` + "`ai-docs`" + ` to its docs tree. One of those steps
failed.

## Things you can try:
- Make sure the project root is a git repository:
~~~
$ git init
~~~

- Remove a half-finished install and retry:
~~~
$ driving uninstall
$ driving install --url <url>
~~~

- Check that the URL is reachable and you have clone permissions`,
	}

	ideConfigNotFoundIssue = &Issue{
		id: IdeConfigNotFoundId,
		mdMsg: `
# No IDE configuration found!

The install tree has no configuration directory for the IDE you named.

## Things you can try:
- List the IDE configurations that are available:
~~~
$ driving ide-list
~~~

- Pull the shared registry in case the configuration was added upstream:
~~~
$ driving pull
~~~

IDE configuration directories live under ` + "`install/`" + ` and are named
after the IDE with a leading dot, e.g. ` + "`install/.cursor`" + `.`,
	}

	skillsFileInvalidIssue = &Issue{
		id: SkillsFileInvalidId,
		mdMsg: `
# Invalid SKILL.md file!

A skill definition could not be read. Each skill lives in its own
directory under ` + "`ai-docs/skills/`" + ` with a SKILL.md that starts with YAML
front matter.

## Expected shape:
~~~markdown
---
name: code-review
description: Review a diff for correctness and style
---

Body of the skill...
~~~

## Things you can try:
- Check the front matter delimiters (three dashes on their own lines)
- Make sure name and description are plain YAML strings
- Skills with an empty description are skipped with a warning`,
	}

	updateCheckFailedIssue = &Issue{
		id: UpdateCheckFailedId,
		mdMsg: `
# Update check failed!

Could not fetch or parse the published version manifest.

## Things you can try:
- Check your network connection
- Point the check at a different manifest:
~~~
$ driving update --url https://example.com/dist/version.json
~~~

- Or set it persistently:
~~~
$ export DRIVING_UPDATE_VERSION_URL=https://example.com/dist/version.json
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write into a protected directory
- The binary being replaced during update is not writable
- Project files owned by another user

## Things you can try:
- Check file and directory ownership
- Run the command from a directory you own
- For updates, reinstall driving into a user-writable location`,
	}

	issues = map[Id]*Issue{
		notInstalledIssue.Id():         notInstalledIssue,
		gitlistParseErrorIssue.Id():    gitlistParseErrorIssue,
		frameworkNotFoundIssue.Id():    frameworkNotFoundIssue,
		danglingExtendsIssue.Id():      danglingExtendsIssue,
		gitCommandFailedIssue.Id():     gitCommandFailedIssue,
		repoDirtyIssue.Id():            repoDirtyIssue,
		submoduleSetupFailedIssue.Id(): submoduleSetupFailedIssue,
		ideConfigNotFoundIssue.Id():    ideConfigNotFoundIssue,
		skillsFileInvalidIssue.Id():    skillsFileInvalidIssue,
		updateCheckFailedIssue.Id():    updateCheckFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
