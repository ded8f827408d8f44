// SPDX-License-Identifier: MPL-2.0

// Package container drives the Docker and Podman CLIs to run commands inside an
// already running container. It is the execution layer behind the container
// transport: hostprobe never creates or removes containers, it only inspects
// them.
//
// CLIEngine embeds BaseCLIEngine, which builds the CLI
// arguments and runs the binary through an injectable ExecCommandFunc. When
// hostprobe itself runs inside a Flatpak or Snap sandbox, commands are routed
// to the host through the sandbox's spawn helper.
package container
