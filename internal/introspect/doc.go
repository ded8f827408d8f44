// SPDX-License-Identifier: MPL-2.0

// Package introspect infers higher-level facts about a managed machine: whether
// it is a container guest, runs systemd, has a given service script, or is
// being driven by CI. File checks go through a transport.Backend so the same
// questions can be asked of remote hosts and containers.
package introspect
