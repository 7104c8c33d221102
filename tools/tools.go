// Package tools defines the tool registry data model consumed by the gateway
// event layer. Definitions are registered by the tool engine and are immutable
// afterwards; the gateway only reads and projects them.
package tools

import "strings"

type (
	// Definition describes a registered tool. The gateway projects Name,
	// Description, and Group into toolset update events; the execution schema
	// of the tool is owned by the tool engine and never crosses this layer.
	Definition struct {
		// Name is the unique tool identifier (e.g., "web_search").
		Name string `json:"name"`
		// Description is the human-readable tool description shown in UIs.
		Description string `json:"description"`
		// Group classifies the tool for display and policy purposes.
		Group Group `json:"group"`
	}

	// Group is the closed set of tool classifications. It is rendered into
	// events via Label, never as its raw value, so that the wire
	// representation stays stable across versions.
	Group string
)

const (
	// GroupCore identifies tools the orchestrator always carries (task
	// management, subtype switching).
	GroupCore Group = "core"

	// GroupMemory identifies memory store/search tools.
	GroupMemory Group = "memory"

	// GroupWeb identifies web search and retrieval tools.
	GroupWeb Group = "web"

	// GroupWeb3 identifies on-chain transaction and contract-call tools.
	GroupWeb3 Group = "web3"

	// GroupSystem identifies system tools that cannot be disabled per channel.
	GroupSystem Group = "system"
)

// ParseGroup normalizes s to a Group. It returns the zero value when s is not
// a recognized group.
func ParseGroup(s string) Group {
	switch Group(strings.ToLower(s)) {
	case GroupCore:
		return GroupCore
	case GroupMemory:
		return GroupMemory
	case GroupWeb:
		return GroupWeb
	case GroupWeb3:
		return GroupWeb3
	case GroupSystem:
		return GroupSystem
	default:
		return ""
	}
}

// Valid reports whether g is a recognized non-zero group.
func (g Group) Valid() bool {
	switch g {
	case GroupCore, GroupMemory, GroupWeb, GroupWeb3, GroupSystem:
		return true
	default:
		return false
	}
}

// Label returns the human-readable tag rendered into toolset update events.
// Unrecognized groups render as "Other" rather than leaking internal values.
func (g Group) Label() string {
	switch g {
	case GroupCore:
		return "Core"
	case GroupMemory:
		return "Memory"
	case GroupWeb:
		return "Web"
	case GroupWeb3:
		return "Web3"
	case GroupSystem:
		return "System"
	default:
		return "Other"
	}
}
