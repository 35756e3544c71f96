package buildx

import (
	"fmt"
	"strings"
)

// ErrInspectParse is returned when builder inspect output cannot be parsed.
var ErrInspectParse = fmt.Errorf("malformed buildx inspect output")

// Builder is the inspected state of a builder: the authoritative
// post-condition of creation. The node fields summarize the first node.
type Builder struct {
	Name      string
	Driver    string
	NodeName  string
	Endpoint  string
	Status    string
	Flags     string
	Platforms []string
}

// HasDebugFlag reports whether the builder's node flags carry the BuildKit
// debug marker.
func (b *Builder) HasDebugFlag() bool {
	return strings.Contains(b.Flags, "--debug")
}

// ParseInspect parses the line-oriented `buildx inspect` report:
//
//	Name:   builder-5f0g
//	Driver: docker-container
//
//	Nodes:
//	Name:      builder-5f0g0
//	Endpoint:  unix:///var/run/docker.sock
//	Status:    running
//	Flags:     --debug
//	Platforms: linux/amd64, linux/386
//
// Zero or more nodes are tolerated; the first node's status, flags and
// platforms become the builder-level summary.
func ParseInspect(out string) (*Builder, error) {
	b := &Builder{}
	inNodes := false
	nodeSeen := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "Nodes:" {
			inNodes = true
			continue
		}

		key, value, ok := splitField(line)
		if !ok {
			continue
		}

		if !inNodes {
			switch key {
			case "Name":
				b.Name = value
			case "Driver":
				b.Driver = value
			}
			continue
		}

		// A repeated Name inside the node section starts the next node;
		// only the first one feeds the summary.
		if key == "Name" {
			if nodeSeen {
				break
			}
			nodeSeen = true
			b.NodeName = value
			continue
		}
		if !nodeSeen {
			continue
		}
		switch key {
		case "Endpoint":
			b.Endpoint = value
		case "Status":
			b.Status = value
		case "Flags", "Buildkitd flags":
			b.Flags = value
		case "Platforms":
			b.Platforms = splitList(value)
		}
	}

	if b.Name == "" {
		return nil, fmt.Errorf("%w: missing builder name", ErrInspectParse)
	}
	return b, nil
}

// splitField splits "Key:  value" into its parts.
func splitField(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// splitList splits a comma-separated inspect value into trimmed items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
