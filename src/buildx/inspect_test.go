package buildx

import (
	"errors"
	"reflect"
	"testing"
)

const inspectReport = `Name:   builder-5f0g
Driver: docker-container

Nodes:
Name:      builder-5f0g0
Endpoint:  unix:///var/run/docker.sock
Status:    running
Flags:     --debug --allow-insecure-entitlement security.insecure
Platforms: linux/amd64, linux/arm64, linux/386
`

func TestParseInspect(t *testing.T) {
	b, err := ParseInspect(inspectReport)
	if err != nil {
		t.Fatalf("ParseInspect: %v", err)
	}

	if b.Name != "builder-5f0g" {
		t.Errorf("Name = %q", b.Name)
	}
	if b.Driver != "docker-container" {
		t.Errorf("Driver = %q", b.Driver)
	}
	if b.NodeName != "builder-5f0g0" {
		t.Errorf("NodeName = %q", b.NodeName)
	}
	if b.Endpoint != "unix:///var/run/docker.sock" {
		t.Errorf("Endpoint = %q", b.Endpoint)
	}
	if b.Status != "running" {
		t.Errorf("Status = %q", b.Status)
	}
	if !b.HasDebugFlag() {
		t.Error("expected debug flag in node flags")
	}
	want := []string{"linux/amd64", "linux/arm64", "linux/386"}
	if !reflect.DeepEqual(b.Platforms, want) {
		t.Errorf("Platforms = %v, want %v", b.Platforms, want)
	}
}

func TestParseInspectMultiNodeUsesFirst(t *testing.T) {
	report := inspectReport + `
Name:      builder-5f0g1
Endpoint:  ssh://other
Status:    stopped
Platforms: linux/riscv64
`
	b, err := ParseInspect(report)
	if err != nil {
		t.Fatalf("ParseInspect: %v", err)
	}
	if b.NodeName != "builder-5f0g0" || b.Status != "running" {
		t.Errorf("summary must come from the first node, got node %q status %q", b.NodeName, b.Status)
	}
}

func TestParseInspectNoNodes(t *testing.T) {
	b, err := ParseInspect("Name: default\nDriver: docker\n")
	if err != nil {
		t.Fatalf("ParseInspect: %v", err)
	}
	if b.Name != "default" || b.Driver != "docker" {
		t.Errorf("got %+v", b)
	}
	if b.Status != "" || len(b.Platforms) != 0 {
		t.Errorf("zero nodes must leave the summary empty: %+v", b)
	}
}

func TestParseInspectMalformed(t *testing.T) {
	_, err := ParseInspect("not a report at all")
	if !errors.Is(err, ErrInspectParse) {
		t.Errorf("expected ErrInspectParse, got %v", err)
	}
}
