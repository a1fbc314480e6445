package depgraph

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// WarningKind classifies a non-fatal condition met during a run.
type WarningKind string

const (
	WarningUnresolvable      WarningKind = "unresolvable"
	WarningAmbiguous         WarningKind = "ambiguous"
	WarningDuplicatePackage  WarningKind = "duplicate-package"
	WarningInvalidDescriptor WarningKind = "invalid-descriptor"
)

// Warning is a non-fatal condition. It never interrupts a run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// Report holds the diagnostics of one analysis run. Lists are in discovery
// order, except CycleGroups which is sorted.
type Report struct {
	SystemPackages     []string
	SelfDependentPorts []string
	CyclicPorts        []string
	// CycleGroups lists the ports of each strongly connected component of
	// the cycle remainder.
	CycleGroups [][]string
	Remainder   CycleGraph
	Warnings    []Warning
}

// Fingerprint hashes the diagnostics so two runs can be compared cheaply.
func (r Report) Fingerprint() string {
	hashable := struct {
		SystemPackages     []string   `json:"systemPackages"`
		SelfDependentPorts []string   `json:"selfDependentPorts"`
		CyclicPorts        []string   `json:"cyclicPorts"`
		CycleGroups        [][]string `json:"cycleGroups"`
		Warnings           []Warning  `json:"warnings"`
	}{
		SystemPackages:     r.SystemPackages,
		SelfDependentPorts: r.SelfDependentPorts,
		CyclicPorts:        r.CyclicPorts,
		CycleGroups:        r.CycleGroups,
		Warnings:           r.Warnings,
	}

	data, err := json.Marshal(hashable)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Warnings returns the warnings collected so far.
func (g *Graph) Warnings() []Warning {
	return append([]Warning(nil), g.warnings...)
}

func (g *Graph) warn(kind WarningKind, subject, message string) {
	g.warnings = append(g.warnings, Warning{Kind: kind, Subject: subject, Message: message})
	g.logger.Warn(message, "kind", string(kind), "subject", subject)
}
