package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/portgraph/depgraph"
)

type jsonReport struct {
	SystemPackages     []string           `json:"systemPackages"`
	SelfDependentPorts []string           `json:"selfDependentPorts"`
	CyclicPorts        []string           `json:"cyclicPorts"`
	CycleGroups        [][]string         `json:"cycleGroups"`
	Warnings           []depgraph.Warning `json:"warnings"`
	Fingerprint        string             `json:"fingerprint"`
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// Format converts the report to indented JSON. Empty lists are written as
// [] rather than null. The opts parameter is not used.
func (f *JSONFormatter) Format(r depgraph.Report, opts RenderOptions) (string, error) {
	out := jsonReport{
		SystemPackages:     emptyIfNil(r.SystemPackages),
		SelfDependentPorts: emptyIfNil(r.SelfDependentPorts),
		CyclicPorts:        emptyIfNil(r.CyclicPorts),
		CycleGroups:        emptyIfNil(r.CycleGroups),
		Warnings:           emptyIfNil(r.Warnings),
		Fingerprint:        r.Fingerprint(),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
