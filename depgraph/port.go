package depgraph

import (
	"fmt"
	"sort"
)

// Package is one artifact a port produces, with its raw dependency declarations.
type Package struct {
	Name             string
	Requires         []string
	BuildRequires    []string
	BuildPrerequires []string
}

// Port is a buildable unit and the packages it produces.
type Port struct {
	Name     string
	Version  string
	Packages []Package
}

// ID returns the port identifier, name-version.
func (p Port) ID() string {
	return p.Name + "-" + p.Version
}

// PackageID returns the identifier of pkg when built from this port.
func (p Port) PackageID(pkg Package) string {
	return pkg.Name + "-" + p.Version
}

// PortSource gives the graph access to recipe data.
type PortSource interface {
	// HasPort reports whether portID is in the known-ports index.
	HasPort(portID string) bool
	// Port loads the produced packages and declarations of a port.
	Port(portID string) (Port, error)
	// PortIDForPackageID maps a package identifier to the port producing it.
	PortIDForPackageID(packageID string) (string, error)
}

// MapSource is an in-memory PortSource keyed by port ID.
type MapSource map[string]Port

// NewMapSource indexes ports by their ID.
func NewMapSource(ports ...Port) MapSource {
	source := make(MapSource, len(ports))
	for _, port := range ports {
		source[port.ID()] = port
	}
	return source
}

func (s MapSource) HasPort(portID string) bool {
	_, ok := s[portID]
	return ok
}

func (s MapSource) Port(portID string) (Port, error) {
	port, ok := s[portID]
	if !ok {
		return Port{}, fmt.Errorf("port %q not found", portID)
	}
	return port, nil
}

func (s MapSource) PortIDForPackageID(packageID string) (string, error) {
	packageID = CanonicalPackageID(packageID)

	portIDs := make([]string, 0, len(s))
	for portID := range s {
		portIDs = append(portIDs, portID)
	}
	sort.Strings(portIDs)

	for _, portID := range portIDs {
		port := s[portID]
		for _, pkg := range port.Packages {
			if port.PackageID(pkg) == packageID {
				return portID, nil
			}
		}
	}
	return "", fmt.Errorf("no port produces package %q", packageID)
}
