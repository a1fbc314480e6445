package depgraph

// NodeKind distinguishes the two node types of the graph.
type NodeKind int

const (
	PortKind NodeKind = iota
	PackageKind
)

func (k NodeKind) String() string {
	if k == PortKind {
		return "port"
	}
	return "package"
}

// PortRef and PackageRef are handles into the graph's registries. Nodes refer
// to each other only through handles, never through pointers.
type (
	PortRef    int
	PackageRef int
)

const noPort PortRef = -1

// NodeRef addresses any node of the graph.
type NodeRef struct {
	Kind  NodeKind
	Index int
}

func (r PortRef) node() NodeRef    { return NodeRef{Kind: PortKind, Index: int(r)} }
func (r PackageRef) node() NodeRef { return NodeRef{Kind: PackageKind, Index: int(r)} }

// PortNode is a buildable port. Its build requirements are the union of the
// declarations of all of its packages.
type PortNode struct {
	ID   string
	port Port

	packages         refSet[PackageRef]
	buildRequires    refSet[PackageRef]
	buildPrerequires refSet[PackageRef]

	dependenciesResolved bool
}

// DependenciesResolved reports whether the port's declarations were processed.
func (n *PortNode) DependenciesResolved() bool {
	return n.dependenciesResolved
}

// DependsOnSelf reports whether a build requirement is one of the port's own packages.
func (n *PortNode) DependsOnSelf() bool {
	for _, ref := range n.packages.items() {
		if n.buildRequires.has(ref) || n.buildPrerequires.has(ref) {
			return true
		}
	}
	return false
}

// PackageNode is a produced package, or a system package when it has no owner.
type PackageNode struct {
	ID    string
	owner PortRef
	decl  Package

	requires refSet[PackageRef]
}

// IsSystemPackage reports whether the package is not produced by any known port.
func (n *PackageNode) IsSystemPackage() bool {
	return n.owner == noPort
}

// refSet is a set that remembers insertion order.
type refSet[T comparable] struct {
	order []T
	index map[T]struct{}
}

func (s *refSet[T]) add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

func (s *refSet[T]) addAll(other refSet[T]) {
	for _, v := range other.order {
		s.add(v)
	}
}

func (s refSet[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s refSet[T]) items() []T {
	return s.order
}

func (s refSet[T]) len() int {
	return len(s.order)
}
