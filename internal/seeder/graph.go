package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
)

// DependencyGraph orders domains so that parents are seeded before children.
// Ties keep declaration order.
type DependencyGraph struct {
	domains  map[string]*Domain
	declared []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		domains: make(map[string]*Domain),
	}
}

func (g *DependencyGraph) AddDomain(domain *Domain) error {
	if domain.Name == "" {
		return &types.ValidationError{Reason: "domain without a name"}
	}
	if _, exists := g.domains[domain.Name]; exists {
		return &types.ValidationError{Domain: domain.Name, Reason: "declared twice"}
	}
	g.domains[domain.Name] = domain
	g.declared = append(g.declared, domain.Name)
	return nil
}

func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return &types.ValidationError{Domain: name, Reason: "circular dependency detected"}
		}
		if visited[name] {
			return nil
		}

		domain, ok := g.domains[name]
		if !ok {
			return &types.ValidationError{Domain: name, Reason: "unknown domain"}
		}

		temp[name] = true
		for _, dep := range domain.DependsOn {
			if dep == name {
				continue
			}
			if _, ok := g.domains[dep]; !ok {
				return &types.ValidationError{Domain: name, Reason: fmt.Sprintf("depends on unknown domain %q", dep)}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.declared {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// Dependents returns every domain that transitively depends on name.
func (g *DependencyGraph) Dependents(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	changed := true
	for changed {
		changed = false
		for _, candidate := range g.declared {
			if seen[candidate] {
				continue
			}
			for _, dep := range g.domains[candidate].DependsOn {
				if seen[dep] {
					seen[candidate] = true
					out = append(out, candidate)
					changed = true
					break
				}
			}
		}
	}
	return out
}
