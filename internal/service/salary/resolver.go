package salary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
)

// planComponent is one arena slot of a compiled structure: the component
// plus its parsed formula (if any) and dependency edges as arena indexes.
type planComponent struct {
	component salary.SalaryComponent
	formula   *expr
	deps      []int
}

// ResolutionPlan is a salary structure compiled for evaluation: formulas
// parsed, references checked, components topologically ordered. Plans are
// built once per structure and reused for every employee resolved against it.
type ResolutionPlan struct {
	structureID string
	components  []planComponent
	byName      map[string]int
	order       []int // topological evaluation order
	basicIdx    int
}

// ResolvedComponents is the outcome of evaluating a plan for one employee.
type ResolvedComponents struct {
	Order           []string
	Values          map[string]decimal.Decimal
	GrossEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	TaxableEarnings decimal.Decimal
}

// CompilePlan validates and compiles a structure. All structural defects
// (unknown references, cycles, malformed formulas, missing basic) are
// caught here, both when a structure is saved and again before resolving.
func CompilePlan(structure *salary.SalaryStructure) (*ResolutionPlan, error) {
	comps := make([]salary.SalaryComponent, len(structure.Components))
	copy(comps, structure.Components)
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].DisplayOrder < comps[j].DisplayOrder
	})

	plan := &ResolutionPlan{
		structureID: structure.ID,
		components:  make([]planComponent, len(comps)),
		byName:      make(map[string]int, len(comps)),
		basicIdx:    -1,
	}
	for i, c := range comps {
		if _, dup := plan.byName[c.Name]; dup {
			return nil, salary.ErrDuplicateComponentName
		}
		plan.byName[c.Name] = i
		plan.components[i] = planComponent{component: c}
		if c.Category == salary.CategoryBasic {
			// Exactly one basic component, and it must be fixed so the
			// assignment's basic salary can substitute its value.
			if plan.basicIdx != -1 || c.Mode != salary.ModeFixed {
				return nil, salary.ErrMissingBasicComponent
			}
			plan.basicIdx = i
		}
	}
	if plan.basicIdx == -1 {
		return nil, salary.ErrMissingBasicComponent
	}

	for i := range plan.components {
		pc := &plan.components[i]
		c := pc.component
		switch c.Mode {
		case salary.ModePercentage:
			if c.BaseComponent == nil {
				return nil, invalidFormula(c.Name, "percentage component has no base component")
			}
			base, ok := plan.byName[*c.BaseComponent]
			if !ok {
				return nil, &salary.ResolutionError{
					Kind:      salary.ResolutionUnknownReference,
					Component: c.Name,
					Reference: *c.BaseComponent,
				}
			}
			pc.deps = []int{base}
		case salary.ModeFormula:
			if c.Formula == nil {
				return nil, invalidFormula(c.Name, "formula component has no formula")
			}
			ast, err := parseFormula(c.Name, *c.Formula)
			if err != nil {
				return nil, err
			}
			pc.formula = ast
			seen := make(map[int]bool)
			for _, ref := range ast.refs(nil) {
				idx, ok := plan.byName[ref]
				if !ok {
					return nil, &salary.ResolutionError{
						Kind:      salary.ResolutionUnknownReference,
						Component: c.Name,
						Reference: ref,
					}
				}
				if idx == i {
					return nil, &salary.ResolutionError{
						Kind:      salary.ResolutionCyclicDependency,
						Component: c.Name,
						Cycle:     []string{c.Name},
					}
				}
				if !seen[idx] {
					seen[idx] = true
					pc.deps = append(pc.deps, idx)
				}
			}
		}
	}

	order, err := plan.topoSort()
	if err != nil {
		return nil, err
	}
	plan.order = order
	return plan, nil
}

// topoSort runs Kahn's algorithm. The ready set is drained in
// DisplayOrder so resolution order is deterministic for equal-rank
// components. Leftover nodes after the drain form the reported cycle.
func (p *ResolutionPlan) topoSort() ([]int, error) {
	n := len(p.components)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, pc := range p.components {
		indegree[i] = len(pc.deps)
		for _, dep := range pc.deps {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	// Arena slots are already DisplayOrder-sorted, so an ascending index
	// scan of the ready set respects DisplayOrder.
	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		idx := ready[0]
		ready = ready[1:]
		order = append(order, idx)
		for _, dep := range dependents[idx] {
			indegree[dep]--
			if indegree[dep] == 0 {
				// Insert keeping the ready set sorted by arena index.
				pos := sort.SearchInts(ready, dep)
				ready = append(ready, 0)
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = dep
			}
		}
	}

	if len(order) < n {
		var cycle []string
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				cycle = append(cycle, p.components[i].component.Name)
			}
		}
		return nil, &salary.ResolutionError{
			Kind:      salary.ResolutionCyclicDependency,
			Component: cycle[0],
			Cycle:     cycle,
		}
	}
	return order, nil
}

// Resolve evaluates every component for one employee. basicSalary
// overrides the basic component's fixed value; prorationFactor scales
// proratable fixed components (percentage and formula components inherit
// proration through their already-scaled inputs). Each value is rounded
// half-up to two decimal places immediately after evaluation.
func (p *ResolutionPlan) Resolve(basicSalary, prorationFactor decimal.Decimal) (*ResolvedComponents, error) {
	values := make(map[string]decimal.Decimal, len(p.components))
	result := &ResolvedComponents{
		Order:  make([]string, 0, len(p.components)),
		Values: values,
	}

	for _, idx := range p.order {
		pc := p.components[idx]
		c := pc.component

		var v decimal.Decimal
		switch c.Mode {
		case salary.ModeFixed:
			v = c.Value
			if idx == p.basicIdx {
				v = basicSalary
			}
			if c.Proratable {
				v = v.Mul(prorationFactor)
			}
		case salary.ModePercentage:
			base := values[*c.BaseComponent]
			v = c.Value.Div(decimal.NewFromInt(100)).Mul(base)
		case salary.ModeFormula:
			evaluated, err := pc.formula.eval(values)
			if err != nil {
				return nil, invalidFormula(c.Name, err.Error())
			}
			v = evaluated
		}
		v = v.Round(2)
		values[c.Name] = v

		if c.Kind == salary.ComponentKindEarning {
			result.GrossEarnings = result.GrossEarnings.Add(v)
			if c.Taxable {
				result.TaxableEarnings = result.TaxableEarnings.Add(v)
			}
		} else {
			result.TotalDeductions = result.TotalDeductions.Add(v)
		}
	}

	// Report values in DisplayOrder, not evaluation order.
	for _, pc := range p.components {
		result.Order = append(result.Order, pc.component.Name)
	}
	return result, nil
}

// Component returns the compiled component by name.
func (p *ResolutionPlan) Component(name string) (salary.SalaryComponent, bool) {
	idx, ok := p.byName[name]
	if !ok {
		return salary.SalaryComponent{}, false
	}
	return p.components[idx].component, true
}

// BasicComponentName returns the name of the structure's basic component.
func (p *ResolutionPlan) BasicComponentName() string {
	return p.components[p.basicIdx].component.Name
}
