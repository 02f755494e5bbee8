package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

const (
	mapInnerWidth = 37
	mapTitle      = "Dependency Flow"
)

// CycleError reports tickets whose dependencies can never be satisfied
type CycleError struct {
	Tickets []Ticket
}

func (e *CycleError) Error() string {
	return e.coded().Error()
}

// Unwrap exposes the coded error so errors.CodeOf reports PLAN-002
func (e *CycleError) Unwrap() error {
	return e.coded()
}

func (e *CycleError) coded() *errors.DevflowError {
	names := make([]string, 0, len(e.Tickets))
	for _, t := range e.Tickets {
		names = append(names, fmt.Sprintf("%d (%s)", t.ID, t.Title))
	}
	return errors.NewCycleDetectedError(strings.Join(names, ", "))
}

type rankedTicket struct {
	ticket Ticket
	depth  int
}

// topoOrder runs Kahn's algorithm over the tickets. Dependencies on IDs
// that are not in the list are ignored. The returned order is breadth-first
// from the zero-dependency tickets, with ties broken by list order.
func topoOrder(tickets []Ticket) ([]rankedTicket, error) {
	index := make(map[int]int, len(tickets))
	for i, t := range tickets {
		index[t.ID] = i
	}

	inDegree := make([]int, len(tickets))
	dependents := make([][]int, len(tickets))
	for i, t := range tickets {
		for _, dep := range t.DependsOn {
			j, ok := index[dep]
			if !ok {
				continue
			}
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	depth := make([]int, len(tickets))
	queue := make([]int, 0, len(tickets))
	for i := range tickets {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]rankedTicket, 0, len(tickets))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, rankedTicket{ticket: tickets[i], depth: depth[i]})

		// dependents were collected in list order
		for _, j := range dependents[i] {
			if depth[i]+1 > depth[j] {
				depth[j] = depth[i] + 1
			}
			inDegree[j]--
			if inDegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(order) < len(tickets) {
		var stuck []Ticket
		for i, t := range tickets {
			if inDegree[i] > 0 {
				stuck = append(stuck, t)
			}
		}
		return nil, &CycleError{Tickets: stuck}
	}

	return order, nil
}

// RenderDependencyMap draws the tickets as an indented tree inside a box.
// Each ticket is indented two spaces per level of dependency depth.
func RenderDependencyMap(tickets []Ticket) (string, error) {
	order, err := topoOrder(tickets)
	if err != nil {
		return "", err
	}

	rule := strings.Repeat("─", mapInnerWidth)

	var b strings.Builder
	b.WriteString("┌" + rule + "┐\n")
	b.WriteString("│" + lipgloss.PlaceHorizontal(mapInnerWidth, lipgloss.Center, mapTitle) + "│\n")
	b.WriteString("├" + rule + "┤\n")
	for _, r := range order {
		b.WriteString("│ " + strings.Repeat("  ", r.depth) + "• " + r.ticket.Title + "\n")
	}
	b.WriteString("└" + rule + "┘\n")

	return b.String(), nil
}

// Depths returns the dependency depth of every ticket keyed by ID
func Depths(tickets []Ticket) (map[int]int, error) {
	order, err := topoOrder(tickets)
	if err != nil {
		return nil, err
	}

	depths := make(map[int]int, len(order))
	for _, r := range order {
		depths[r.ticket.ID] = r.depth
	}
	return depths, nil
}
