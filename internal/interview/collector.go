// Package interview collects a feature description from the operator one
// line at a time. The dialog is an explicit state machine: every step shows
// one prompt and consumes exactly one answer.
package interview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/feature"
	"github.com/felixgeelhaar/devflow/internal/prompt"
)

// Step identifies the question the collector is waiting on
type Step int

const (
	StepBusinessContext Step = iota
	StepInScope
	StepOutOfScope
	StepFlowName
	StepFlowDescription
	StepSuccessStep
	StepFailureStep
	StepDone
)

var stepNames = map[Step]string{
	StepBusinessContext: "business-context",
	StepInScope:         "in-scope",
	StepOutOfScope:      "out-of-scope",
	StepFlowName:        "flow-name",
	StepFlowDescription: "flow-description",
	StepSuccessStep:     "success-step",
	StepFailureStep:     "failure-step",
	StepDone:            "done",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Collector manages the input dialog
type Collector struct {
	step   Step
	result feature.Description
	flow   feature.UserFlow
	out    io.Writer
}

// NewCollector creates a collector positioned at the first question.
// Section headers are written to out.
func NewCollector(out io.Writer) *Collector {
	if out == nil {
		out = io.Discard
	}
	c := &Collector{out: out}
	c.Reset()
	return c
}

// Reset discards collected answers and starts over
func (c *Collector) Reset() {
	c.step = StepBusinessContext
	c.result = feature.Description{}
	c.result.Normalize()
	c.flow = feature.UserFlow{}
}

// Step returns the current state
func (c *Collector) Step() Step {
	return c.step
}

// IsComplete returns true once the empty flow name has been entered
func (c *Collector) IsComplete() bool {
	return c.step == StepDone
}

// Prompt returns the text shown before reading the answer for the current step
func (c *Collector) Prompt() string {
	switch c.step {
	case StepBusinessContext:
		return "Business Context: "
	case StepInScope:
		return fmt.Sprintf("%d. ", len(c.result.InScope)+1)
	case StepOutOfScope:
		return fmt.Sprintf("%d. ", len(c.result.OutOfScope)+1)
	case StepFlowName:
		return fmt.Sprintf("Flow %d name: ", len(c.result.UserFlows)+1)
	case StepFlowDescription:
		return "Description: "
	case StepSuccessStep:
		return fmt.Sprintf("Success step %d: ", len(c.flow.SuccessPath)+1)
	case StepFailureStep:
		return fmt.Sprintf("Failure step %d: ", len(c.flow.FailurePaths)+1)
	default:
		return ""
	}
}

// header returns the guidance printed when a step is first entered
func (c *Collector) header() string {
	switch c.step {
	case StepBusinessContext:
		return "🔍 Feature Discovery Process Started\n\n" +
			"Please provide the following information:\n\n" +
			"1. Business Context:\n" +
			"   (Describe the business impact and stakeholder value)"
	case StepInScope:
		if len(c.result.InScope) > 0 {
			return ""
		}
		return "\n2. In Scope:\n" +
			"   (List functionality explicitly included in this feature)\n" +
			"In Scope Items (enter items one by one, empty line to finish):"
	case StepOutOfScope:
		if len(c.result.OutOfScope) > 0 {
			return ""
		}
		return "\n3. Out of Scope:\n" +
			"   (List functionality explicitly excluded from this feature)\n" +
			"Out of Scope Items (enter items one by one, empty line to finish):"
	case StepFlowName:
		if len(c.result.UserFlows) > 0 {
			return ""
		}
		return "\n4. User Flows:\n" +
			"   (Describe how users will interact with the feature)\n" +
			"User Flows (press Enter with empty name to finish):"
	case StepSuccessStep:
		if len(c.flow.SuccessPath) > 0 {
			return ""
		}
		return "Success path steps (empty line to finish):"
	case StepFailureStep:
		if len(c.flow.FailurePaths) > 0 {
			return ""
		}
		return "Failure path steps (empty line to finish):"
	default:
		return ""
	}
}

// Answer records the answer for the current step and advances
func (c *Collector) Answer(line string) error {
	value := strings.TrimSpace(line)

	switch c.step {
	case StepBusinessContext:
		c.result.BusinessContext = value
		c.step = StepInScope

	case StepInScope:
		if value == "" {
			c.step = StepOutOfScope
			break
		}
		c.result.InScope = append(c.result.InScope, value)

	case StepOutOfScope:
		if value == "" {
			c.step = StepFlowName
			break
		}
		c.result.OutOfScope = append(c.result.OutOfScope, value)

	case StepFlowName:
		if value == "" {
			c.step = StepDone
			break
		}
		c.flow = feature.UserFlow{Name: value, SuccessPath: []string{}, FailurePaths: []string{}}
		c.step = StepFlowDescription

	case StepFlowDescription:
		c.flow.Description = value
		c.step = StepSuccessStep

	case StepSuccessStep:
		if value == "" {
			c.step = StepFailureStep
			break
		}
		c.flow.SuccessPath = append(c.flow.SuccessPath, value)

	case StepFailureStep:
		if value == "" {
			c.result.UserFlows = append(c.result.UserFlows, c.flow)
			c.flow = feature.UserFlow{}
			c.step = StepFlowName
			break
		}
		c.flow.FailurePaths = append(c.flow.FailurePaths, value)

	default:
		return fmt.Errorf("interview already completed")
	}

	return nil
}

// Result returns the collected description
func (c *Collector) Result() (*feature.Description, error) {
	if !c.IsComplete() {
		return nil, fmt.Errorf("interview not complete (at %s)", c.step)
	}
	d := c.result
	d.Normalize()
	return &d, nil
}

// Collect drives the dialog over r until it completes. Headers are printed
// once per section; cancellation is checked between steps.
func (c *Collector) Collect(ctx context.Context, r prompt.LineReader) (*feature.Description, error) {
	for !c.IsComplete() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if h := c.header(); h != "" {
			fmt.Fprintln(c.out, h)
		}

		line, err := r.ReadLine(c.Prompt())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.step, err)
		}
		if err := c.Answer(line); err != nil {
			return nil, err
		}
	}

	return c.Result()
}

// LineCollector runs a fresh Collector over a LineReader for every call
type LineCollector struct {
	reader prompt.LineReader
	out    io.Writer
}

// NewLineCollector creates a LineCollector reading from r and writing headers to out
func NewLineCollector(r prompt.LineReader, out io.Writer) *LineCollector {
	return &LineCollector{reader: r, out: out}
}

// Collect gathers one feature description interactively
func (l *LineCollector) Collect(ctx context.Context) (*feature.Description, error) {
	return NewCollector(l.out).Collect(ctx, l.reader)
}
