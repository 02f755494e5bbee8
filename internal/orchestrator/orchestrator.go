// Package orchestrator drives one discovery run: resume check, input
// collection, clarification, ticket planning and tracker publishing. Every
// step persists the session so a failed or interrupted run can be resumed.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/devflow/internal/analysis"
	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/feature"
	"github.com/felixgeelhaar/devflow/internal/hooks"
	"github.com/felixgeelhaar/devflow/internal/log"
	"github.com/felixgeelhaar/devflow/internal/plan"
	"github.com/felixgeelhaar/devflow/internal/prompt"
	"github.com/felixgeelhaar/devflow/internal/session"
	"github.com/felixgeelhaar/devflow/internal/telemetry"
	"github.com/felixgeelhaar/devflow/internal/tracker"
)

// InputCollector gathers a feature description from the operator
type InputCollector interface {
	Collect(ctx context.Context) (*feature.Description, error)
}

// ReviewFunc asks the operator to approve a plan before it is published
type ReviewFunc func(ctx context.Context, p *plan.Plan) (bool, error)

// Config wires the orchestrator's collaborators. Store, Prompter and
// Collector are required; Tracker, Publisher, Review and Hooks are optional.
type Config struct {
	Store     *session.Store
	Prompter  *prompt.Prompter
	Collector InputCollector
	InputFile string

	Tracker   tracker.Tracker
	Publisher *tracker.Publisher
	Review    ReviewFunc

	Hooks  *hooks.Registry
	Logger *log.Logger
	Out    io.Writer
}

// Result is the outcome of a run
type Result struct {
	RunID       string
	State       State
	Err         error
	Session     *session.Session
	Publication *tracker.Publication
}

// Orchestrator runs the discovery pipeline
type Orchestrator struct {
	cfg    Config
	out    io.Writer
	logger *log.Logger

	runID            string
	session          *session.Session
	trackerAvailable bool
	publication      *tracker.Publication
}

// New creates an Orchestrator. A Publisher is derived from the Tracker when
// none is given.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("orchestrator: session store is required")
	}
	if cfg.Prompter == nil {
		return nil, fmt.Errorf("orchestrator: prompter is required")
	}
	if cfg.Collector == nil {
		return nil, fmt.Errorf("orchestrator: input collector is required")
	}

	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	logger := cfg.Logger
	if cfg.Tracker != nil && cfg.Publisher == nil {
		cfg.Publisher = tracker.NewPublisher(cfg.Tracker, cfg.Prompter, out, logger)
	}

	return &Orchestrator{cfg: cfg, out: out, logger: logger}, nil
}

// Run executes the pipeline until it reaches a terminal state. Failures are
// reported in the Result; Run itself never panics.
func (o *Orchestrator) Run(ctx context.Context) (res Result) {
	o.runID = uuid.NewString()
	o.session = session.New()
	o.publication = nil
	o.logger = o.cfg.Logger.With("run_id", o.runID)

	ctx, span := telemetry.StartRunSpan(ctx, o.runID)
	defer span.End()

	state := StateStart
	defer func() {
		if r := recover(); r != nil {
			res = o.fail(ctx, state, fmt.Errorf("unexpected panic: %v", r))
		}
		if res.Err != nil {
			telemetry.RecordError(span, res.Err)
		} else {
			telemetry.RecordSuccess(span)
		}
		telemetry.RecordRun(ctx, res.State.String())
		o.logger.Info("discovery finished", "state", res.State.String())
	}()

	for !state.Terminal() {
		next, err := o.step(ctx, state)
		if err != nil {
			return o.fail(ctx, state, err)
		}
		o.logger.Debug("state transition", "from", state.String(), "to", next.String())
		state = next
	}

	return o.result(state, nil)
}

func (o *Orchestrator) step(ctx context.Context, s State) (State, error) {
	ctx, span := telemetry.StartStageSpan(ctx, s.String())
	defer span.End()

	start := time.Now()
	defer func() { telemetry.RecordStageDuration(ctx, s.String(), time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return s, err
	}

	var (
		next State
		err  error
	)
	switch s {
	case StateStart:
		next, err = o.start(ctx)
	case StateResumeCheck:
		next, err = o.resumeCheck(ctx)
	case StateCollectingInput:
		next, err = o.collectInput(ctx)
	case StateClarifying:
		next, err = o.clarify(ctx)
	case StatePlanning:
		next, err = o.planTickets(ctx)
	case StatePublishing:
		next, err = o.publish(ctx)
	default:
		err = fmt.Errorf("no transition from state %s", s)
	}

	if err != nil {
		telemetry.RecordError(span, err)
		return s, err
	}
	telemetry.RecordSuccess(span)
	return next, nil
}

func (o *Orchestrator) start(ctx context.Context) (State, error) {
	fmt.Fprintln(o.out, "🔍 Feature Discovery Mode Activated")
	fmt.Fprintf(o.out, "📋 Planning large features with %s integration\n", o.trackerLabel())
	fmt.Fprintln(o.out)

	o.logger.Info("discovery started", "input_file", o.cfg.InputFile)
	o.fire(ctx, hooks.EventDiscoveryStarted, map[string]any{"inputFile": o.cfg.InputFile})
	return StateResumeCheck, nil
}

func (o *Orchestrator) resumeCheck(ctx context.Context) (State, error) {
	next := StateCollectingInput

	if o.cfg.Store.HasProgress() {
		resume, err := o.cfg.Prompter.Confirm("Previous progress found. Resume? (y/N)", false)
		if err != nil {
			return 0, err
		}

		if resume {
			if saved := o.cfg.Store.Load(); saved != nil {
				o.session = saved
				fmt.Fprintln(o.out, "✓ Resumed previous session")
				if saved.Input != nil {
					next = StateClarifying
				}
			}
		} else if err := o.cfg.Store.Clear(); err != nil {
			o.logger.WithError(err).Warn("could not clear previous session")
		}
	}

	if o.cfg.Tracker != nil {
		name := o.cfg.Tracker.Name()
		fmt.Fprintf(o.out, "🔍 Validating %s setup...\n", name)
		fmt.Fprintln(o.out)
		fmt.Fprintf(o.out, "⚠️  Note: %s operations run through the configured MCP server\n", name)
		fmt.Fprintf(o.out, "If %s operations fail later, check your MCP server setup.\n", name)
		fmt.Fprintln(o.out)

		ok, err := o.cfg.Prompter.Confirm(fmt.Sprintf("Proceed with %s integration? (Y/n)", name), true)
		if err != nil {
			return 0, err
		}
		o.trackerAvailable = ok
	}
	o.logger.Debug("tracker availability", "available", o.trackerAvailable)

	return next, nil
}

func (o *Orchestrator) collectInput(ctx context.Context) (State, error) {
	var input *feature.Description

	if o.cfg.InputFile != "" {
		d, err := feature.LoadFile(o.cfg.InputFile)
		if err != nil {
			o.logger.WithError(err).Warn("input file rejected", "path", o.cfg.InputFile)
			fmt.Fprintln(o.out, "⚠️  Could not load input file, falling back to interactive mode")
		} else {
			fmt.Fprintln(o.out, "✓ Loaded input from file")
			input = d
		}
	}

	if input == nil {
		d, err := o.cfg.Collector.Collect(ctx)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInputCollection, "input collection failed", err)
		}
		input = d
	}

	o.session.Input = input
	o.persist("input_collected")

	o.fire(ctx, hooks.EventInputCollected, map[string]any{
		"projectName": plan.ProjectName(input.BusinessContext),
		"userFlows":   len(input.UserFlows),
	})
	return StateClarifying, nil
}

func (o *Orchestrator) clarify(ctx context.Context) (State, error) {
	fmt.Fprintln(o.out, "🤔 Analyzing requirements and generating clarifications...")

	o.session.Clarifications = analysis.Clarifications(*o.session.Input)
	o.persist("clarifications")

	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, "📋 Clarification Questions:")
	for i, q := range o.session.Clarifications {
		fmt.Fprintf(o.out, "%d. %s\n", i+1, q)
	}
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, "Please review these questions and provide answers.")
	fmt.Fprintln(o.out, `Type "continue" when ready to proceed with ticket breakdown.`)

	answer, err := o.cfg.Prompter.Ask("Ready to continue? (continue)")
	if err != nil {
		return 0, err
	}
	if !strings.EqualFold(answer, "continue") {
		fmt.Fprintln(o.out, "Please address the clarifications and run the command again.")
		o.logger.Info("discovery halted at clarification")
		o.fire(ctx, hooks.EventDiscoveryHalted, map[string]any{
			"clarifications": len(o.session.Clarifications),
		})
		return StateHalted, nil
	}

	return StatePlanning, nil
}

func (o *Orchestrator) planTickets(ctx context.Context) (State, error) {
	fmt.Fprintln(o.out, "🎫 Generating intelligent ticket breakdown...")

	digest, err := plan.InputDigest(*o.session.Input)
	if err != nil {
		return 0, err
	}

	p := o.session.ProjectPlan
	if p != nil && p.InputDigest == digest {
		o.logger.Debug("reusing saved plan", "digest", digest)
	} else {
		if p, err = plan.Generate(*o.session.Input); err != nil {
			return 0, err
		}
		o.session.ProjectPlan = p
	}

	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, "📊 Proposed Ticket Breakdown:")
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, p.FormatTickets())
	fmt.Fprintln(o.out, "🗺️  Dependency Map:")
	fmt.Fprintln(o.out, p.DependencyMap)

	o.persist("plan")

	o.fire(ctx, hooks.EventPlanCreated, map[string]any{
		"projectName": p.ProjectName,
		"tickets":     len(p.Tickets),
		"digest":      p.InputDigest,
	})
	return StatePublishing, nil
}

func (o *Orchestrator) publish(ctx context.Context) (State, error) {
	fmt.Fprintln(o.out)

	if !o.trackerAvailable || o.cfg.Publisher == nil {
		o.saveLocal()
		return StateDone, nil
	}

	p := o.session.ProjectPlan
	name := o.cfg.Tracker.Name()

	approved, err := o.approve(ctx, name, p)
	if err != nil {
		return 0, err
	}
	if !approved {
		o.saveLocal()
		return StateDone, nil
	}

	pub, err := o.cfg.Publisher.Publish(ctx, p)
	o.publication = pub
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(o.out)
	color.New(color.FgGreen).Fprintf(o.out, "🎉 Successfully created %s project and tickets!\n", name)
	fmt.Fprintf(o.out, "🔗 Project: %s\n", pub.Project.Name)
	fmt.Fprintf(o.out, "📊 Created %d tickets\n", len(pub.Issues))

	o.fire(ctx, hooks.EventPlanPublished, map[string]any{
		"tracker":     name,
		"projectId":   pub.Project.ID,
		"projectName": pub.Project.Name,
		"tickets":     len(pub.Issues),
	})

	if err := o.cfg.Store.Clear(); err != nil {
		o.logger.WithError(err).Warn("could not clear session after publishing")
	}
	return StateDone, nil
}

func (o *Orchestrator) approve(ctx context.Context, name string, p *plan.Plan) (bool, error) {
	if o.cfg.Review != nil {
		return o.cfg.Review(ctx, p)
	}

	fmt.Fprintf(o.out, "Ready to create %s project and tickets.\n", name)
	return o.cfg.Prompter.Confirm(fmt.Sprintf("Proceed with %s creation? (y/N)", name), false)
}

func (o *Orchestrator) saveLocal() {
	fmt.Fprintln(o.out, "💾 Project plan created and saved locally.")
	fmt.Fprintf(o.out, "You can manually create %s tickets using the breakdown above.\n", o.trackerLabel())
	o.persist("local")
}

// persist saves the session. Write failures are logged and never stop the
// run; the plan is still printed and can be published.
func (o *Orchestrator) persist(step string) {
	if err := o.cfg.Store.Save(o.session); err != nil {
		o.logger.WithError(err).Warn("could not save session", "step", step, "path", o.cfg.Store.Path())
	}
}

// fail moves the run into FailedRecoverable: the session is saved
// best-effort and the failure hook fires.
func (o *Orchestrator) fail(ctx context.Context, s State, err error) Result {
	o.logger.LogError(ctx, "discovery failed", err)

	if o.session != nil {
		if saveErr := o.cfg.Store.Save(o.session); saveErr != nil {
			o.logger.WithError(saveErr).Warn("could not save session for recovery")
		}
	}

	color.New(color.FgRed).Fprintf(o.out, "❌ %s failed: %s\n", o.stageLabel(s), err)
	fmt.Fprintln(o.out, "💾 Progress saved for recovery. You can resume by running the command again.")

	o.fire(context.WithoutCancel(ctx), hooks.EventDiscoveryFailed, map[string]any{
		"state": s.String(),
		"error": err.Error(),
		"code":  string(errors.CodeOf(err)),
	})

	return o.result(StateFailedRecoverable, err)
}

func (o *Orchestrator) result(s State, err error) Result {
	return Result{
		RunID:       o.runID,
		State:       s,
		Err:         err,
		Session:     o.session,
		Publication: o.publication,
	}
}

// fire runs the hooks for an event. Hook failures never stop the pipeline.
func (o *Orchestrator) fire(ctx context.Context, t hooks.EventType, data map[string]any) {
	if err := o.cfg.Hooks.Fire(ctx, hooks.NewEvent(t, o.runID, data)); err != nil {
		o.logger.WithError(err).Warn("hook failed", "event", string(t))
	}
}

func (o *Orchestrator) trackerLabel() string {
	if o.cfg.Tracker != nil {
		return o.cfg.Tracker.Name()
	}
	return "tracker"
}

func (o *Orchestrator) stageLabel(s State) string {
	switch s {
	case StateResumeCheck:
		return "Resume check"
	case StateCollectingInput:
		return "Input collection"
	case StateClarifying:
		return "Clarification"
	case StatePlanning:
		return "Ticket breakdown"
	case StatePublishing:
		return o.trackerLabel() + " integration"
	default:
		return "Discovery process"
	}
}
