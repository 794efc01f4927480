package fleet

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/handler"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// Invoker delivers one lifecycle event to a named handler.
type Invoker interface {
	Invoke(ctx context.Context, name string, ev lifecycle.Event) (lifecycle.Response, error)
}

// LocalInvoker runs the handlers in-process.
type LocalInvoker map[string]*lifecycle.Dispatcher

func (l LocalInvoker) Invoke(ctx context.Context, name string, ev lifecycle.Event) (lifecycle.Response, error) {
	d, ok := l[name]
	if !ok {
		return lifecycle.Response{}, core.NewAppError(core.ErrNotFound, fmt.Sprintf("unknown handler %q", name))
	}
	return d.Dispatch(ctx, ev), nil
}

type WorkspaceLister interface {
	ListWorkspaces(ctx context.Context, directoryID string) ([]core.WorkspaceInstance, error)
}

// Item is the outcome for one trainee.
type Item struct {
	Username    string `json:"username"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

type Report struct {
	DirectoryID  string `json:"directory_id"`
	Registration Item   `json:"registration"`
	Items        []Item `json:"items"`
}

const (
	itemOK     = "OK"
	itemFailed = "FAILED"
)

type Runner struct {
	inv Invoker
	log *zap.Logger
}

func NewRunner(inv Invoker, log *zap.Logger) *Runner {
	return &Runner{inv: inv, log: log}
}

// call invokes one event and turns a FAILED response into an error.
func (r *Runner) call(ctx context.Context, name string, ev lifecycle.Event) (lifecycle.Response, error) {
	resp, err := r.inv.Invoke(ctx, name, ev)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", ev.LogicalResourceID, ev.RequestType, err)
	}
	if !resp.Succeeded() {
		return resp, fmt.Errorf("%s %s: %s", ev.LogicalResourceID, ev.RequestType, resp.Reason)
	}
	return resp, nil
}

// Up registers the directory and then provisions every trainee with at
// most Concurrency pairs in flight. A workspace is only requested once
// its user exists. Every item runs to completion; the returned error
// aggregates every failure.
func (r *Runner) Up(ctx context.Context, plan Plan) (Report, error) {
	plan = plan.WithDefaults()
	if err := plan.ValidateUp(); err != nil {
		return Report{}, err
	}
	report := Report{DirectoryID: plan.DirectoryID}
	log := r.log.With(zap.String("directory_id", plan.DirectoryID))

	if _, err := r.call(ctx, handler.NameRegistration, plan.event(lifecycle.RequestCreate, logicalRegistration, plan.registrationProps())); err != nil {
		report.Registration = Item{Status: itemFailed, Reason: err.Error()}
		return report, err
	}
	report.Registration = Item{Status: itemOK}
	log.Info("directory registered")

	users := plan.Users()
	report.Items = make([]Item, len(users))
	errs := make([]error, len(users))

	var g errgroup.Group
	g.SetLimit(plan.Concurrency)
	for i, u := range users {
		g.Go(func() error {
			report.Items[i], errs[i] = r.upTrainee(ctx, plan, u)
			return nil
		})
	}
	g.Wait()

	var result *multierror.Error
	for i, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
			observability.FleetItemsTotal.WithLabelValues("up", "failed").Inc()
			log.Warn("trainee failed", zap.String("username", users[i]), zap.Error(err))
			continue
		}
		observability.FleetItemsTotal.WithLabelValues("up", "ok").Inc()
	}
	log.Info("fleet up finished", zap.Int("trainees", len(users)), zap.Int("failed", countFailed(report.Items)))
	return report, result.ErrorOrNil()
}

func (r *Runner) upTrainee(ctx context.Context, plan Plan, username string) (Item, error) {
	item := Item{Username: username}
	if _, err := r.call(ctx, handler.NameUser, plan.event(lifecycle.RequestCreate, userLogicalID(username), plan.userProps(username))); err != nil {
		item.Status, item.Reason = itemFailed, err.Error()
		return item, err
	}
	resp, err := r.call(ctx, handler.NameWorkspace, plan.event(lifecycle.RequestCreate, workspaceLogicalID(username), plan.workspaceProps(username)))
	if err != nil {
		item.Status, item.Reason = itemFailed, err.Error()
		return item, err
	}
	item.Status, item.WorkspaceID = itemOK, resp.PhysicalResourceID
	return item, nil
}

// Down reverses Up: every live workspace of the plan's trainees (all of
// them when the plan names none) is deleted through the workspace handler,
// then the registration delete sweeps whatever is left and deregisters.
func (r *Runner) Down(ctx context.Context, plan Plan, lister WorkspaceLister) (Report, error) {
	plan = plan.WithDefaults()
	if err := plan.ValidateDown(); err != nil {
		return Report{}, err
	}
	report := Report{DirectoryID: plan.DirectoryID}
	log := r.log.With(zap.String("directory_id", plan.DirectoryID))

	all, err := lister.ListWorkspaces(ctx, plan.DirectoryID)
	if err != nil {
		return report, fmt.Errorf("list workspaces: %w", err)
	}
	targets := liveWorkspaces(all, plan.Users())
	report.Items = make([]Item, len(targets))

	var g errgroup.Group
	g.SetLimit(plan.Concurrency)
	for i, ws := range targets {
		g.Go(func() error {
			ev := plan.event(lifecycle.RequestDelete, workspaceLogicalID(ws.Username), plan.workspaceProps(ws.Username))
			ev.PhysicalResourceID = ws.WorkspaceID
			item := Item{Username: ws.Username, WorkspaceID: ws.WorkspaceID, Status: itemOK}
			if _, err := r.call(ctx, handler.NameWorkspace, ev); err != nil {
				item.Status, item.Reason = itemFailed, err.Error()
			}
			report.Items[i] = item
			return nil
		})
	}
	g.Wait()

	var result *multierror.Error
	for _, item := range report.Items {
		if item.Status == itemFailed {
			result = multierror.Append(result, fmt.Errorf("%s", item.Reason))
			observability.FleetItemsTotal.WithLabelValues("down", "failed").Inc()
			continue
		}
		observability.FleetItemsTotal.WithLabelValues("down", "ok").Inc()
	}

	ev := plan.event(lifecycle.RequestDelete, logicalRegistration, plan.registrationProps())
	ev.PhysicalResourceID = core.RegistrationPhysicalID(plan.DirectoryID)
	if _, err := r.call(ctx, handler.NameRegistration, ev); err != nil {
		report.Registration = Item{Status: itemFailed, Reason: err.Error()}
		result = multierror.Append(result, err)
	} else {
		report.Registration = Item{Status: itemOK}
	}
	log.Info("fleet down finished", zap.Int("workspaces", len(targets)), zap.String("registration", report.Registration.Status))
	return report, result.ErrorOrNil()
}

func liveWorkspaces(all []core.WorkspaceInstance, users []string) []core.WorkspaceInstance {
	want := make(map[string]bool, len(users))
	for _, u := range users {
		want[u] = true
	}
	var out []core.WorkspaceInstance
	for _, ws := range all {
		if ws.Terminated() || ws.State == "TERMINATING" {
			continue
		}
		if len(want) > 0 && !want[ws.Username] {
			continue
		}
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func countFailed(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Status == itemFailed {
			n++
		}
	}
	return n
}
