// Package pipeline sequences one page load: the status check, and the
// users -> places_search chain that renders one fragment per place.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/events"
	"github.com/yourorg/hbnb-web/internal/render"
	"github.com/yourorg/hbnb-web/internal/userindex"
)

var ErrAlreadyRun = errors.New("pipeline: instance already ran")

type State int

const (
	Idle State = iota
	StatusRequested
	UsersRequested
	PlacesRequested
	Rendered
)

func (s State) String() string {
	switch s {
	case StatusRequested:
		return "status_requested"
	case UsersRequested:
		return "users_requested"
	case PlacesRequested:
		return "places_requested"
	case Rendered:
		return "rendered"
	default:
		return "idle"
	}
}

// Branch names the step an error came from.
type Branch string

const (
	BranchStatus Branch = "status"
	BranchUsers  Branch = "users"
	BranchPlaces Branch = "places"
	BranchRender Branch = "render"
)

// API is the subset of the hbnb client the pipeline calls.
type API interface {
	Status(ctx context.Context) (hbnb.Status, error)
	Users(ctx context.Context) ([]hbnb.User, error)
	SearchPlaces(ctx context.Context, method string, filter *hbnb.SearchFilter) ([]hbnb.PlaceResult, error)
}

// StatusIndicator is the availability node.
type StatusIndicator interface {
	SetAPIAvailable(ok bool)
}

// ErrorHandler receives every failed branch. The page is left as it was.
type ErrorHandler func(ctx context.Context, branch Branch, err error)

// IgnoreErrors is the default ErrorHandler.
func IgnoreErrors(context.Context, Branch, error) {}

// Variant is the places_search request shape plus the fragment layout.
type Variant struct {
	Name   string
	Method string
	Filter *hbnb.SearchFilter
	Layout render.Layout
}

// PostVariant sends POST with all filter lists empty and renders classic fragments.
func PostVariant() Variant {
	return Variant{Name: "post", Method: http.MethodPost, Filter: hbnb.EmptyFilter(), Layout: render.LayoutClassic}
}

// GetVariant sends GET with an empty object body and renders title-box fragments.
func GetVariant() Variant {
	return Variant{Name: "get", Method: http.MethodGet, Filter: nil, Layout: render.LayoutTitleBox}
}

// WithLayout overrides the fragment layout. An empty name keeps the preset's.
func (v Variant) WithLayout(name string) Variant {
	if strings.TrimSpace(name) != "" {
		v.Layout = render.ParseLayout(name)
	}
	return v
}

// ParseVariant maps a config value to a preset; anything but "get" is POST.
func ParseVariant(name string) Variant {
	if strings.EqualFold(strings.TrimSpace(name), "get") {
		return GetVariant()
	}
	return PostVariant()
}

type Deps struct {
	API     API
	Status  StatusIndicator
	Target  render.Target
	Variant Variant
	OnError ErrorHandler
	Events  events.Publisher
	Logger  *slog.Logger
	// RunID identifies the run in events and logs; generated when empty.
	RunID string
}

type Result struct {
	RunID     string
	State     State
	Available bool
	Places    int
	Rendered  int
	Degraded  int
	Misses    int
	StatusErr error
	UsersErr  error
	PlacesErr error
	RenderErr error
}

func (r Result) failedBranches() []string {
	var out []string
	for _, f := range []struct {
		branch Branch
		err    error
	}{
		{BranchStatus, r.StatusErr},
		{BranchUsers, r.UsersErr},
		{BranchPlaces, r.PlacesErr},
		{BranchRender, r.RenderErr},
	} {
		if f.err != nil {
			out = append(out, string(f.branch))
		}
	}
	return out
}

// Orchestrator runs exactly once. Create a new one per page load.
type Orchestrator struct {
	deps     Deps
	renderer render.Renderer
	log      *slog.Logger
	started  atomic.Bool

	mu    sync.Mutex
	state State
}

func New(d Deps) *Orchestrator {
	if d.OnError == nil {
		d.OnError = IgnoreErrors
	}
	if d.RunID == "" {
		d.RunID = uuid.NewString()
	}
	if d.Variant.Method == "" {
		d.Variant = PostVariant()
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		deps:     d,
		renderer: render.Renderer{Layout: d.Variant.Layout, Target: d.Target},
		log:      logger.With("component", "pipeline", "run_id", d.RunID, "variant", d.Variant.Name),
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Run fires the status check and the users -> places chain concurrently and
// returns once both have settled.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if !o.started.CompareAndSwap(false, true) {
		return Result{RunID: o.deps.RunID, State: o.State()}, ErrAlreadyRun
	}
	start := time.Now()

	var (
		wg        sync.WaitGroup
		available bool
		statusErr error
		chain     chainResult
	)
	o.advance(ctx, StatusRequested)
	wg.Add(2)
	go func() {
		defer wg.Done()
		available, statusErr = o.runStatus(ctx)
	}()
	o.advance(ctx, UsersRequested)
	go func() {
		defer wg.Done()
		chain = o.runChain(ctx)
	}()
	wg.Wait()

	res := Result{
		RunID:     o.deps.RunID,
		State:     o.State(),
		Available: available,
		Places:    chain.places,
		Rendered:  chain.rendered,
		Degraded:  chain.degraded,
		Misses:    chain.misses,
		StatusErr: statusErr,
		UsersErr:  chain.usersErr,
		PlacesErr: chain.placesErr,
		RenderErr: chain.renderErr,
	}
	o.publish(ctx, events.Event{
		Kind:     events.KindFinished,
		State:    res.State.String(),
		Rendered: res.Rendered,
		Degraded: res.Degraded,
		Misses:   res.Misses,
		Failures: res.failedBranches(),
		Err:      errString(errors.Join(res.StatusErr, res.UsersErr, res.PlacesErr, res.RenderErr)),
	})
	o.log.Info("pipeline finished",
		"state", res.State.String(),
		"available", res.Available,
		"places", res.Places,
		"rendered", res.Rendered,
		"degraded", res.Degraded,
		"join_misses", res.Misses,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (o *Orchestrator) runStatus(ctx context.Context) (bool, error) {
	st, err := o.deps.API.Status(ctx)
	if err != nil {
		o.fail(ctx, BranchStatus, err)
		return false, err
	}
	ok := st.Available()
	if o.deps.Status != nil {
		o.deps.Status.SetAPIAvailable(ok)
	}
	return ok, nil
}

type chainResult struct {
	places    int
	rendered  int
	degraded  int
	misses    int
	usersErr  error
	placesErr error
	renderErr error
}

func (o *Orchestrator) runChain(ctx context.Context) chainResult {
	var out chainResult

	users, err := o.deps.API.Users(ctx)
	if err != nil {
		o.fail(ctx, BranchUsers, err)
		out.usersErr = err
		return out
	}
	index := userindex.Build(users)
	o.log.Debug("user index built", "users", index.Len())

	// places are only requested once the index is complete
	o.advance(ctx, PlacesRequested)
	v := o.deps.Variant
	results, err := o.deps.API.SearchPlaces(ctx, v.Method, v.Filter)
	if err != nil {
		o.fail(ctx, BranchPlaces, err)
		out.placesErr = err
		return out
	}
	out.places = len(results)

	var renderErrs []error
	for _, r := range results {
		if r.Err != nil {
			o.log.Warn("degraded place fragment", "place_id", r.Place.ID, "error", r.Err)
			if _, err := o.renderer.RenderInvalid(r); err != nil {
				renderErrs = append(renderErrs, err)
				continue
			}
			out.degraded++
			out.rendered++
			continue
		}
		var owner *hbnb.User
		if r.Place.UserID != "" {
			owner = index.Owner(r.Place.UserID)
			if owner == nil {
				out.misses++
				o.log.Warn("place owner not in user index", "place_id", r.Place.ID, "user_id", r.Place.UserID)
			}
		}
		if _, err := o.renderer.Render(r.Place, owner); err != nil {
			renderErrs = append(renderErrs, err)
			continue
		}
		out.rendered++
	}
	if len(renderErrs) > 0 {
		out.renderErr = errors.Join(renderErrs...)
		o.fail(ctx, BranchRender, out.renderErr)
	}
	o.advance(ctx, Rendered)
	return out
}

func (o *Orchestrator) advance(ctx context.Context, next State) {
	o.mu.Lock()
	if next <= o.state {
		o.mu.Unlock()
		return
	}
	o.state = next
	o.mu.Unlock()
	o.publish(ctx, events.Event{Kind: events.KindTransition, State: next.String()})
}

func (o *Orchestrator) fail(ctx context.Context, branch Branch, err error) {
	o.log.Warn("pipeline branch failed", "branch", string(branch), "network", hbnb.IsNetworkFailure(err), "error", err)
	o.publish(ctx, events.Event{Kind: events.KindBranchFailed, State: o.State().String(), Branch: string(branch), Err: err.Error()})
	o.deps.OnError(ctx, branch, err)
}

func (o *Orchestrator) publish(ctx context.Context, evt events.Event) {
	if o.deps.Events == nil {
		return
	}
	evt.RunID = o.deps.RunID
	evt.Variant = o.deps.Variant.Name
	evt.At = time.Now()
	o.deps.Events.Publish(ctx, evt)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
