package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-csdash/pkg/activity"
	"github.com/rs/zerolog"
)

// WorkflowState is a step of the interaction capture flow.
type WorkflowState string

const (
	StateIdle       WorkflowState = "idle"
	StateDrafting   WorkflowState = "drafting"
	StateValidating WorkflowState = "validating"
	StateSubmitting WorkflowState = "submitting"
	StateResolved   WorkflowState = "resolved"
)

// DefaultReloadDelay is the pause between a successful save and the page reload.
const DefaultReloadDelay = time.Second

// User facing workflow messages.
const (
	MsgRequiredFields   = "Please fill out all required fields"
	MsgInteractionSaved = "Interaction saved successfully!"
	MsgSaveFailed       = "Error saving interaction"
	recommendNotes      = "Discussed product recommendations with customer."
	recommendCallType   = "call"
)

var (
	// ErrSubmitInFlight rejects a submit while another one is pending.
	ErrSubmitInFlight = errors.New("dashboard: interaction submit already in flight")

	// ErrSaveRejected reports a save the backend answered with success=false.
	ErrSaveRejected = errors.New("dashboard: interaction save rejected")

	errMissingGateway = errors.New("dashboard: interaction gateway not configured")
)

// WorkflowOptions wires an InteractionWorkflow.
type WorkflowOptions struct {
	Page          *Page
	Gateway       InteractionGateway
	Notifications *NotificationCenter
	Widgets       *WidgetRenderer
	Scheduler     Scheduler
	ReloadDelay   time.Duration

	// Reload re-fetches and re-renders the page after a successful save.
	Reload   func(ctx context.Context)
	Activity *activity.Emitter
	Logger   *zerolog.Logger
}

// InteractionWorkflow drives the interaction form of one page session:
// Idle -> Drafting -> Validating -> Submitting -> Resolved. Failed
// validation and failed saves return to Drafting with the draft kept.
type InteractionWorkflow struct {
	opts WorkflowOptions
	log  zerolog.Logger

	mu          sync.Mutex
	state       WorkflowState
	draft       InteractionDraft
	modalOpen   bool
	suggestions []string
	reload      Timer
}

// NewInteractionWorkflow builds a workflow with safe defaults.
func NewInteractionWorkflow(opts WorkflowOptions) *InteractionWorkflow {
	opts.Scheduler = normalizeScheduler(opts.Scheduler)
	if opts.ReloadDelay <= 0 {
		opts.ReloadDelay = DefaultReloadDelay
	}
	if opts.Notifications == nil {
		opts.Notifications = NewNotificationCenter(NotificationOptions{Scheduler: opts.Scheduler})
	}
	return &InteractionWorkflow{opts: opts, log: normalizeLogger(opts.Logger), state: StateIdle}
}

// State returns the current step.
func (w *InteractionWorkflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns the draft being edited.
func (w *InteractionWorkflow) Draft() InteractionDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// ModalOpen reports whether the interaction form is shown.
func (w *InteractionWorkflow) ModalOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modalOpen
}

// SetSuggestions replaces the one-click recommendation lines offered by the form.
func (w *InteractionWorkflow) SetSuggestions(suggestions []string) {
	w.mu.Lock()
	w.suggestions = append([]string(nil), suggestions...)
	w.mu.Unlock()
}

// Open shows an empty form for the customer.
func (w *InteractionWorkflow) Open(customerID int) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if w.state != StateDrafting || w.draft.CustomerID != customerID {
		w.draft = InteractionDraft{CustomerID: customerID}
	}
	w.state = StateDrafting
	w.modalOpen = true
	w.mu.Unlock()
	return w.renderModal()
}

// CloseModal hides the form. The draft is kept for the next Open.
func (w *InteractionWorkflow) CloseModal() error {
	w.mu.Lock()
	w.modalOpen = false
	if w.state == StateDrafting {
		w.state = StateIdle
	}
	w.mu.Unlock()
	return w.renderModal()
}

// Recommend confirms a product recommendation and, when the page carries the
// interaction form, pre-fills a call draft mentioning the product.
func (w *InteractionWorkflow) Recommend(ctx context.Context, customerID, productID int, productName string) error {
	name := strings.TrimSpace(productName)
	w.opts.Notifications.Success(fmt.Sprintf("Product \"%s\" has been recommended to the customer.", name))
	if err := emitActivity(ctx, w.opts.Activity, VerbProductRecommend, "product", strconv.Itoa(productID), map[string]any{
		"customer_id":  customerID,
		"product_name": name,
	}); err != nil {
		w.log.Warn().Err(err).Str("verb", VerbProductRecommend).Msg("activity emit failed")
	}
	if !w.opts.Page.Has(MountIDInteractionModal) {
		return nil
	}

	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	w.draft = InteractionDraft{
		CustomerID:      customerID,
		InteractionType: recommendCallType,
		Notes:           recommendNotes,
		Recommendations: fmt.Sprintf("Recommended %s based on customer preferences and AI suggestions.", name),
	}
	w.state = StateDrafting
	w.modalOpen = true
	w.mu.Unlock()
	return w.renderModal()
}

// Update replaces the draft fields edited by the agent.
func (w *InteractionWorkflow) Update(draft InteractionDraft) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if draft.CustomerID == 0 {
		draft.CustomerID = w.draft.CustomerID
	}
	w.draft = draft
	w.state = StateDrafting
	w.mu.Unlock()
	return w.renderModal()
}

// AppendSuggestion adds a suggestion line to the draft recommendations.
func (w *InteractionWorkflow) AppendSuggestion(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if w.draft.Recommendations == "" {
		w.draft.Recommendations = text
	} else {
		w.draft.Recommendations += "\n" + text
	}
	w.state = StateDrafting
	w.mu.Unlock()
	return w.renderModal()
}

// Submit validates the draft and saves it through the gateway. A missing
// required field produces a warning and no gateway call.
func (w *InteractionWorkflow) Submit(ctx context.Context, draft InteractionDraft) (SaveResult, error) {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return SaveResult{}, ErrSubmitInFlight
	}
	if draft.CustomerID == 0 {
		draft.CustomerID = w.draft.CustomerID
	}
	w.draft = draft
	w.state = StateValidating
	if err := ValidateDraft(draft); err != nil {
		w.state = StateDrafting
		w.mu.Unlock()
		w.opts.Notifications.Warning(MsgRequiredFields)
		return SaveResult{}, err
	}
	if w.opts.Gateway == nil {
		w.state = StateDrafting
		w.mu.Unlock()
		return SaveResult{}, errMissingGateway
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	result, err := w.opts.Gateway.SaveInteraction(ctx, draft)

	switch {
	case err != nil:
		w.fail()
		w.log.Error().Err(err).Int("customer_id", draft.CustomerID).Msg("save interaction failed")
		w.opts.Notifications.Error("Error: " + err.Error())
		return result, err
	case !result.Success:
		w.fail()
		w.log.Warn().Str("reason", result.Error).Int("customer_id", draft.CustomerID).Msg("save interaction rejected")
		w.opts.Notifications.Error(MsgSaveFailed)
		return result, ErrSaveRejected
	}

	w.mu.Lock()
	w.state = StateResolved
	w.modalOpen = false
	if w.reload != nil {
		w.reload.Stop()
	}
	w.reload = w.opts.Scheduler.AfterFunc(w.opts.ReloadDelay, w.runReload)
	w.mu.Unlock()

	w.opts.Notifications.Success(MsgInteractionSaved)
	if err := emitActivity(ctx, w.opts.Activity, VerbInteractionSave, "interaction", strconv.Itoa(result.InteractionID), map[string]any{
		"customer_id":      draft.CustomerID,
		"interaction_type": draft.InteractionType,
	}); err != nil {
		w.log.Warn().Err(err).Str("verb", VerbInteractionSave).Msg("activity emit failed")
	}
	if err := w.renderModal(); err != nil {
		w.log.Warn().Err(err).Msg("render interaction modal failed")
	}
	return result, nil
}

func (w *InteractionWorkflow) fail() {
	w.mu.Lock()
	w.state = StateDrafting
	w.mu.Unlock()
}

func (w *InteractionWorkflow) runReload() {
	w.mu.Lock()
	w.reload = nil
	w.state = StateIdle
	w.draft = InteractionDraft{}
	w.mu.Unlock()
	if w.opts.Reload != nil {
		w.opts.Reload(context.Background())
	}
}

// ReloadPending reports whether a post-save reload is scheduled.
func (w *InteractionWorkflow) ReloadPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reload != nil
}

// Stop cancels a pending reload.
func (w *InteractionWorkflow) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reload != nil {
		w.reload.Stop()
		w.reload = nil
	}
}

func (w *InteractionWorkflow) renderModal() error {
	if w.opts.Widgets == nil || !w.opts.Page.Has(MountIDInteractionModal) {
		return nil
	}
	w.mu.Lock()
	draft, open, suggestions := w.draft, w.modalOpen, append([]string(nil), w.suggestions...)
	w.mu.Unlock()
	return w.opts.Widgets.RenderInteractionModal(w.opts.Page, MountIDInteractionModal, draft, open, suggestions)
}
