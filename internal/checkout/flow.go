// Package checkout implements the validation-then-submit protocol that turns
// a cart into a purchase: Idle -> Validating -> Submitting -> Success|Failed.
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/calleja/devgear/internal/cart"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// PaymentForm is the locally validated card input. Only the CVV is checked;
// the rest is never inspected and never leaves the process.
type PaymentForm struct {
	CardholderName string
	CardNumber     string
	ExpiryDate     string
	CVV            string
}

type PurchaseItem struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type PurchaseRequest struct {
	Items []PurchaseItem `json:"items"`
	Total string         `json:"total"`
}

// Submitter sends the purchase request to the purchase service and returns
// the accepted purchase id.
type Submitter interface {
	SubmitPurchase(ctx context.Context, req PurchaseRequest) (int, error)
}

// Session answers whether the current session is authenticated. The session
// store is the sole source of truth here.
type Session interface {
	Authenticated() bool
}

// Outcome is what one checkout attempt produced. Exactly one of the
// branches applies: RedirectLogin, a purchase id on Success, or an error
// message (with Field set for local validation failures).
type Outcome struct {
	State         State
	RedirectLogin bool
	PurchaseID    int
	Field         string
	Err           string
}

type Flow struct {
	Cart      *cart.State
	Session   Session
	Submitter Submitter

	mu    sync.Mutex
	state State
}

func NewFlow(c *cart.State, sess Session, sub Submitter) *Flow {
	return &Flow{Cart: c, Session: sess, Submitter: sub, state: StateIdle}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Checkout runs one pass of the flow. The returned error is reserved for
// programmer errors (cart ids that are not integers); every user-facing
// failure is reported through the Outcome.
func (f *Flow) Checkout(ctx context.Context, form PaymentForm) (Outcome, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		// one submission in flight per session; repeated activation is dropped
		f.mu.Unlock()
		return Outcome{State: StateSubmitting, Err: "a checkout is already in progress"}, nil
	case StateSuccess:
		f.mu.Unlock()
		return Outcome{State: StateSuccess, Err: "checkout already completed"}, nil
	}

	if !f.Session.Authenticated() {
		// terminal for this attempt, not an error: the caller redirects to login
		f.mu.Unlock()
		return Outcome{State: StateIdle, RedirectLogin: true}, nil
	}

	f.state = StateValidating
	if msg, ok := validateCVV(form.CVV); !ok {
		f.state = StateFailed
		f.mu.Unlock()
		return Outcome{State: StateFailed, Field: "cvv", Err: msg}, nil
	}

	req, err := f.buildRequest()
	if err != nil {
		f.state = StateFailed
		f.mu.Unlock()
		return Outcome{State: StateFailed, Err: "internal checkout error"}, err
	}

	f.state = StateSubmitting
	f.mu.Unlock()

	id, err := f.Submitter.SubmitPurchase(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		// cart untouched so the user can retry without re-entering items
		f.state = StateFailed
		return Outcome{State: StateFailed, Err: err.Error()}, nil
	}
	f.Cart.Clear()
	f.state = StateSuccess
	return Outcome{State: StateSuccess, PurchaseID: id}, nil
}

func (f *Flow) buildRequest() (PurchaseRequest, error) {
	items := f.Cart.Items()
	req := PurchaseRequest{Items: make([]PurchaseItem, 0, len(items)), Total: cart.Format(f.Cart.Total())}
	for _, it := range items {
		// ids originate from trusted catalog data; a non-integer id is a bug
		pid, err := strconv.Atoi(it.ID)
		if err != nil {
			return PurchaseRequest{}, fmt.Errorf("cart item id %q is not an integer: %w", it.ID, err)
		}
		req.Items = append(req.Items, PurchaseItem{ProductID: pid, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return req, nil
}

func validateCVV(cvv string) (string, bool) {
	if len(cvv) < 3 || len(cvv) > 4 {
		return "CVV must be 3 or 4 digits", false
	}
	for _, r := range cvv {
		if r < '0' || r > '9' {
			return "CVV must contain digits only", false
		}
	}
	return "", true
}
