// Package billing wraps the billing and payment endpoints: the current plan
// and credit balance, the plan catalog, and checkout session creation.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clipo/internal/api"
	"clipo/internal/logging"
	"clipo/internal/session"
)

// Info is the account's current billing standing.
type Info struct {
	Plan        session.Plan `json:"plan"`
	Credits     int          `json:"credits"`
	CustomerID  string       `json:"stripe_customer_id"`
	NextRenewal string       `json:"next_renewal"`
}

// PlanDetails describes one purchasable plan. Price is in cents.
type PlanDetails struct {
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Description string   `json:"description"`
	Credits     int      `json:"credits"`
	Features    []string `json:"features"`
}

// Service calls the billing endpoints through the shared API client.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a billing service.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "billing"),
	}
}

// Info fetches the account's plan, credits, and renewal date.
func (s *Service) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/billing/info"), &info); err != nil {
		return nil, fmt.Errorf("fetch billing info: %w", err)
	}
	return &info, nil
}

// Plans fetches the purchasable plan catalog keyed by plan id.
func (s *Service) Plans(ctx context.Context) (map[session.Plan]PlanDetails, error) {
	var out struct {
		Plans map[session.Plan]PlanDetails `json:"plans"`
	}
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/payment/plans"), &out); err != nil {
		return nil, fmt.Errorf("fetch plans: %w", err)
	}
	return out.Plans, nil
}

// CreateCheckout opens a checkout session for the given plan and returns the
// URL to complete payment in a browser.
func (s *Service) CreateCheckout(ctx context.Context, plan session.Plan) (string, error) {
	name := session.Plan(strings.ToLower(strings.TrimSpace(string(plan))))
	switch name {
	case session.PlanStarter, session.PlanPro, session.PlanAgency:
	default:
		return "", fmt.Errorf("create checkout: plan %q is not purchasable", plan)
	}

	var out struct {
		URL string `json:"url"`
	}
	err := s.client.PostJSON(ctx, s.client.VideoURL("/payment/create-checkout-session"),
		map[string]string{"plan": string(name)}, &out)
	if err != nil {
		return "", fmt.Errorf("create checkout for plan %s: %w", name, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("create checkout: response missing url")
	}
	s.logger.Info("checkout session created", logging.String("plan", string(name)))
	return out.URL, nil
}
