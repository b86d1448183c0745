// Package wizard declares the collaborator surfaces of the provisioning flow
// that sit outside the conversational intake: template catalog, domain
// availability, hosting plans, checkout and provisioning. The intake engine
// never calls these; the router exposes them so the wizard UI can render
// choices next to the conversation.
package wizard

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by collaborator operations whose external
// backend has not been wired up in this deployment.
var ErrNotConfigured = errors.New("wizard: collaborator backend not configured")

// Template is one website template the user can pick after intake completes.
type Template struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	PreviewURL string   `json:"previewUrl"`
	Tags       []string `json:"tags"`
}

// HostingPlan is one purchasable hosting tier.
type HostingPlan struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MonthlyCents  int64  `json:"monthlyCents"`
	StorageGB     int    `json:"storageGb"`
	CustomDomain  bool   `json:"customDomain"`
	Description   string `json:"description"`
}

// DomainCheck is the result of a domain availability lookup.
type DomainCheck struct {
	Domain    string `json:"domain"`
	Available bool   `json:"available"`
}

// TemplateCatalog lists and resolves website templates.
type TemplateCatalog interface {
	ListTemplates(ctx context.Context) ([]Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
}

// DomainChecker answers domain availability queries.
type DomainChecker interface {
	CheckDomain(ctx context.Context, domain string) (*DomainCheck, error)
}

// PlanCatalog lists hosting plans.
type PlanCatalog interface {
	ListPlans(ctx context.Context) ([]HostingPlan, error)
}

// Checkout starts a purchase for a plan. External payment backend.
type Checkout interface {
	StartCheckout(ctx context.Context, planID string, domain string) (string, error)
}

// Provisioner provisions the site once checkout completes. External backend.
type Provisioner interface {
	Provision(ctx context.Context, sessionID string, templateID string, domain string) error
}

// Service bundles the collaborator surfaces behind one handle for the router.
type Service struct {
	Templates   TemplateCatalog
	Domains     DomainChecker
	Plans       PlanCatalog
	Checkout    Checkout
	Provisioner Provisioner
}

// NewService returns a Service backed by the static in-memory catalogs and
// unconfigured checkout/provisioning.
func NewService() *Service {
	return &Service{
		Templates:   &staticCatalog{},
		Domains:     &staticDomainChecker{},
		Plans:       &staticPlans{},
		Checkout:    unconfigured{},
		Provisioner: unconfigured{},
	}
}

type staticCatalog struct{}

func (staticCatalog) ListTemplates(_ context.Context) ([]Template, error) {
	return builtinTemplates, nil
}

func (staticCatalog) GetTemplate(_ context.Context, id string) (*Template, error) {
	for i := range builtinTemplates {
		if builtinTemplates[i].ID == id {
			return &builtinTemplates[i], nil
		}
	}
	return nil, nil
}

type staticDomainChecker struct{}

// CheckDomain is a static stand-in: real registrar lookups are an external
// collaborator. Well-formed domains outside a small reserved set report
// available.
func (staticDomainChecker) CheckDomain(_ context.Context, domain string) (*DomainCheck, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	check := &DomainCheck{Domain: domain}
	if domain == "" || !strings.Contains(domain, ".") {
		return check, nil
	}
	if _, reserved := reservedDomains[domain]; reserved {
		return check, nil
	}
	check.Available = true
	return check, nil
}

type staticPlans struct{}

func (staticPlans) ListPlans(_ context.Context) ([]HostingPlan, error) {
	return builtinPlans, nil
}

type unconfigured struct{}

func (unconfigured) StartCheckout(_ context.Context, _ string, _ string) (string, error) {
	return "", ErrNotConfigured
}

func (unconfigured) Provision(_ context.Context, _ string, _ string, _ string) error {
	return ErrNotConfigured
}

var builtinTemplates = []Template{
	{ID: "clean-portfolio", Name: "Clean Portfolio", Category: "portfolio", PreviewURL: "/previews/clean-portfolio.png", Tags: []string{"minimal", "portfolio"}},
	{ID: "local-services", Name: "Local Services", Category: "services", PreviewURL: "/previews/local-services.png", Tags: []string{"services", "booking"}},
	{ID: "studio-bold", Name: "Studio Bold", Category: "creative", PreviewURL: "/previews/studio-bold.png", Tags: []string{"creative", "dark"}},
	{ID: "practice-pro", Name: "Practice Pro", Category: "professional", PreviewURL: "/previews/practice-pro.png", Tags: []string{"professional", "appointments"}},
}

var builtinPlans = []HostingPlan{
	{ID: "starter", Name: "Starter", MonthlyCents: 900, StorageGB: 5, CustomDomain: false, Description: "Single page on a sitewizard.app subdomain."},
	{ID: "business", Name: "Business", MonthlyCents: 2400, StorageGB: 25, CustomDomain: true, Description: "Full site with a custom domain."},
	{ID: "premium", Name: "Premium", MonthlyCents: 4900, StorageGB: 100, CustomDomain: true, Description: "Priority support and unlimited pages."},
}

var reservedDomains = map[string]struct{}{
	"sitewizard.app": {},
	"example.com":    {},
	"example.org":    {},
}
