// Package account keeps the local profile and subscription entries.
//
// Accounts are a local convenience only: there is no credential storage
// beyond the built-in demo account, and nothing is sent anywhere.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/store"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSignedIn        = errors.New("not signed in; run 'sitesmith signin' or 'sitesmith signup'")
	ErrNoSubscription     = errors.New("no subscription on record")
)

// User is the signed-in profile.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// PaymentMethod is the masked card on a subscription.
type PaymentMethod struct {
	Type   string `json:"type"`
	Last4  string `json:"last4"`
	Expiry string `json:"expiry"`
	Brand  string `json:"brand"`
}

// Subscription is the account-level plan.
type Subscription struct {
	ID            string         `json:"id"`
	Plan          project.Plan   `json:"plan,omitempty"`
	Price         float64        `json:"price,omitempty"`
	Status        string         `json:"status"`
	RenewalDate   string         `json:"renewalDate"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
}

// Demo account credentials.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo123"
)

func demoUser() User {
	return User{ID: "1", Email: DemoEmail, Name: "Demo User", Provider: "email", Role: RoleUser}
}

func demoSubscription() Subscription {
	return Subscription{
		ID:          "1",
		Plan:        project.PlanProfessional,
		Price:       99,
		Status:      StatusActive,
		RenewalDate: "2025-02-20",
		PaymentMethod: &PaymentMethod{
			Type:   "card",
			Last4:  "4242",
			Expiry: "12/25",
			Brand:  "Visa",
		},
	}
}

// Manager reads and writes the user and subscription entries.
type Manager struct {
	Store *store.Store
	Now   func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// SignIn accepts the demo account only.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*User, error) {
	if !strings.EqualFold(strings.TrimSpace(email), DemoEmail) || password != DemoPassword {
		return nil, ErrInvalidCredentials
	}
	u, sub := demoUser(), demoSubscription()
	if err := m.save(ctx, u, sub); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignUp creates a user with a free subscription renewing in 30 days.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	u := User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     strings.TrimSpace(name),
		Provider: "email",
		Role:     RoleUser,
	}
	sub := Subscription{
		ID:          uuid.NewString(),
		Plan:        project.PlanFree,
		Status:      StatusActive,
		RenewalDate: m.now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}
	if err := m.save(ctx, u, sub); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Manager) save(ctx context.Context, u User, sub Subscription) error {
	if err := m.Store.SaveEntry(ctx, store.KeyUser, u); err != nil {
		return err
	}
	return m.Store.SaveEntry(ctx, store.KeySubscription, sub)
}

// SignOut removes both entries.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.Store.DeleteEntry(ctx, store.KeyUser); err != nil {
		return err
	}
	return m.Store.DeleteEntry(ctx, store.KeySubscription)
}

// Current returns the signed-in user and subscription. Either may be nil.
func (m *Manager) Current(ctx context.Context) (*User, *Subscription) {
	var u User
	var sub Subscription
	var up *User
	var sp *Subscription
	if m.Store.LoadEntry(ctx, store.KeyUser, &u) {
		up = &u
	}
	if m.Store.LoadEntry(ctx, store.KeySubscription, &sub) {
		sp = &sub
	}
	return up, sp
}

// RequireUser returns the signed-in user or ErrNotSignedIn.
func (m *Manager) RequireUser(ctx context.Context) (*User, error) {
	u, _ := m.Current(ctx)
	if u == nil {
		return nil, ErrNotSignedIn
	}
	return u, nil
}

// Plan returns the subscription plan, or "" when there is none.
func (m *Manager) Plan(ctx context.Context) project.Plan {
	_, sub := m.Current(ctx)
	if sub == nil {
		return ""
	}
	return sub.Plan
}

// UpdateProfile merges the non-empty fields of patch into the profile.
func (m *Manager) UpdateProfile(ctx context.Context, patch User) (*User, error) {
	u, _ := m.Current(ctx)
	if u == nil {
		return nil, ErrNotSignedIn
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	if err := m.Store.SaveEntry(ctx, store.KeyUser, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateSubscription merges the non-empty fields of patch into the
// subscription.
func (m *Manager) UpdateSubscription(ctx context.Context, patch Subscription) (*Subscription, error) {
	_, sub := m.Current(ctx)
	if sub == nil {
		return nil, ErrNoSubscription
	}
	if patch.Plan != "" {
		sub.Plan = patch.Plan
	}
	if patch.Price != 0 {
		sub.Price = patch.Price
	}
	if patch.Status != "" {
		sub.Status = patch.Status
	}
	if patch.RenewalDate != "" {
		sub.RenewalDate = patch.RenewalDate
	}
	if patch.PaymentMethod != nil {
		pm := *patch.PaymentMethod
		sub.PaymentMethod = &pm
	}
	if err := m.Store.SaveEntry(ctx, store.KeySubscription, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
