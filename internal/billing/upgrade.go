// Package billing holds the plan catalog and the website upgrade flow.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/store"
	"go.uber.org/zap"
)

// ErrChargedNotApplied is returned when a payment went through but the
// website disappeared before the plan could be recorded.
var ErrChargedNotApplied = errors.New("payment was charged but the upgrade could not be applied")

// Upgrader moves websites to a paid plan.
type Upgrader struct {
	Store   *store.Store
	Gateway Gateway
	Now     func() time.Time
	Log     *zap.Logger
}

// Upgrade sets plan on the website and publishes it. Professional applies
// directly; plans that require payment are charged first and leave the
// record untouched when the charge fails.
func (u *Upgrader) Upgrade(ctx context.Context, id string, plan project.Plan, card *Card) (project.Record, error) {
	info, err := Lookup(plan)
	if err != nil {
		return project.Record{}, err
	}
	if !plan.Paid() {
		return project.Record{}, fmt.Errorf("cannot upgrade to the %s plan", info.Name)
	}
	if _, err := project.Find(u.Store.Load(ctx), id); err != nil {
		return project.Record{}, err
	}

	if info.Payment {
		if card == nil {
			return project.Record{}, fmt.Errorf("%w: the %s plan requires a card", ErrPaymentDeclined, info.Name)
		}
		if u.Gateway == nil {
			return project.Record{}, errors.New("no payment gateway configured")
		}
		tok, err := u.Gateway.Tokenize(ctx, *card)
		if err != nil {
			return project.Record{}, err
		}
		if err := u.Gateway.Charge(ctx, tok, info.Price); err != nil {
			return project.Record{}, err
		}
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	var out project.Record
	err = u.Store.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
		if _, err := project.Find(rs, id); err != nil {
			if info.Payment {
				u.logger().Warn("charged upgrade lost its website",
					zap.String("id", id), zap.String("plan", string(plan)), zap.Float64("amount", info.Price))
				return nil, fmt.Errorf("%w: %w", ErrChargedNotApplied, err)
			}
			return nil, err
		}
		ts := now()
		rs, err := project.SetPlan(rs, id, plan, ts)
		if err != nil {
			return nil, err
		}
		rs, err = project.Publish(rs, id, ts)
		if err != nil {
			return nil, err
		}
		out, err = project.Find(rs, id)
		return rs, err
	})
	return out, err
}

func (u *Upgrader) logger() *zap.Logger {
	if u.Log == nil {
		return zap.NewNop()
	}
	return u.Log
}
