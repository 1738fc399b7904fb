package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/core/scheduler"
	"github.com/jakechorley/care-scheduler/pkg/db"
)

// EmailSender sends a plain-text email
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// ProviderNotification is one email sent, or that would be sent, to a provider
type ProviderNotification struct {
	ProviderID string
	Name       string
	Email      string
	Shifts     int
	Sent       bool
	Error      string
}

// NotifyProvidersResult summarises a notification pass
type NotifyProvidersResult struct {
	WeekStart     time.Time
	Notifications []ProviderNotification
	// NoEmail lists providers with confirmed shifts but no email address
	NoEmail []string
}

type notifyShift struct {
	shift  db.Shift
	family string
}

// NotifyProviders emails every provider their confirmed shifts for the week.
// A failed send is recorded on its notification and does not stop the others.
// If dryRun is true, emails are composed but not sent.
func NotifyProviders(
	ctx context.Context,
	database ScheduleStore,
	sender EmailSender,
	cfg *config.Config,
	logger *zap.Logger,
	weekStart string,
	dryRun bool,
) (*NotifyProvidersResult, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	from, to, err := weekBounds(weekStart, loc)
	if err != nil {
		return nil, err
	}

	logger.Debug("Starting notifyProviders", zap.Time("from", from), zap.Bool("dry_run", dryRun))

	providers, err := database.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers: %w", err)
	}
	families, err := database.ListFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch families: %w", err)
	}
	shifts, err := database.ListShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	shiftsByID := indexShifts(shifts)
	familiesByID := indexFamilies(families)

	byProvider := make(map[string][]notifyShift)
	for _, a := range assignments {
		if a.Status != scheduler.StatusConfirmed {
			continue
		}
		s, ok := shiftsByID[a.ShiftID]
		if !ok || s.Starts.Before(from) || !s.Starts.Before(to) {
			continue
		}
		ns := notifyShift{shift: *s}
		if f, ok := familiesByID[s.FamilyID]; ok {
			ns.family = f.Name
		}
		byProvider[a.ProviderID] = append(byProvider[a.ProviderID], ns)
	}

	result := &NotifyProvidersResult{WeekStart: from}
	for _, p := range providers {
		week := byProvider[p.ID]
		if len(week) == 0 {
			continue
		}
		if p.Email == "" {
			result.NoEmail = append(result.NoEmail, p.Name)
			continue
		}

		sort.Slice(week, func(i, j int) bool {
			return week[i].shift.Starts.Before(week[j].shift.Starts)
		})

		n := ProviderNotification{ProviderID: p.ID, Name: p.Name, Email: p.Email, Shifts: len(week)}
		if !dryRun {
			body := notificationBody(p.Name, from, week, loc)
			if err := sender.SendEmail(p.Email, cfg.Google.NotificationSubject, body); err != nil {
				logger.Warn("Failed to notify provider", zap.String("provider_id", p.ID), zap.Error(err))
				n.Error = err.Error()
			} else {
				n.Sent = true
			}
		}
		result.Notifications = append(result.Notifications, n)
	}

	logger.Info("Provider notifications complete",
		zap.Int("notified", len(result.Notifications)),
		zap.Int("no_email", len(result.NoEmail)))
	return result, nil
}

func notificationBody(name string, weekStart time.Time, week []notifyShift, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Here are your confirmed shifts for the week of %s:\n\n", weekStart.Format("Mon Jan 02 2006"))
	for _, ns := range week {
		start := ns.shift.Starts.In(loc)
		end := ns.shift.Ends.In(loc)
		fmt.Fprintf(&b, "- %s %s-%s  %s (%s)\n",
			start.Format("Mon Jan 02"), start.Format("15:04"), end.Format("15:04"), ns.family, ns.shift.Zip)
	}
	b.WriteString("\nPlease reply if you can no longer make any of these.\n")
	return b.String()
}
