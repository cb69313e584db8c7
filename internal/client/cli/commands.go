package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telicommunity-go/internal/client/apiclient"
	"telicommunity-go/internal/client/dashboard"
	"telicommunity-go/internal/client/session"
	"telicommunity-go/internal/supabase"
)

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Session != nil
}

// Login prints the Google authorize URL and accepts the redirect URL the
// browser lands on.
func (a *App) Login(ctx context.Context) error {
	if !a.guard(session.LocationSignIn) {
		return nil
	}
	authURL, err := a.oauthURL(ctx)
	if err != nil {
		a.printf("Could not build the sign-in link: %v\n", err)
		return err
	}
	a.printf("Open this link in a browser and sign in with Google:\n%s\n", authURL)

	redirect, err := readSecret(a.reader, a.out, "Paste the telicommunity:// link you were redirected to")
	if err != nil {
		return err
	}
	tokens, ok := supabase.ParseRedirectFragment(redirect)
	if !ok {
		a.printf("That link does not carry a session.\n")
		return nil
	}
	if _, err := a.auth.SetSession(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		a.log.BusinessError("cli.login: set session", err)
		a.printf("Sign-in failed: %v\n", err)
		return err
	}

	snap, err := a.session.RefreshProfile(ctx)
	if err != nil {
		return err
	}
	switch session.Redirect(snap, session.LocationSignIn) {
	case session.RouteSetup:
		a.printf("Signed in. Please set up your profile: setup\n")
	case session.RouteHome:
		a.printf("Signed in as %s.\n", snap.Session.Email)
	default:
		a.printf("Signed in.\n")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Signed out.\n")
	return nil
}

// Bookings lists upcoming bookings. Fetch failures show an empty list.
func (a *App) Bookings(ctx context.Context) error {
	if !a.guard(session.LocationOther) {
		return nil
	}
	items, err := a.api.ListUpcoming(ctx)
	if err != nil {
		a.log.InternalError("cli.bookings: list upcoming", err)
		items = nil
	}
	if len(items) == 0 {
		a.printf("No upcoming bookings.\n")
		return nil
	}
	for _, b := range items {
		a.printf("%s  %-9s %s%s\n", b.BookingDate, b.Status, b.Title, creatorSuffix(b))
	}
	return nil
}

func (a *App) Request(ctx context.Context) error {
	if !a.guard(session.LocationOther) {
		return nil
	}
	rawDate, err := readLine(a.reader, a.out, "Date (YYYY-MM-DD)")
	if err != nil {
		return err
	}
	date, err := time.Parse(apiclient.DateLayout, rawDate)
	if err != nil {
		a.printf("Please enter the date as YYYY-MM-DD.\n")
		return nil
	}
	title, err := readLine(a.reader, a.out, "Title")
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		a.printf("Please enter a title.\n")
		return nil
	}
	description, err := readLine(a.reader, a.out, "Description (optional)")
	if err != nil {
		return err
	}

	booking, err := a.api.RequestBooking(ctx, date, title, description)
	switch {
	case apiclient.IsCode(err, "slot_taken"):
		a.printf("%s is no longer available. Please pick another date.\n", date.Format(apiclient.DateLayout))
		return a.Bookings(ctx)
	case apiclient.IsCode(err, "profile_required"):
		a.printf("Please set up your profile first: setup\n")
		return nil
	case err != nil:
		a.printf("%v\n", err)
		return err
	}
	a.printf("Requested %s for %s. An admin will review it.\n", booking.Title, booking.BookingDate)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	if !a.guard(session.LocationOther) {
		return nil
	}
	profile, err := a.api.GetProfile(ctx)
	if err != nil {
		a.printf("%v\n", err)
		return err
	}
	a.printf("%s (@%s), %d, %s\n", profile.FullName, profile.Username, profile.Age, profile.City)
	if profile.AvatarURL != nil {
		a.printf("Avatar: %s\n", *profile.AvatarURL)
	}
	return nil
}

func (a *App) Setup(ctx context.Context) error {
	if !a.guard(session.LocationSetup) {
		return nil
	}
	var input apiclient.ProfileInput
	var err error
	if input.FullName, err = readLine(a.reader, a.out, "Full name"); err != nil {
		return err
	}
	if input.Username, err = readLine(a.reader, a.out, "Username"); err != nil {
		return err
	}
	rawAge, err := readLine(a.reader, a.out, "Age")
	if err != nil {
		return err
	}
	if rawAge != "" {
		if input.Age, err = strconv.Atoi(rawAge); err != nil {
			a.printf("Age must be a number.\n")
			return nil
		}
	}
	if input.City, err = readLine(a.reader, a.out, "City"); err != nil {
		return err
	}
	avatarPath, err := readLine(a.reader, a.out, "Avatar JPEG path (optional)")
	if err != nil {
		return err
	}
	if avatarPath != "" {
		if input.Avatar, err = os.ReadFile(avatarPath); err != nil {
			a.printf("Could not read %s: %v\n", avatarPath, err)
			return nil
		}
	}

	if _, err := a.api.SetupProfile(ctx, input); err != nil {
		a.printf("%v\n", err)
		return err
	}
	snap, err := a.session.RefreshProfile(ctx)
	if err != nil {
		return err
	}
	if session.Redirect(snap, session.LocationSetup) == session.RouteHome {
		a.printf("Profile saved. Welcome!\n")
	}
	return nil
}

func (a *App) requireAdmin(ctx context.Context) bool {
	if !a.guard(session.LocationOther) {
		return false
	}
	isAdmin, err := a.api.IsAdmin(ctx)
	if err != nil {
		a.log.Warn("cli.admin: admin check failed", "err", err)
	}
	if !isAdmin {
		a.printf("Admin access required.\n")
	}
	return isAdmin
}

func (a *App) Pending(ctx context.Context) error {
	if !a.requireAdmin(ctx) {
		return nil
	}
	if err := a.dashboard.Refresh(ctx); err != nil {
		a.printf("%v\n", err)
		return err
	}
	a.printPending()
	return nil
}

func (a *App) Approve(ctx context.Context, id string) error {
	if id == "" {
		a.printf("Usage: approve <booking-id>\n")
		return nil
	}
	if !a.requireAdmin(ctx) {
		return nil
	}
	if err := a.dashboard.Approve(ctx, id); err != nil {
		a.printf("%v\n", err)
		return err
	}
	a.printf("Approved.\n")
	a.printPending()
	return nil
}

func (a *App) Reject(ctx context.Context, id string) error {
	if id == "" {
		a.printf("Usage: reject <booking-id>\n")
		return nil
	}
	if !a.requireAdmin(ctx) {
		return nil
	}
	err := a.dashboard.Reject(ctx, id, func(prompt string) bool {
		return confirm(a.reader, a.out, prompt)
	})
	if errors.Is(err, dashboard.ErrRejectCancelled) {
		return nil
	}
	if err != nil {
		a.printf("%v\n", err)
		return err
	}
	a.printf("Rejected.\n")
	a.printPending()
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if !a.requireAdmin(ctx) {
		return nil
	}
	if err := a.dashboard.Refresh(ctx); err != nil {
		a.printf("%v\n", err)
		return err
	}
	stats := a.dashboard.Stats()
	a.printf("Total %d  Pending %d  Approved %d\n", stats.Total, stats.Pending, stats.Approved)
	return nil
}

// Watch streams notifications until the user presses Enter.
func (a *App) Watch(ctx context.Context) error {
	if !a.guard(session.LocationOther) {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.api.StreamNotifications(ctx, func(ev apiclient.StreamEvent) {
			switch {
			case ev.Notification != nil:
				a.printf("[%s] %s\n", ev.Notification.Title, ev.Notification.Body)
			case ev.Badge != nil:
				a.printf("Pending requests: %d\n", *ev.Badge)
			}
		})
	}()
	a.printf("Watching notifications. Press Enter to stop.\n")

	stop := make(chan struct{})
	go func() {
		_, _ = a.reader.ReadString('\n')
		close(stop)
	}()

	select {
	case <-stop:
		cancel()
		return <-done
	case err := <-done:
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			a.printf("Notification stream ended: %v\n", err)
		}
		a.printf("Press Enter to continue.\n")
		<-stop
		return err
	}
}

func (a *App) printPending() {
	items := a.dashboard.Pending()
	if len(items) == 0 {
		a.printf("No pending requests.\n")
		return
	}
	for _, b := range items {
		a.printf("%s  %s  %s%s\n", b.ID, b.BookingDate, b.Title, creatorSuffix(b))
	}
}

func creatorSuffix(b apiclient.Booking) string {
	if b.Creator == nil {
		return ""
	}
	name := b.Creator.FullName
	if name == "" {
		name = b.Creator.Username
	}
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" (by %s)", name)
}
