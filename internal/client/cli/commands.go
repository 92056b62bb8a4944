package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/clinicdesk/internal/client/api"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail reports err to the user and returns it. A rejected session is
// dropped so the next command asks for a fresh login.
func (a *App) fail(ctx context.Context, what string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		a.println("Session expired, please login again")
		a.forget(ctx)
		return err
	}
	a.println(what+" failed:", err)
	return err
}

func (a *App) remember(ctx context.Context, u *api.User) {
	s := &session.Session{UserID: u.ID, FullName: u.FullName, Email: u.Email, Token: u.Token}
	a.setSession(s)
	if err := a.sessions.Save(s); err != nil {
		a.logger.Warn(ctx, "session not saved", "error", err)
	}
}

func (a *App) forget(ctx context.Context) {
	a.setSession(nil)
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn(ctx, "session not cleared", "error", err)
	}
}

func (a *App) Signup(ctx context.Context) error {
	var req api.SignupRequest
	var err error

	if req.FullName, err = GetSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if req.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.Phone, err = GetSimpleText(a.reader, "Phone", a.out); err != nil {
		return err
	}
	if req.Password, err = GetPassword(a.out); err != nil {
		return err
	}

	u, err := a.api.Signup(ctx, req)
	if err != nil {
		return a.fail(ctx, "Signup", err)
	}

	a.remember(ctx, u)
	a.println("Signed up as", u.FullName)
	return nil
}

// Login accepts either a full name or an email address as the account key.
func (a *App) Login(ctx context.Context) error {
	key, err := GetSimpleText(a.reader, "Full name or email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	req := api.LoginRequest{Password: password}
	if strings.Contains(key, "@") {
		req.Email = key
	} else {
		req.FullName = key
	}

	u, err := a.api.Login(ctx, req)
	if err != nil {
		return a.fail(ctx, "Login", err)
	}

	a.remember(ctx, u)
	a.println("Logged in as", u.FullName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.forget(ctx)
	a.println("Logged out")
	return nil
}

func (a *App) ListPatients(ctx context.Context) error {
	s := a.session()
	if s == nil {
		return nil
	}

	list, err := a.api.ListPatients(ctx, s.Token)
	if err != nil {
		return a.fail(ctx, "List", err)
	}
	if len(list) == 0 {
		a.println("No patients yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tAGE\tGENDER\tPHONE\tADDRESS\tADDED")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			p.FullName, p.Age, p.Gender, p.Phone, address(p), p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func address(p *models.Patient) string {
	if p.Address == nil {
		return "-"
	}
	return *p.Address
}

func (a *App) AddPatient(ctx context.Context) error {
	s := a.session()
	if s == nil {
		return nil
	}

	var p api.NewPatient
	var err error

	if p.FullName, err = GetSimpleText(a.reader, "Patient full name", a.out); err != nil {
		return err
	}
	if p.Phone, err = GetSimpleText(a.reader, "Phone", a.out); err != nil {
		return err
	}
	if p.Age, err = GetSimpleText(a.reader, "Age", a.out); err != nil {
		return err
	}
	if p.Gender, err = GetSimpleText(a.reader, "Gender", a.out); err != nil {
		return err
	}
	if p.Address, err = GetOptionalText(a.reader, "Address", a.out); err != nil {
		return err
	}

	created, err := a.api.AddPatient(ctx, s.Token, p)
	if err != nil {
		return a.fail(ctx, "Add patient", err)
	}

	a.println("Patient added:", created.FullName)
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	s := a.session()
	if s == nil {
		return nil
	}

	sum, err := a.api.Dashboard(ctx, s.Token)
	if err != nil {
		return a.fail(ctx, "Dashboard", err)
	}

	a.println("Appointments:    ", sum.Appointments)
	a.println("Total collection:", formatMinor(sum.TotalCollection))
	return nil
}

// formatMinor renders an amount in minor units with two decimals.
func formatMinor(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
