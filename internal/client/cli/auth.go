package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/geotrack/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// SignUp prompts for an email and password and creates the account. The user
// still has to log in afterwards.
func (a *App) SignUp(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.SignUp(ctx, email, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can log in now.")
	return nil
}

// Login prompts for credentials and opens a session on the server.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmed, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.email = confirmed
	fmt.Fprintln(a.out, "Logged in as", confirmed)
	return nil
}

// WhoAmI asks the server whether the session cookie is still valid and
// refreshes the local state accordingly.
func (a *App) WhoAmI(ctx context.Context) error {
	s, err := a.api.CheckLogin(ctx)
	if err != nil {
		return err
	}

	if !s.LoggedIn {
		a.email = ""
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	a.email = s.Email
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", s.Email, s.UUID)
	return nil
}

// Logout drops the session on both sides. The local state is cleared even
// when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.email = ""
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
