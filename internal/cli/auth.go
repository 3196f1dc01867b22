package cli

import (
	"context"
	"errors"
	"fmt"

	"familystock/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// register prompts for an email and password and creates an account. When
// the project requires email confirmation the account exists but cannot sign
// in yet; the user is told so instead of treating it as a failure.
func (a *App) register(ctx context.Context) {
	if a.account == nil {
		fmt.Fprintln(a.out, "Running in offline-only mode, no account needed")
		return
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer shared.WipeByteArray(password)

	err = a.account.SignUp(ctx, email, string(password))
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Account created, you are signed in")
		a.syncNow(ctx)
	case errors.Is(err, shared.ErrEmailConfirmationNeeded):
		fmt.Fprintln(a.out, "Account created, confirm your email before logging in")
	default:
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
	}
}

// login prompts for credentials and signs in. A successful login is a replay
// trigger: queued writes drain first, then a pull catches up on remote state.
func (a *App) login(ctx context.Context) {
	if a.account == nil {
		fmt.Fprintln(a.out, "Running in offline-only mode, no account needed")
		return
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer shared.WipeByteArray(password)

	if err := a.account.SignIn(ctx, email, string(password)); err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Logged in")
	a.syncNow(ctx)
}

// logout clears the session and the pull watermarks.
func (a *App) logout(ctx context.Context) {
	if a.account == nil {
		return
	}
	if err := a.account.SignOut(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Logged out")
}
