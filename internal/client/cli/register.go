package cli

import (
	"context"
	"errors"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter username (leave empty to use the email name)", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.manager.SignUp(ctx, email, string(password), username); err != nil {
		switch {
		case errors.Is(err, api.ErrRegistration):
			a.printf("Registration failed: %v\n", err)
		case errors.Is(err, api.ErrUnavailable):
			a.printf("Server unavailable, try again later\n")
		default:
			a.printf("error: %v\n", err)
		}
		return err
	}

	a.printf("Account created!\n")
	if profile := a.manager.Profile(); profile != nil && profile.Username != nil {
		a.printf("Welcome, %s!\n", *profile.Username)
	}
	return nil
}
