package cli

import (
	"context"
	"errors"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
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

	if err := a.manager.SignIn(ctx, email, string(password)); err != nil {
		switch {
		case errors.Is(err, api.ErrAuthentication):
			a.printf("Invalid email or password\n")
		case errors.Is(err, api.ErrUnavailable):
			a.printf("Server unavailable, try again later\n")
		default:
			a.printf("error: %v\n", err)
		}
		return err
	}

	a.printf("Signed in\n")
	return nil
}
