package cli

import "context"

func (a *App) Logout(ctx context.Context) error {
	if !a.isSignedIn() {
		a.printf("Not signed in\n")
		return nil
	}

	if err := a.manager.SignOut(ctx); err != nil {
		a.printf("Sign out failed: %v\n", err)
		return err
	}

	a.printf("Signed out\n")
	return nil
}
