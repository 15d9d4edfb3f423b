package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/session"
)

type SessionCmd struct {
	Login  SessionLoginCmd  `cmd:"" help:"Store a session so changes sync to the remote backend."`
	Logout SessionLogoutCmd `cmd:"" help:"Forget the stored session."`
	Status SessionStatusCmd `cmd:"" help:"Show the current session."`
}

type SessionLoginCmd struct {
	User  string        `help:"Issue a token for this user id (requires session.jwt_secret)." default:""`
	Token string        `help:"Use a token issued elsewhere." default:"" env:"DAYLOG_SESSION_TOKEN"`
	TTL   time.Duration `help:"Lifetime of an issued token." default:"720h"`
	Pull  bool          `help:"Replace local state with the remote copy after logging in." xor:"sync"`
	Push  bool          `help:"Replace the remote copy with local state after logging in." xor:"sync"`
}

func (c *SessionLoginCmd) Run(ctx *cli.Context) error {
	secret := []byte(ctx.Config.Session.JWTSecret)

	raw := c.Token
	if raw == "" {
		if c.User == "" {
			return errors.New("pass --user to issue a token or --token to use an existing one")
		}
		var err error
		raw, err = session.Issue(c.User, secret, c.TTL, ctx.Now())
		if err != nil {
			return err
		}
	}

	tok, err := session.Save(raw, secret)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	uid, _ := tok.UserID()
	fmt.Printf("✓ Logged in as %s\n", uid)
	if exp := tok.ExpiresAt(); !exp.IsZero() {
		fmt.Printf("  Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}

	if !c.Pull && !c.Push {
		return nil
	}
	if ctx.Config.Backend.Driver == constants.DriverNone {
		return errors.New("no remote backend configured (set backend.driver)")
	}
	return c.sync(ctx)
}

func (c *SessionLoginCmd) sync(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	if !st.Online() {
		return errors.New("remote backend unavailable, nothing synced")
	}

	if c.Push {
		if err := st.Restore(st.Snapshot()); err != nil {
			return err
		}
		fmt.Println("✓ Uploading local state to the remote backend")
		return nil
	}

	ctx.PerformAutomaticBackup()
	hctx, cancel := context.WithTimeout(context.Background(), constants.DispatchTimeout)
	defer cancel()
	if err := st.Hydrate(hctx); err != nil {
		return fmt.Errorf("failed to load remote data: %w", err)
	}
	fmt.Println("✓ Loaded state from the remote backend")
	return nil
}

type SessionLogoutCmd struct{}

func (c *SessionLogoutCmd) Run(ctx *cli.Context) error {
	if err := session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("✓ Logged out. Changes are now saved locally only.")
	return nil
}

type SessionStatusCmd struct{}

func (c *SessionStatusCmd) Run(ctx *cli.Context) error {
	identity, err := session.Load([]byte(ctx.Config.Session.JWTSecret))
	if err != nil {
		fmt.Printf("❌ Stored session is not usable: %v\n", err)
		return nil
	}
	uid, ok := identity.UserID()
	if !ok {
		fmt.Println("ℹ Not logged in (local-only)")
		return nil
	}

	fmt.Printf("✓ Logged in as %s\n", uid)
	if tok, isToken := identity.(*session.Token); isToken {
		if exp := tok.ExpiresAt(); !exp.IsZero() {
			fmt.Printf("  Expires %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
	}
	if ctx.Config.Backend.Driver == constants.DriverNone {
		fmt.Println("⚠ No remote backend configured, changes stay local")
	} else {
		fmt.Printf("  Backend: %s\n", ctx.Config.Backend.Driver)
	}
	return nil
}
