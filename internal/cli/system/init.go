package system

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/config"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/lock"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Back up and replace existing local state with an empty one."`
	Pull  bool `help:"Load existing data from the remote backend after initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Cache.Exists() {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Cache.Init(); err != nil {
		if errors.Is(err, storage.ErrAlreadyInitialized) {
			return fmt.Errorf("%w (use --force to start over)", err)
		}
		return err
	}
	fmt.Printf("Initialized daylog storage at: %s\n", ctx.Cache.Path())

	if ctx.Config.Path != "" {
		if _, err := os.Stat(ctx.Config.Path); os.IsNotExist(err) {
			if err := config.Save(ctx.Config.Path, ctx.Config); err != nil {
				return err
			}
			fmt.Printf("Wrote default config to: %s\n", ctx.Config.Path)
		}
	}

	if ctx.Config.Backend.Driver == constants.DriverNone {
		return nil
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	if ctx.Remote() != nil {
		fmt.Printf("✓ Remote backend ready (%s)\n", ctx.Config.Backend.Driver)
	}
	if !c.Pull {
		return nil
	}
	if !st.Online() {
		return errors.New("cannot pull: not logged in (run 'daylog session login' first)")
	}

	hctx, cancel := context.WithTimeout(context.Background(), constants.DispatchTimeout)
	defer cancel()
	if err := st.Hydrate(hctx); err != nil {
		return fmt.Errorf("failed to load remote data: %w", err)
	}
	snap := st.Snapshot()
	fmt.Printf("✓ Loaded %d habit(s), %d todo(s) and %d journal entries from the remote backend\n",
		len(snap.Habits), len(snap.Todos), len(snap.Journal))
	return nil
}

// reset backs up the current state and removes it so Init starts clean.
func (c *InitCmd) reset(ctx *cli.Context) error {
	lk, err := lock.Acquire(ctx.Config.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lk.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()

	path, err := ctx.BackupManager().CreateBackup()
	if err != nil {
		return fmt.Errorf("failed to back up existing state: %w", err)
	}
	fmt.Printf("Backed up existing state to: %s\n", path)

	if err := os.Remove(ctx.Cache.Path()); err != nil {
		return fmt.Errorf("failed to delete existing state: %w", err)
	}
	fmt.Printf("Deleted existing state at: %s\n", ctx.Cache.Path())
	return nil
}
