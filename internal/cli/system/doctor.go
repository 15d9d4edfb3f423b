package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/utils"
	"github.com/julianstephens/daylog/internal/validation"
)

type DoctorCmd struct {
	Fix bool `help:"Repair fixable data problems (a backup is taken first)."`
}

type pinger interface {
	Ping(ctx context.Context) error
}

type schemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	fail := func(name string, err error) {
		fmt.Printf("❌ %s: FAIL\n", name)
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	}

	// Check 1: Data directory writable
	if err := checkDataDirWritable(ctx); err != nil {
		fail("Data directory writable", err)
	} else {
		fmt.Printf("✓ Data directory writable: OK\n")
	}

	// Check 2: State readable
	snap, err := ctx.Cache.Load()
	stateReadable := err == nil
	if err != nil {
		fail("State readable", err)
	} else {
		fmt.Printf("✓ State readable: OK\n")
	}

	// Check 3: Validation passes (only if state is readable)
	if stateReadable {
		if err := cmd.checkValidation(ctx, snap); err != nil {
			fail("Data validation", err)
		} else {
			fmt.Printf("✓ Data validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (state not readable)\n")
	}

	// Check 4: Backend reachable
	if ctx.Config.Backend.Driver == constants.DriverNone {
		fmt.Printf("⊘ Backend reachable: SKIPPED (local-only)\n")
	} else if err := checkBackend(ctx); err != nil {
		fail("Backend reachable", err)
	} else {
		fmt.Printf("✓ Backend reachable: OK (%s)\n", ctx.Config.Backend.Driver)
	}

	// Check 5: Session (warning only)
	if uid, ok := ctx.LoadIdentity(ctx.Config).UserID(); ok {
		fmt.Printf("✓ Session: OK (%s)\n", uid)
	} else {
		fmt.Printf("⚠ Session: WARNING\n")
		fmt.Printf("   Not logged in, changes stay local\n")
	}

	// Check 6: Backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 7: Clock/timezone sanity
	if err := checkClockTimezone(ctx.Now()); err != nil {
		fail("Clock/timezone", err)
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDataDirWritable(ctx *cli.Context) error {
	if err := os.MkdirAll(ctx.Config.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", ctx.Config.DataDir, err)
	}
	f, err := os.CreateTemp(ctx.Config.DataDir, ".doctor-*")
	if err != nil {
		return fmt.Errorf("cannot write to %s: %w", ctx.Config.DataDir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (cmd *DoctorCmd) checkValidation(ctx *cli.Context, snap models.Snapshot) error {
	v := validation.New()
	result := v.Validate(snap)
	if !result.HasConflicts() {
		return nil
	}
	if !cmd.Fix || !result.Fixable() {
		return fmt.Errorf("%s", result.FormatReport())
	}

	ctx.PerformAutomaticBackup()
	fixed, actions := v.Fix(snap)
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	if err := st.Restore(fixed); err != nil {
		return fmt.Errorf("failed to apply fixes: %w", err)
	}
	for _, a := range actions {
		fmt.Printf("   Fixed: %s\n", a.Action)
	}

	remaining := v.Validate(fixed)
	if remaining.HasConflicts() {
		return fmt.Errorf("%s", remaining.FormatReport())
	}
	return nil
}

func checkBackend(ctx *cli.Context) error {
	provider := ctx.Remote()
	if provider == nil {
		p, err := ctx.OpenRemote(ctx.Config)
		if err != nil {
			return err
		}
		if p == nil {
			return errors.New("no provider for the configured driver")
		}
		defer p.Close()
		provider = p
	}

	pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if p, ok := provider.(pinger); ok {
		if err := p.Ping(pctx); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
	} else if _, err := provider.Select(pctx, remote.Habits, remote.ByUser("")); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if sv, ok := provider.(schemaVersioner); ok {
		current, latest, err := sv.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if current != latest {
			return fmt.Errorf("schema version %d does not match expected %d", current, latest)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'daylog backup create'")
	}

	return nil
}

func checkClockTimezone(now time.Time) error {
	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// An unknown TZ silently falls back to UTC.
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("TZ=%q is not a known time zone: %w", tz, err)
		}
	}
	if key := utils.FormatISODate(now); !utils.IsValidDateKey(key) {
		return fmt.Errorf("local date %q does not round-trip", key)
	}
	return nil
}
