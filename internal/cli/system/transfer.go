package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/importer"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/store"
)

type ImportCmd struct {
	File   string `arg:"" type:"existingfile" help:"Markdown, CSV or JSON file to merge in."`
	Format string `help:"Override the format implied by the extension." enum:"auto,markdown,csv,json" default:"auto"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	p, err := c.parse()
	if err != nil {
		return err
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}
	res, err := st.MergeImport(p)
	if err != nil {
		if errors.Is(err, store.ErrEmptyImport) {
			return fmt.Errorf("%s: %w", filepath.Base(c.File), err)
		}
		return err
	}

	fmt.Printf("✓ Imported %d habit(s), %d todo(s) and %d journal entries from %s\n",
		res.Habits, res.Todos, res.Journal, filepath.Base(c.File))
	return nil
}

func (c *ImportCmd) parse() (models.PartialSnapshot, error) {
	if c.Format == "" || c.Format == "auto" {
		return importer.ParseFile(c.File)
	}
	f, err := os.Open(c.File)
	if err != nil {
		return models.PartialSnapshot{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return importer.Parse(f, importer.Format(c.Format))
}

type ExportCmd struct {
	File string `arg:"" optional:"" help:"Destination file. Writes to stdout when omitted or '-'."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	data, err := storage.Encode(st.Snapshot(), ctx.Now())
	if err != nil {
		return err
	}

	if c.File == "" || c.File == "-" {
		fmt.Println(string(data))
		return nil
	}
	if err := storage.WriteFileAtomic(c.File, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("✓ Exported to %s\n", c.File)
	return nil
}

type RestoreCmd struct {
	File string `arg:"" type:"existingfile" help:"Snapshot written by 'daylog export' or a backup file."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	// Validate before touching anything.
	snap, err := ctx.BackupManager().Load(c.File)
	if err != nil {
		return err
	}

	st, err := ctx.Open()
	if err != nil {
		return err
	}

	desc := "Current state is backed up first."
	if st.Online() {
		desc += " The remote copy is replaced as well."
	}
	ok, err := cli.Confirm(
		fmt.Sprintf("Replace all data with %s?", filepath.Base(c.File)),
		desc,
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Restore cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := st.Restore(snap); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	fmt.Printf("✓ Restored %d habit(s), %d todo(s), %d achievement(s), %d journal entries and %d metric(s)\n",
		len(snap.Habits), len(snap.Todos), len(snap.Achievements), len(snap.Journal), len(snap.Metrics))
	return nil
}
