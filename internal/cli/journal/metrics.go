package journal

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

type MetricCmd struct {
	Set  MetricSetCmd  `cmd:"" help:"Record a reading such as mood or energy."`
	List MetricListCmd `cmd:"" help:"List readings."`
}

type MetricSetCmd struct {
	Label string  `arg:"" help:"Metric label, e.g. mood or energy."`
	Value float64 `arg:"" help:"Numeric value."`
	Date  string  `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *MetricSetCmd) Run(ctx *cli.Context) error {
	date, err := utils.ResolveDate(c.Date, ctx.Now())
	if err != nil {
		return err
	}
	st, err := ctx.Open()
	if err != nil {
		return err
	}
	if _, err := st.SetMetric(date, c.Label, c.Value); err != nil {
		return err
	}
	fmt.Printf("✓ %s = %s for %s\n", strings.ToLower(strings.TrimSpace(c.Label)), formatValue(c.Value), date)
	return nil
}

type MetricListCmd struct {
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
	Month string `help:"List a whole month (YYYY-MM) instead of one day." default:""`
	Label string `help:"Only show one label." default:""`
}

func (c *MetricListCmd) Run(ctx *cli.Context) error {
	now := ctx.Now()
	st, err := ctx.Open()
	if err != nil {
		return err
	}

	var metrics []models.Metric
	scope := ""
	if c.Month != "" {
		month, err := utils.ResolveMonth(c.Month, now)
		if err != nil {
			return err
		}
		scope = month
		for _, m := range st.Snapshot().Metrics {
			if utils.InMonth(m.Date, month) {
				metrics = append(metrics, m)
			}
		}
	} else {
		date, err := utils.ResolveDate(c.Date, now)
		if err != nil {
			return err
		}
		scope = date
		metrics = st.Metrics(date)
	}

	if c.Label != "" {
		label := strings.ToLower(strings.TrimSpace(c.Label))
		metrics = slices.DeleteFunc(metrics, func(m models.Metric) bool { return m.Label != label })
	}
	if len(metrics) == 0 {
		fmt.Printf("No readings for %s.\n", scope)
		return nil
	}

	SortMetrics(metrics)
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{m.Date, m.Label, formatValue(m.Value)})
	}
	fmt.Println(cli.Table([]string{"Date", "Label", "Value"}, rows))
	return nil
}

// SortMetrics orders readings by date, then label.
func SortMetrics(metrics []models.Metric) {
	slices.SortFunc(metrics, func(a, b models.Metric) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
