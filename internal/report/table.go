package report

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/cubegrab/internal/model"
)

// HistoryTable renders stored reports, newest first as given, as a table.
func HistoryTable(reports []*model.AcquisitionReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Strategy", "Tiles", "Size", "Duration", "Status", "URL"})

	for _, r := range reports {
		tw.AppendRow(table.Row{
			r.StartedAt.Local().Format(time.DateTime),
			r.Strategy,
			strconv.Itoa(r.Tiles),
			formatBytes(r.Bytes),
			time.Duration(r.Duration).Round(time.Millisecond).String(),
			status(r),
			r.URL,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, WidthMax: 80},
	})
	return tw.Render()
}
