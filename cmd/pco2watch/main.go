package main

import (
	"os"
	"strings"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var defaultTableValue = [][]string{{"Time", "pCO2", "TempC", "BattV"}}

const displayColumns = 4

func getTable() *widgets.Table {
	table := widgets.NewTable()
	table.Rows = defaultTableValue
	table.ColumnWidths = []int{14, 12, 10, 8}
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.TextAlignment = ui.AlignRight
	table.SetRect(0, 0, 60, 30)
	return table
}

// tailRecords returns the last n data rows of a processed record table,
// skipping the header and commented error lines.
func tailRecords(path string, n int) [][]string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("cannot read %v: %v", path, err)
		return nil
	}

	var rows [][]string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || i == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < displayColumns {
			continue
		}
		rows = append(rows, cols[:displayColumns])
	}
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows
}

func watch(path string, interval time.Duration, rows int) {
	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	table := getTable()
	ui.Render(table)

	events := ui.PollEvents()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			if e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>") {
				return
			}
		case <-ticker.C:
			table.Rows = append([][]string{}, defaultTableValue...)
			table.Rows = append(table.Rows, tailRecords(path, rows)...)
			ui.Render(table)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "pco2watch <record-table>",
	Short: "live table view over a processed pCO2 record file",
	Long: `pco2watch tails a record table written by "pco2proc process" and renders
the most recent measurements as a terminal table. Press q to quit.`,
	Example: `  pco2watch deployment.tsv --interval 2s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Usage()
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		rows, _ := cmd.Flags().GetInt("rows")
		watch(args[0], interval, rows)
		return nil
	},
}

func main() {
	rootCmd.Flags().Duration("interval", time.Second, "refresh interval")
	rootCmd.Flags().Int("rows", 20, "number of records to display")
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
