package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sambrennan/folio/internal/models"
)

// RenderPerformanceChart renders a PNG line chart from snapshot history.
// Two series: Market Value (blue solid) and Cost Basis (gray dashed).
// Returns raw PNG bytes.
func RenderPerformanceChart(title string, snapshots []models.PortfolioSnapshot) ([]byte, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("need at least 2 snapshots, got %d", len(snapshots))
	}

	xValues := make([]time.Time, len(snapshots))
	valueY := make([]float64, len(snapshots))
	costY := make([]float64, len(snapshots))

	for i, s := range snapshots {
		xValues[i] = s.SnapshotDate
		valueY[i] = s.TotalValue
		costY[i] = s.TotalCostBasis
	}

	valueSeries := chart.TimeSeries{
		Name: "Market Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Cost Basis",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			costSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
