// Package plot turns the training service predictions into a Plotly 3D
// scatter figure.
//
// Marker size follows |z| and marker colour follows z on a continuous scale,
// so the output surface of the trained network reads at a glance.
package plot

import (
	"fmt"
	"math"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/kartoza/boolnet-studio/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// Title of the result figure
	Title = "3D Decision Boundary"

	// SizeScale multiplies |z| to get the marker size in pixels
	SizeScale = 10.0

	// ColorScale is the Plotly colour scale keyed on z
	ColorScale = "Viridis"
)

// MarkerSizes returns the marker size of each point: |z| scaled by SizeScale
func MarkerSizes(points []models.ScatterPoint) []float64 {
	sizes := make([]float64, len(points))
	for i, p := range points {
		sizes[i] = math.Abs(p.Z) * SizeScale
	}
	return sizes
}

// HoverText returns the tooltip shown for each point
func HoverText(points []models.ScatterPoint) []string {
	text := make([]string, len(points))
	for i, p := range points {
		text[i] = fmt.Sprintf("X1: %g, X2: %g, Output: %g", p.X, p.Y, p.Z)
	}
	return text
}

// NewFigure builds the figure for points: one scatter3d trace on a dark
// scene. It returns nil when there is nothing to draw.
func NewFigure(points []models.ScatterPoint) *grob.Fig {
	if len(points) == 0 {
		return nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	hover := HoverText(points)
	text := make([]ptypes.StringType, len(hover))
	for i, h := range hover {
		text[i] = ptypes.S(h)
	}

	trace := &grob.Scatter3d{
		Name:      ptypes.S("prediction"),
		Mode:      grob.Scatter3dModeMarkers,
		X:         ptypes.DataArray(xs),
		Y:         ptypes.DataArray(ys),
		Z:         ptypes.DataArray(zs),
		Text:      ptypes.ArrayOKArray(text...),
		Hoverinfo: ptypes.ArrayOKValue(grob.Scatter3dHoverinfoText),
		Marker: &grob.Scatter3dMarker{
			Size:       ptypes.ArrayOKArray(ptypes.NA(MarkerSizes(points))...),
			Color:      ptypes.ArrayOKArray(ptypes.UseColorScaleValues(zs)...),
			Colorscale: &ptypes.ColorScale{Name: ColorScale},
			Colorbar: &grob.Scatter3dMarkerColorbar{
				Title:     &grob.Scatter3dMarkerColorbarTitle{Text: ptypes.S("Output")},
				Thickness: ptypes.N(15),
				Xanchor:   grob.Scatter3dMarkerColorbarXanchorLeft,
			},
			Opacity: ptypes.N(0.9),
			Line: &grob.Scatter3dMarkerLine{
				Width: ptypes.N(0.5),
				Color: ptypes.ArrayOKValue(ptypes.UseColor(plotColor)),
			},
		},
	}

	return &grob.Fig{
		Data:   []ptypes.Trace{trace},
		Layout: darkLayout(),
	}
}

const (
	paperColor  = "#121212"
	plotColor   = "#1f1f1f"
	gridColor   = "#2b2b2b"
	fontColor   = "#e0e0e0"
	accentColor = "#03dac6"
)

func darkLayout() *grob.Layout {
	return &grob.Layout{
		Title: &grob.LayoutTitle{
			Text: ptypes.S(Title),
		},
		Autosize: ptypes.True,
		Margin: &grob.LayoutMargin{
			L: ptypes.N(0),
			R: ptypes.N(0),
			B: ptypes.N(0),
			T: ptypes.N(40),
		},
		Scene: &grob.LayoutScene{
			Xaxis: &grob.LayoutSceneXaxis{
				Title: &grob.LayoutSceneXaxisTitle{
					Text: ptypes.S("X1"),
					Font: &grob.LayoutSceneXaxisTitleFont{Color: accentColor},
				},
				Gridcolor:     gridColor,
				Zerolinecolor: gridColor,
				Zerolinewidth: ptypes.N(2),
			},
			Yaxis: &grob.LayoutSceneYaxis{
				Title: &grob.LayoutSceneYaxisTitle{
					Text: ptypes.S("X2"),
					Font: &grob.LayoutSceneYaxisTitleFont{Color: accentColor},
				},
				Gridcolor:     gridColor,
				Zerolinecolor: gridColor,
				Zerolinewidth: ptypes.N(2),
			},
			Zaxis: &grob.LayoutSceneZaxis{
				Title: &grob.LayoutSceneZaxisTitle{
					Text: ptypes.S("Output"),
					Font: &grob.LayoutSceneZaxisTitleFont{Color: accentColor},
				},
				Gridcolor:     gridColor,
				Zerolinecolor: gridColor,
				Zerolinewidth: ptypes.N(2),
			},
		},
		PaperBgcolor: paperColor,
		PlotBgcolor:  plotColor,
		Font:         &grob.LayoutFont{Color: fontColor},
		Hoverlabel: &grob.LayoutHoverlabel{
			Bgcolor: plotColor,
			Font:    &grob.LayoutHoverlabelFont{Color: "#ffffff"},
		},
	}
}

// Summary describes the distribution of the network output
type Summary struct {
	Points int     `json:"points"`
	MinZ   float64 `json:"minZ"`
	MaxZ   float64 `json:"maxZ"`
	MeanZ  float64 `json:"meanZ"`
}

// Summarize computes the output range of points
func Summarize(points []models.ScatterPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	zs := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	return Summary{
		Points: len(points),
		MinZ:   floats.Min(zs),
		MaxZ:   floats.Max(zs),
		MeanZ:  stat.Mean(zs, nil),
	}
}
