// Package mapgen renders the route a run has taken through the city as a
// printable PDF: one pictogram per place, joined in the order visited, with
// the survivor's condition in the footer.
package mapgen

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"consequence/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	stopSize  = 48.0
	pathStep  = 88.0
	perRow    = 5
	maxRows   = 7
	maxStops  = perRow * maxRows
	fontSize  = 8
	titleSize = 16
	labelSize = 7
)

type stop struct {
	id      string
	setting string
	visits  int
	harmful bool
}

// route collapses consecutive repeat visits and keeps the most recent stops
// that fit on one page. An empty history yields the current scene alone.
func route(story *game.Story, st *game.State) []stop {
	path := st.Visited
	if len(path) == 0 {
		path = []string{st.CurrentSceneID}
	}
	var stops []stop
	for _, id := range path {
		if n := len(stops); n > 0 && stops[n-1].id == id {
			stops[n-1].visits++
			continue
		}
		s := stop{id: id, setting: "unknown", visits: 1}
		if sc := story.Scenes[id]; sc != nil {
			if sc.Setting != "" {
				s.setting = sc.Setting
			}
			s.harmful = harmful(sc)
		}
		stops = append(stops, s)
	}
	if len(stops) > maxStops {
		stops = stops[len(stops)-maxStops:]
	}
	return stops
}

// harmful reports whether any shown choice of sc can add trauma.
func harmful(sc *game.Scene) bool {
	for _, ch := range game.Presented(sc) {
		if ch.Effects[game.StatTrauma] > 0 {
			return true
		}
	}
	return false
}

// Generate returns PDF bytes for the route of st. ending may be nil for a run
// still in progress. A nil story or state yields no document.
func Generate(story *game.Story, st *game.State, ending *game.Ending) ([]byte, error) {
	if story == nil || st == nil {
		return nil, nil
	}
	stops := route(story, st)

	positions := make([][2]float64, len(stops))
	x0 := float64(margin) + stopSize
	y0 := float64(margin) + 110
	for i := range stops {
		row, col := i/perRow, i%perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		positions[i][0] = x0 + float64(col)*pathStep
		positions[i][1] = y0 + float64(row)*pathStep
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(232, 232, 226)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawBlocks(pdf)

	pdf.SetDrawColor(40, 40, 40)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 16, "Route Map", "", 0, "L", false, 0, "")
	if story.Title != "" {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetXY(margin, margin+18)
		pdf.CellFormat(pageW-2*margin, 10, story.Title, "", 0, "L", false, 0, "")
	}
	drawCompass(pdf, pageW-margin-30, margin+34)

	// Route line, dashed red ink.
	pdf.SetDrawColor(170, 30, 30)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{8, 5}, 0)
	for i := 0; i+1 < len(positions); i++ {
		pdf.Line(positions[i][0], positions[i][1], positions[i+1][0], positions[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)

	for i, s := range stops {
		x, y := positions[i][0], positions[i][1]
		last := i == len(stops)-1
		drawStop(pdf, x, y, s, last)

		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(20, 20, 20)
		pdf.SetXY(x-stopSize/2-12, y+stopSize/2+4)
		pdf.CellFormat(stopSize+24, 9, label(s), "", 0, "C", false, 0, "")
		if last {
			pdf.SetFont("Helvetica", "I", labelSize)
			pdf.SetXY(x-stopSize/2-12, y+stopSize/2+13)
			pdf.CellFormat(stopSize+24, 8, "Last seen here", "", 0, "C", false, 0, "")
		}
	}

	drawFooter(pdf, st, ending)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render route map: %w", err)
	}
	return buf.Bytes(), nil
}

func label(s stop) string {
	l := strings.ToUpper(strings.ReplaceAll(s.id, "_", " "))
	if len(l) > 16 {
		l = l[:13] + "..."
	}
	if s.visits > 1 {
		l = fmt.Sprintf("%s x%d", l, s.visits)
	}
	return l
}

// drawBlocks fills the page with a faint street grid.
func drawBlocks(pdf *gofpdf.Fpdf) {
	pdf.SetDrawColor(205, 205, 198)
	pdf.SetLineWidth(6)
	for x := float64(margin); x < pageW-margin; x += 64 {
		pdf.Line(x, margin+60, x, pageH-margin-90)
	}
	for y := float64(margin + 60); y < pageH-margin-90; y += 52 {
		pdf.Line(margin, y, pageW-margin, y)
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(40, 40, 40)
	pdf.Rect(margin, margin+60, pageW-2*margin, pageH-2*margin-150, "D")
}

func drawCompass(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 16.0
	pdf.SetDrawColor(40, 40, 40)
	pdf.Circle(cx, cy, rad, "D")
	for i := 0; i < 4; i++ {
		angle := float64(i)*math.Pi/2 - math.Pi/2
		if i == 0 {
			pdf.SetDrawColor(170, 30, 30)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(40, 40, 40)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetXY(cx-4, cy-rad-10)
	pdf.CellFormat(8, 6, "N", "", 0, "C", false, 0, "")
}

func drawFooter(pdf *gofpdf.Fpdf, st *game.State, ending *game.Ending) {
	y := float64(pageH - margin - 76)
	pdf.SetDrawColor(40, 40, 40)
	pdf.Line(margin, y, pageW-margin, y)

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "B", fontSize+1)
	pdf.SetXY(margin, y+8)
	status := "Still out there"
	if ending != nil {
		status = ending.Title
	}
	pdf.CellFormat(pageW-2*margin, 12, status, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", fontSize)
	lines := []string{
		fmt.Sprintf("%s   Morality %d   Trauma %d   Stress %d", st.Clock(), st.Morality, st.Trauma, st.Stress),
	}
	if len(st.Inventory) > 0 {
		lines = append(lines, "Carrying: "+strings.Join(st.Inventory, ", "))
	}
	for i, l := range lines {
		pdf.SetXY(margin, y+24+float64(i)*12)
		pdf.CellFormat(pageW-2*margin, 10, l, "", 0, "L", false, 0, "")
	}
}

// drawStop draws the pictogram for one place. Harmful places get a warning mark.
func drawStop(pdf *gofpdf.Fpdf, x, y float64, s stop, last bool) {
	r := stopSize / 2.0
	pdf.SetFillColor(250, 250, 246)
	pdf.SetDrawColor(20, 20, 20)
	pdf.SetLineWidth(1.2)
	pdf.Circle(x, y, r, "FD")
	if last {
		pdf.SetDrawColor(170, 30, 30)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4, "D")
		pdf.SetDrawColor(20, 20, 20)
		pdf.SetLineWidth(1.2)
	}
	switch s.setting {
	case "apartment":
		drawApartment(pdf, x, y, r)
	case "stairwell":
		drawStairwell(pdf, x, y, r)
	case "alley", "street":
		drawStreet(pdf, x, y, r)
	case "pharmacy":
		drawPharmacy(pdf, x, y, r)
	case "checkpoint":
		drawCheckpoint(pdf, x, y, r)
	case "river":
		drawRiver(pdf, x, y, r)
	case "lab":
		drawLab(pdf, x, y, r)
	case "bridge":
		drawBridge(pdf, x, y, r)
	default:
		pdf.Circle(x, y, r*0.3, "D")
	}
	if s.harmful {
		drawWarning(pdf, x+r*0.7, y-r*0.7)
	}
	pdf.SetLineWidth(1)
}

func drawApartment(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.45, y-r*0.55, r*0.9, r*1.1, "D")
	for row := 0; row < 3; row++ {
		for col := 0; col < 2; col++ {
			pdf.Rect(x-r*0.3+float64(col)*r*0.35, y-r*0.4+float64(row)*r*0.32, r*0.2, r*0.18, "D")
		}
	}
}

func drawStairwell(pdf *gofpdf.Fpdf, x, y, r float64) {
	sx, sy := x-r*0.5, y+r*0.45
	for i := 0; i < 4; i++ {
		pdf.Line(sx, sy, sx, sy-r*0.22)
		pdf.Line(sx, sy-r*0.22, sx+r*0.25, sy-r*0.22)
		sx, sy = sx+r*0.25, sy-r*0.22
	}
}

func drawStreet(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.7, y-r*0.3, x+r*0.7, y-r*0.3)
	pdf.Line(x-r*0.7, y+r*0.3, x+r*0.7, y+r*0.3)
	pdf.SetDashPattern([]float64{3, 3}, 0)
	pdf.Line(x-r*0.7, y, x+r*0.7, y)
	pdf.SetDashPattern([]float64{}, 0)
}

func drawPharmacy(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetLineWidth(3)
	pdf.Line(x, y-r*0.45, x, y+r*0.45)
	pdf.Line(x-r*0.45, y, x+r*0.45, y)
	pdf.SetLineWidth(1.2)
}

func drawCheckpoint(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.6, y+r*0.4, x-r*0.6, y-r*0.3)
	pdf.Line(x-r*0.6, y-r*0.3, x+r*0.6, y-r*0.3)
	for i := 0; i < 4; i++ {
		bx := x - r*0.45 + float64(i)*r*0.3
		pdf.Line(bx, y-r*0.3, bx+r*0.12, y-r*0.1)
	}
}

func drawRiver(pdf *gofpdf.Fpdf, x, y, r float64) {
	for _, dy := range []float64{-r * 0.25, r * 0.15} {
		pts := make([]gofpdf.PointType, 0, 9)
		for i := 0; i <= 8; i++ {
			t := float64(i) / 8
			pts = append(pts, gofpdf.PointType{
				X: x - r*0.7 + t*r*1.4,
				Y: y + dy + 3*math.Sin(t*2*math.Pi),
			})
		}
		for i := 0; i+1 < len(pts); i++ {
			pdf.Line(pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y)
		}
	}
}

func drawLab(pdf *gofpdf.Fpdf, x, y, r float64) {
	// Flask.
	pdf.Line(x-r*0.1, y-r*0.5, x-r*0.1, y-r*0.1)
	pdf.Line(x+r*0.1, y-r*0.5, x+r*0.1, y-r*0.1)
	pdf.Line(x-r*0.1, y-r*0.1, x-r*0.45, y+r*0.45)
	pdf.Line(x+r*0.1, y-r*0.1, x+r*0.45, y+r*0.45)
	pdf.Line(x-r*0.45, y+r*0.45, x+r*0.45, y+r*0.45)
}

func drawBridge(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.75, y, x+r*0.75, y)
	pdf.Arc(x, y+r*0.05, r*0.55, r*0.4, 0, 180, 360, "D")
	for _, dx := range []float64{-r * 0.3, 0, r * 0.3} {
		pdf.Line(x+dx, y, x+dx, y-r*0.2)
	}
}

func drawWarning(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetFillColor(230, 180, 40)
	pdf.Polygon([]gofpdf.PointType{{X: x, Y: y - 6}, {X: x + 6, Y: y + 5}, {X: x - 6, Y: y + 5}}, "FD")
	pdf.Line(x, y-2, x, y+2)
}
