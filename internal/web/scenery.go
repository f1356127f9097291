package web

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const contentTypePNG = "image/png"

// Valid scenery IDs (allowlist). Must match the settings used in story YAML.
var validSceneryIDs = map[string]bool{
	"default": true, "apartment": true, "alley": true, "stairwell": true,
	"street": true, "pharmacy": true, "checkpoint": true, "river": true,
	"lab": true, "bridge": true,
}

// handleScenery serves /scenery/{id}.png: StaticDir/scenery/{id}.png if
// present, otherwise a generated blocky image.
func (s *Server) handleScenery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	base := path.Base(r.URL.Path)
	if base == "." || base == "/" {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimSuffix(base, path.Ext(base))
	if id == "" || !validSceneryIDs[id] {
		http.NotFound(w, r)
		return
	}

	if s.StaticDir != "" {
		baseDir := filepath.Join(s.StaticDir, "scenery")
		staticPath := filepath.Clean(filepath.Join(baseDir, id+".png"))
		rel, err := filepath.Rel(baseDir, staticPath)
		if err != nil || strings.Contains(rel, "..") {
			http.NotFound(w, r)
			return
		}
		if b, err := os.ReadFile(staticPath); err == nil {
			w.Header().Set("Content-Type", contentTypePNG)
			w.Header().Set("Cache-Control", assetCacheControl)
			if _, err := w.Write(b); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, generateSceneryImage(id)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := w.Write(buf.Bytes()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Night-city palette. Resolution 256×192 in 8×8 blocks.
var (
	pixelNight    = color.RGBA{0x10, 0x10, 0x18, 255}
	pixelSky      = color.RGBA{0x26, 0x22, 0x3a, 255}
	pixelConcrete = color.RGBA{0x4a, 0x4a, 0x52, 255}
	pixelAsphalt  = color.RGBA{0x2a, 0x2a, 0x30, 255}
	pixelWindow   = color.RGBA{0xd8, 0xa8, 0x48, 255}
	pixelWater    = color.RGBA{0x1e, 0x30, 0x4e, 255}
	pixelSignal   = color.RGBA{0xb0, 0x30, 0x30, 255}
	pixelClinic   = color.RGBA{0x4c, 0xa0, 0x6a, 255}
	pixelGlass    = color.RGBA{0x7a, 0xa6, 0xb8, 255}
)

const blockPx = 8
const imgW, imgH = 256, 192
const blocksW, blocksH = imgW / blockPx, imgH / blockPx

// fillBlock fills one 8×8 block at block coords (bx, by) with clr.
func fillBlock(img *image.RGBA, bx, by int, clr color.RGBA) {
	for dy := 0; dy < blockPx; dy++ {
		for dx := 0; dx < blockPx; dx++ {
			x := bx*blockPx + dx
			y := by*blockPx + dy
			if x < imgW && y < imgH {
				img.SetRGBA(x, y, clr)
			}
		}
	}
}

// fillRows fills block rows [from, to) across the whole width.
func fillRows(img *image.RGBA, from, to int, clr color.RGBA) {
	for by := max(from, 0); by < min(to, blocksH); by++ {
		for bx := 0; bx < blocksW; bx++ {
			fillBlock(img, bx, by, clr)
		}
	}
}

// fillRect fills the block rectangle [x0, x1) × [y0, y1).
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, clr color.RGBA) {
	for by := max(y0, 0); by < min(y1, blocksH); by++ {
		for bx := max(x0, 0); bx < min(x1, blocksW); bx++ {
			fillBlock(img, bx, by, clr)
		}
	}
}

// generateSceneryImage produces a blocky 256×192 picture for a setting id.
func generateSceneryImage(id string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	fillRows(img, 0, blocksH, pixelNight)

	switch id {
	case "apartment":
		// Room: wall, floor, one lit window and a door.
		fillRows(img, 0, blocksH-5, pixelConcrete)
		fillRows(img, blocksH-5, blocksH, pixelAsphalt)
		fillRect(img, 4, 4, 12, 11, pixelSky)
		fillRect(img, 5, 5, 11, 10, pixelWindow)
		fillRect(img, 22, 6, 27, blocksH-5, pixelAsphalt)
	case "alley":
		// Narrow gap between two walls with a strip of sky.
		fillRows(img, 0, blocksH, pixelAsphalt)
		fillRect(img, 12, 0, 20, 6, pixelSky)
		fillRect(img, 0, 0, 10, blocksH, pixelConcrete)
		fillRect(img, 22, 0, blocksW, blocksH, pixelConcrete)
		fillRect(img, 3, 5, 5, 7, pixelWindow)
	case "stairwell":
		// Steps climbing left to right.
		fillRows(img, 0, blocksH, pixelConcrete)
		for i := 0; i < 8; i++ {
			fillRect(img, i*4, blocksH-2-i*2, blocksW, blocksH-i*2, pixelAsphalt)
		}
		fillRect(img, 2, 2, 4, 3, pixelSignal)
	case "street":
		// Skyline with lit windows over a road.
		fillRows(img, 0, blocksH/2, pixelSky)
		fillRows(img, blocksH-6, blocksH, pixelAsphalt)
		for i, h := range []int{10, 7, 13, 8, 11} {
			bx := 1 + i*6
			fillRect(img, bx, blocksH-6-h, bx+5, blocksH-6, pixelConcrete)
			for wy := blocksH - 5 - h; wy < blocksH-7; wy += 3 {
				fillBlock(img, bx+1, wy, pixelWindow)
				fillBlock(img, bx+3, wy+1, pixelWindow)
			}
		}
		for bx := 2; bx < blocksW; bx += 5 {
			fillRect(img, bx, blocksH-3, bx+2, blocksH-2, pixelWindow)
		}
	case "pharmacy":
		// Shopfront with a green cross sign.
		fillRows(img, 0, blocksH-4, pixelConcrete)
		fillRows(img, blocksH-4, blocksH, pixelAsphalt)
		fillRect(img, 4, 10, 28, blocksH-4, pixelGlass)
		fillRect(img, 15, 2, 17, 8, pixelClinic)
		fillRect(img, 13, 4, 19, 6, pixelClinic)
	case "checkpoint":
		// Barrier arm and floodlights.
		fillRows(img, 0, blocksH/2, pixelSky)
		fillRows(img, blocksH/2, blocksH, pixelAsphalt)
		fillRect(img, 4, 10, 6, blocksH-4, pixelConcrete)
		for bx := 6; bx < blocksW-4; bx++ {
			clr := pixelSignal
			if (bx/2)%2 == 0 {
				clr = pixelWindow
			}
			fillBlock(img, bx, 12, clr)
		}
		fillRect(img, 24, 2, 27, 4, pixelWindow)
	case "river":
		// Embankment over dark water.
		fillRows(img, 0, blocksH/3, pixelSky)
		fillRows(img, blocksH/3, blocksH/3+3, pixelConcrete)
		fillRows(img, blocksH/3+3, blocksH, pixelWater)
		for by := blocksH/3 + 5; by < blocksH; by += 3 {
			for bx := (by % 4); bx < blocksW; bx += 7 {
				fillBlock(img, bx, by, pixelGlass)
			}
		}
	case "lab":
		// Tiled room with benches and a glass cabinet.
		fillRows(img, 0, blocksH, pixelConcrete)
		for by := 0; by < blocksH; by += 4 {
			for bx := 0; bx < blocksW; bx += 4 {
				fillBlock(img, bx, by, pixelGlass)
			}
		}
		fillRect(img, 2, blocksH-7, 14, blocksH-5, pixelAsphalt)
		fillRect(img, 18, blocksH-7, 30, blocksH-5, pixelAsphalt)
		fillRect(img, 12, 3, 20, 10, pixelClinic)
	case "bridge":
		// Span over water under the sky.
		fillRows(img, 0, blocksH/2, pixelSky)
		fillRows(img, blocksH/2, blocksH, pixelWater)
		fillRows(img, blocksH/2-1, blocksH/2+1, pixelConcrete)
		for bx := 3; bx < blocksW; bx += 8 {
			fillRect(img, bx, blocksH/2+1, bx+2, blocksH, pixelConcrete)
			fillRect(img, bx, blocksH/2-6, bx+1, blocksH/2-1, pixelConcrete)
		}
	default:
		// Sky over ground.
		fillRows(img, 0, blocksH/2, pixelSky)
		fillRows(img, blocksH/2, blocksH, pixelAsphalt)
	}
	return img
}
