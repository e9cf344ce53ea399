package compute

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

const kMeansIterations = 10

type rgb [3]uint8

func (c rgb) key() string {
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}

func extractColors(img *image.RGBA) []rgb {
	b := img.Bounds()
	colors := make([]rgb, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			colors = append(colors, rgb{row[4*x], row[4*x+1], row[4*x+2]})
		}
	}
	return colors
}

// unique returns the distinct colours in a stable order.
func unique(colors []rgb) []rgb {
	seen := make(map[rgb]struct{}, len(colors))
	result := make([]rgb, 0)
	for _, c := range colors {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return result
}

func manhattan(a, b rgb) int {
	d := 0
	for i := 0; i < 3; i++ {
		v := int(a[i]) - int(b[i])
		if v < 0 {
			v = -v
		}
		d += v
	}
	return d
}

func closest(c rgb, palette []rgb) int {
	best, bestDist := 0, 1<<30
	for i, p := range palette {
		d := manhattan(c, p)
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}

// buildPalette returns at most maxColors colours representing colors.
func buildPalette(ctx context.Context, colors []rgb, maxColors int, seed int64) ([]rgb, error) {
	distinct := unique(colors)
	if len(distinct) <= maxColors {
		return distinct, nil
	}
	return kMeans(ctx, distinct, maxColors, seed)
}

// kMeans clusters the distinct colours; centres start at seeded random picks.
func kMeans(ctx context.Context, colors []rgb, k int, seed int64) ([]rgb, error) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	clusters := make([]rgb, k)
	for i, idx := range rng.Perm(len(colors))[:k] {
		clusters[i] = colors[idx]
	}

	assignments := make([]int, len(colors))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < kMeansIterations; iter++ {
		changed, err := assign(ctx, colors, clusters, assignments)
		if err != nil {
			return nil, err
		}
		if !changed {
			break
		}

		sums := make([][3]int, k)
		counts := make([]int, k)
		for i, c := range assignments {
			sums[c][0] += int(colors[i][0])
			sums[c][1] += int(colors[i][1])
			sums[c][2] += int(colors[i][2])
			counts[c]++
		}
		for i := range clusters {
			if counts[i] == 0 {
				continue
			}
			clusters[i] = rgb{
				uint8(sums[i][0] / counts[i]),
				uint8(sums[i][1] / counts[i]),
				uint8(sums[i][2] / counts[i]),
			}
		}
	}

	return clusters, nil
}

// assign maps each colour to its nearest cluster in parallel bands and
// reports whether any assignment moved.
func assign(ctx context.Context, colors, clusters []rgb, assignments []int) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	bands := bandsFor(len(colors))

	var mu sync.Mutex
	changed := false

	for _, band := range bands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			moved := false
			for i := band[0]; i < band[1]; i++ {
				c := closest(colors[i], clusters)
				if c != assignments[i] {
					assignments[i] = c
					moved = true
				}
			}
			if moved {
				mu.Lock()
				changed = true
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}
	return changed, nil
}

// quantize rewrites img in place with palette colours and returns the histogram.
func quantize(ctx context.Context, img *image.RGBA, palette []rgb) (map[string]int, error) {
	b := img.Bounds()
	g, gctx := errgroup.WithContext(ctx)

	keys := make([]string, len(palette))
	for i, p := range palette {
		keys[i] = p.key()
	}

	bands := bandsFor(b.Dy())
	partial := make([]map[string]int, len(bands))

	for n, band := range bands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hist := make(map[string]int, len(palette))
			for y := b.Min.Y + band[0]; y < b.Min.Y+band[1]; y++ {
				row := img.Pix[img.PixOffset(b.Min.X, y):]
				for x := 0; x < b.Dx(); x++ {
					px := row[4*x : 4*x+4 : 4*x+4]
					idx := closest(rgb{px[0], px[1], px[2]}, palette)
					px[0], px[1], px[2], px[3] = palette[idx][0], palette[idx][1], palette[idx][2], 0xff
					hist[keys[idx]]++
				}
			}
			partial[n] = hist
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	histogram := make(map[string]int, len(palette))
	for _, hist := range partial {
		for k, v := range hist {
			histogram[k] += v
		}
	}
	return histogram, nil
}

// bandsFor splits n items into at most NumCPU contiguous [start, end) ranges.
func bandsFor(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	parts := min(runtime.NumCPU(), n)
	size := n / parts
	bands := make([][2]int, 0, parts)
	for i := 0; i < parts; i++ {
		start := i * size
		end := start + size
		if i == parts-1 {
			end = n
		}
		bands = append(bands, [2]int{start, end})
	}
	return bands
}
