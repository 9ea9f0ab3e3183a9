package costgrid

import (
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ParseTextGrid builds a grid from an ASCII map. Each non-empty line is a row
// of cells, the first line being row y = ny-1 so the text reads the way the
// map is oriented. Recognized cells:
//
//	'.' or ' '  free
//	'#'         lethal
//	'1'..'9'    cost scaled to (digit/9)*252
//
// All rows must have equal length.
func ParseTextGrid(text string, res float64, origin r2.Point) (*Grid, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return nil, errors.New("text map is empty")
	}
	nx := len(rows[0])
	ny := len(rows)
	costs := make([]uint8, nx*ny)
	for i, row := range rows {
		if len(row) != nx {
			return nil, errors.Errorf("row %d has length %d, want %d", i, len(row), nx)
		}
		y := ny - 1 - i
		for x, c := range row {
			var cost uint8
			switch {
			case c == '.' || c == ' ':
				cost = FreeCost
			case c == '#':
				cost = LethalCost
			case c >= '1' && c <= '9':
				cost = uint8(int(c-'0') * 252 / 9)
			default:
				return nil, errors.Errorf("unrecognized map cell %q at row %d col %d", c, i, x)
			}
			costs[y*nx+x] = cost
		}
	}
	return NewGrid(nx, ny, res, origin, costs)
}
