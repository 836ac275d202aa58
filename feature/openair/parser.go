package openair

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aero-importer/core/aero"
	"aero-importer/core/geo"

	"github.com/paulmach/orb"
)

// Shape is one airspace block of an OpenAIR file.
type Shape struct {
	Name  string
	Class string
	Lower string
	Upper string
	Ring  orb.Ring
	// Line is the line of the AC directive that opened the block.
	Line int
}

// ShapeEmitter receives parsed shapes and rejected blocks.
type ShapeEmitter interface {
	EmitShape(s Shape) error
	Reject(kind aero.Kind, err error)
}

// ignored directives carry metadata the importer does not use.
var ignored = map[string]bool{
	"AT": true, "AY": true, "AF": true, "AG": true, "SP": true, "SB": true,
}

type block struct {
	shape    Shape
	points   []orb.Point
	vertices bool
	rejected bool
}

type parser struct {
	file string
	emit ShapeEmitter
	line int

	cur       *block
	center    *orb.Point
	clockwise bool
}

// Parse reads OpenAIR text from r. file only names the stream in errors.
//
// Unknown directives, vertex directives outside a block, arcs without a
// centre and blocks without vertices abort with a ParseError. A block whose
// ring is degenerate is passed to emit.Reject.
func Parse(ctx context.Context, r io.Reader, file string, emit ShapeEmitter) error {
	p := &parser{file: file, emit: emit, clockwise: true}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if p.line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := p.directive(strings.TrimSpace(sc.Text())); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return p.fail("", "read failed", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.flush()
}

func (p *parser) fail(section, msg string, err error) error {
	return &aero.ParseError{File: p.file, Line: p.line, Section: section, Msg: msg, Err: err}
}

func (p *parser) directive(line string) error {
	if line == "" || line[0] == '*' {
		return nil
	}
	dir, arg, _ := strings.Cut(line, " ")
	dir = strings.ToUpper(dir)
	arg = strings.TrimSpace(arg)

	switch dir {
	case "AC":
		if err := p.flush(); err != nil {
			return err
		}
		p.cur = &block{shape: Shape{Class: arg, Line: p.line}}
		p.center = nil
		p.clockwise = true
		return nil
	case "AN", "AL", "AH":
		if p.cur == nil {
			return p.fail(dir, "directive before AC", nil)
		}
		switch dir {
		case "AN":
			p.cur.shape.Name = arg
		case "AL":
			p.cur.shape.Lower = arg
		default:
			p.cur.shape.Upper = arg
		}
		return nil
	case "V":
		return p.variable(arg)
	case "DP", "DC", "DA", "DB":
		if p.cur == nil {
			return p.fail(dir, "vertex before AC", nil)
		}
		p.cur.vertices = true
		return p.vertex(dir, arg)
	default:
		if ignored[dir] {
			return nil
		}
		return p.fail(dir, "unknown directive", nil)
	}
}

func (p *parser) variable(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return p.fail("V", "malformed variable", nil)
	}
	value = strings.TrimSpace(value)
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "X":
		c, err := geo.ParseOpenAIR(value)
		if err != nil {
			return p.fail("V", "invalid centre", err)
		}
		p.center = &c
	case "D":
		switch value {
		case "+":
			p.clockwise = true
		case "-":
			p.clockwise = false
		default:
			return p.fail("V", "invalid direction "+strconv.Quote(value), nil)
		}
	case "W", "Z":
	default:
		return p.fail("V", "unknown variable "+strconv.Quote(name), nil)
	}
	return nil
}

// vertex appends the points of a vertex directive. Geometry errors are kept
// on the block and reported when it is flushed.
func (p *parser) vertex(dir, arg string) error {
	var (
		pts []orb.Point
		err error
	)
	switch dir {
	case "DP":
		var pt orb.Point
		pt, err = geo.ParseOpenAIR(arg)
		pts = []orb.Point{pt}
	case "DC":
		if p.center == nil {
			return p.fail(dir, "circle without centre", nil)
		}
		var r float64
		if r, err = strconv.ParseFloat(arg, 64); err != nil {
			return p.fail(dir, "invalid radius", err)
		}
		var ring orb.Ring
		ring, err = geo.Circle(*p.center, r, geo.ArcStepDegrees)
		pts = ring
	case "DA":
		if p.center == nil {
			return p.fail(dir, "arc without centre", nil)
		}
		parts := strings.Split(arg, ",")
		if len(parts) != 3 {
			return p.fail(dir, "want radius,from,to", nil)
		}
		var vals [3]float64
		for i, s := range parts {
			if vals[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				return p.fail(dir, "invalid arc parameter", err)
			}
		}
		pts, err = geo.Arc(*p.center, vals[0], vals[1], vals[2], p.clockwise, geo.ArcStepDegrees)
	case "DB":
		if p.center == nil {
			return p.fail(dir, "arc without centre", nil)
		}
		first, second, ok := splitPair(arg)
		if !ok {
			return p.fail(dir, "want two points", nil)
		}
		var from, to orb.Point
		if from, err = geo.ParseOpenAIR(first); err == nil {
			if to, err = geo.ParseOpenAIR(second); err == nil {
				pts, err = geo.ArcBetween(*p.center, from, to, p.clockwise, geo.ArcStepDegrees)
			}
		}
	}

	var gerr *geo.GeometryError
	if errors.As(err, &gerr) {
		if !p.cur.rejected {
			p.cur.rejected = true
			p.emit.Reject(aero.KindAirspace, fmt.Errorf("shape %q line %d %s: %w", p.cur.shape.Name, p.line, dir, err))
		}
		return nil
	}
	if err != nil {
		return p.fail(dir, "invalid vertex", err)
	}
	p.cur.points = append(p.cur.points, pts...)
	return nil
}

// splitPair splits "p1, p2" after the longitude hemisphere of p1.
func splitPair(arg string) (string, string, bool) {
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case 'E', 'W', 'e', 'w':
			rest := strings.TrimLeft(arg[i+1:], " ,")
			return arg[:i+1], rest, rest != ""
		}
	}
	return "", "", false
}

func (p *parser) flush() error {
	b := p.cur
	p.cur = nil
	if b == nil {
		return nil
	}
	if !b.vertices {
		return &aero.ParseError{File: p.file, Line: b.shape.Line, Section: "AC", Msg: "unterminated shape " + strconv.Quote(b.shape.Name)}
	}
	if b.rejected {
		return nil
	}
	ring, err := geo.Ring(b.points)
	if err != nil {
		p.emit.Reject(aero.KindAirspace, fmt.Errorf("shape %q at line %d: %w", b.shape.Name, b.shape.Line, err))
		return nil
	}
	b.shape.Ring = ring
	return p.emit.EmitShape(b.shape)
}
