package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/npillmayer/blend"
	"github.com/npillmayer/blend/blendfunc"
	"github.com/npillmayer/blend/guide"
	"github.com/npillmayer/blend/polygon"
	"github.com/npillmayer/blend/surface"
	"github.com/npillmayer/blend/walking"
	"github.com/tdewolff/argp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Corner traces the fillet between the floor z=0 and the wall x=0.
type Corner struct {
	Radius   float64 `short:"r" default:"2" desc:"Fillet radius"`
	Depth    float64 `short:"d" default:"10" desc:"Depth of the floor"`
	Width    float64 `short:"w" default:"8" desc:"Width of the wall"`
	From     float64 `default:"0.5" desc:"Start parameter on the guide"`
	To       float64 `default:"9.5" desc:"Target parameter on the guide"`
	MaxStep  float64 `default:"1" desc:"Maximum step along the guide"`
	Fleche   float64 `default:"0.001" desc:"Maximum deflection of a chord"`
	Notch    float64 `default:"0" desc:"Depth of a notch cut out of the wall border around the line"`
	Complete bool    `short:"c" desc:"Complete the line backwards to the domain borders"`
	Verbose  bool    `short:"v" desc:"Print every section"`
}

// Cylinder traces the fillet between the floor z=0 and a quarter cylinder
// around the z-axis.
type Cylinder struct {
	Radius   float64 `short:"r" default:"1" desc:"Fillet radius"`
	Cylinder float64 `default:"5" desc:"Radius of the cylinder"`
	From     float64 `default:"0.2" desc:"Start parameter on the guide"`
	To       float64 `default:"2.5" desc:"Target parameter on the guide"`
	MaxStep  float64 `default:"0.2" desc:"Maximum step along the guide"`
	Fleche   float64 `default:"0.001" desc:"Maximum deflection of a chord"`
	Complete bool    `short:"c" desc:"Complete the line backwards to the domain borders"`
	Verbose  bool    `short:"v" desc:"Print every section"`
}

// out receives the traced line.
var out io.Writer = os.Stdout

func main() {
	root := argp.NewCmd(&Corner{}, "Blend line marching between two surfaces")
	root.AddCmd(&Cylinder{}, "cylinder", "Fillet between a plane and a cylinder")
	root.Parse()
	root.PrintHelp()
}

type setup struct {
	s1, s2 blend.Surface
	d1, d2 *polygon.Domain
	g      blend.Guide
	radius float64
}

func (cmd *Corner) Run() error {
	if cmd.Radius <= 0 || cmd.Depth <= cmd.Radius || cmd.Width <= cmd.Radius {
		fmt.Println("ERROR: radius must be positive and smaller than the depth and width")
		return argp.ShowUsage
	} else if cmd.Notch < 0 || cmd.Notch >= cmd.Width/2 {
		fmt.Println("ERROR: notch must be less deep than half the wall")
		return argp.ShowUsage
	}
	r := cmd.Radius
	s := setup{
		s1:     surface.NewPlane(surface.StandardFrame, 0, cmd.Depth, 0, cmd.Depth),
		s2:     surface.NewPlane(surface.Frame{X: r3.Vec{Y: 1}, Y: r3.Vec{Z: 1}}, 0, cmd.Width, 0, cmd.Depth),
		g:      guide.NewLine(r3.Vec{X: r, Z: r}, r3.Vec{Y: 1}, -cmd.Depth, 2*cmd.Depth),
		radius: r,
	}
	var err error
	if s.d1, err = polygon.NewDomain(1e-6, polygon.Box(blend.P(0, 0), blend.P(cmd.Depth, cmd.Depth))); err != nil {
		return err
	}
	if s.d2, err = polygon.NewDomain(1e-6, polygon.Box(blend.P(0, 0), blend.P(cmd.Width, cmd.Depth))); err != nil {
		return err
	}
	if cmd.Notch > 0 {
		notch := polygon.Box(blend.P(cmd.Width-cmd.Notch, r/2), blend.P(cmd.Width+1, 3*r/2))
		if s.d2, err = s.d2.Subtract(notch); err != nil {
			return err
		}
	}
	guess := []float64{r, cmd.From, cmd.From, r}
	return s.trace(guess, cmd.From, cmd.To, cmd.MaxStep, cmd.Fleche, false, cmd.Complete, cmd.Verbose)
}

func (cmd *Cylinder) Run() error {
	if cmd.Radius <= 0 || cmd.Cylinder <= 0 {
		fmt.Println("ERROR: radii must be positive")
		return argp.ShowUsage
	}
	rc, rg := cmd.Cylinder, cmd.Cylinder+cmd.Radius
	s := setup{
		s1:     surface.NewPlane(surface.StandardFrame, -2*rg, 2*rg, -2*rg, 2*rg),
		s2:     surface.NewCylinder(surface.StandardFrame, rc, 0, math.Pi/2, 0, 3*cmd.Radius),
		g:      guide.NewCircle(r3.Vec{Z: cmd.Radius}, r3.Vec{Z: 1}, r3.Vec{X: 1}, rg, 0, 3),
		radius: cmd.Radius,
	}
	var err error
	if s.d1, err = polygon.NewDomain(1e-6, polygon.Box(blend.P(-2*rg, -2*rg), blend.P(2*rg, 2*rg))); err != nil {
		return err
	}
	if s.d2, err = polygon.NewDomain(1e-6, polygon.Box(blend.P(0, 0), blend.P(math.Pi/2, 3*cmd.Radius))); err != nil {
		return err
	}
	t := cmd.From
	guess := []float64{rg * math.Cos(t), rg * math.Sin(t), t, cmd.Radius}
	return s.trace(guess, t, cmd.To, cmd.MaxStep, cmd.Fleche, true, cmd.Complete, cmd.Verbose)
}

func (s setup) trace(guess []float64, from, to, maxStep, fleche float64, appro, complete, verbose bool) error {
	fn, err := blendfunc.NewConstRad(s.s1, s.s2, s.g, s.radius, 1)
	if err != nil {
		return err
	}
	finv, err := blendfunc.NewConstRadInv(s.s1, s.s2, s.g, s.radius, 1)
	if err != nil {
		return err
	}
	var opts []walking.Option
	if verbose {
		opts = append(opts, walking.WithObserver(func(sec walking.Section) {
			fmt.Fprintf(os.Stderr, "t=%-10.6g %v\n", sec.Param, sec.Status)
		}))
	}
	w := walking.New(s.s1, s.s2, s.d1, s.d2, s.g, opts...)
	tol := walking.Tolerances{Tol3d: 1e-6, TolGuide: 1e-6, Fleche: fleche, MaxStep: maxStep}
	w.Perform(fn, finv, from, to, guess, tol, appro)
	if !w.IsDone() {
		return fmt.Errorf("no blend line from parameter %g", from)
	}
	if complete {
		if err := w.Complete(fn, finv, 2*from-to); err != nil {
			return err
		}
	}
	printLine(w.Line(), fn)
	return nil
}

func printLine(l *walking.Line, fn *blendfunc.ConstRad) {
	fmt.Fprintln(out, "t,x1,y1,z1,x2,y2,z2,cx,cy,cz")
	for _, p := range l.Points() {
		uv1, uv2 := p.ParametersOnS1(), p.ParametersOnS2()
		c := fn.Center(p.Parameter(), []float64{uv1.X(), uv1.Y(), uv2.X(), uv2.Y()})
		fmt.Fprint(out, blend.Zap(p.Parameter()))
		for _, v := range []r3.Vec{p.PointOnS1(), p.PointOnS2(), c} {
			fmt.Fprintf(out, ",%g,%g,%g", blend.Zap(v.X), blend.Zap(v.Y), blend.Zap(v.Z))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "# minimal distance %g\n", fn.MinimalDistance())
	printExtremity("start S1", l.StartPointOnFirst())
	printExtremity("start S2", l.StartPointOnSecond())
	printExtremity("end S1", l.EndPointOnFirst())
	printExtremity("end S2", l.EndPointOnSecond())
}

func printExtremity(name string, e walking.Extremity) {
	fmt.Fprintf(out, "# %-8s t=%g uv=%v", name, blend.Zap(e.Parameter()), e.Parameters().Zap())
	for i := 0; i < e.NbPointOnRst(); i++ {
		rst := e.PointOnRst(i)
		fmt.Fprintf(out, " arc=%d param=%g line=%v arc=%v", rst.Arc, rst.Param,
			rst.TransitionOnLine.Type, rst.TransitionOnArc.Type)
	}
	if e.IsVertex() {
		fmt.Fprint(out, " vertex")
	}
	fmt.Fprintln(out)
}
